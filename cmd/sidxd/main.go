package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"scopeidx/internal/config"
	"scopeidx/internal/logsink"
	"scopeidx/internal/sidxd"
	"scopeidx/internal/workspace"
)

func main() {
	cfgPath := flag.String("config", config.DefaultFile, "config file")
	listen := flag.String("listen", "", "listen address (tcp), overrides the config file")
	watch := flag.Bool("watch", false, "start watching workspace directories on startup")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	log := logsink.New(os.Stderr, logsink.Options{Format: cfg.LogFormat, Component: "sidxd"})
	ws, err := workspace.Open(cfg, log)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer ws.Close()

	s, err := sidxd.NewServer(sidxd.Options{Listen: cfg.Listen, Workspace: ws, Logger: log})
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *watch {
		if _, err := s.WatchStart(); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		_ = s.Close()
	}()

	if err := s.Run(); err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			_, _ = fmt.Fprintf(os.Stderr, "listen address in use: %s\nTry: -listen 127.0.0.1:7448\n", cfg.Listen)
		} else {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		ws.Close()
		os.Exit(1)
	}
}
