package main

import (
	"os"

	"scopeidx/internal/sidxcli"
)

func main() {
	if err := sidxcli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
