package sidxcli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"scopeidx/internal/model"
	"scopeidx/internal/sidxd"
	"scopeidx/internal/workspace"
)

// session runs commands either in-process or against a daemon.
type session interface {
	Build(ctx context.Context) (string, error)
	Query(ctx context.Context, kind model.QueryKind, word string) ([]model.Item, error)
	CmdLast() (sidxd.CmdLastResult, error)
	History(search string, limit int) ([]model.Run, error)
	Close() error
}

func openSession(cmd *cobra.Command) (session, error) {
	opts := optionsFrom(cmd)
	if opts == nil {
		return nil, fmt.Errorf("options missing")
	}

	if opts.Daemon != "" {
		c, err := sidxd.Dial(opts.Daemon)
		if err != nil {
			return nil, fmt.Errorf("connect to sidxd at %s: %w", opts.Daemon, err)
		}
		return remoteSession{c: c}, nil
	}

	ws, err := openWorkspace(cmd)
	if err != nil {
		return nil, err
	}
	return localSession{ws: ws}, nil
}

func openWorkspace(cmd *cobra.Command) (*workspace.Workspace, error) {
	opts := optionsFrom(cmd)
	if opts == nil {
		return nil, fmt.Errorf("options missing")
	}
	cfg, err := opts.Config()
	if err != nil {
		return nil, err
	}
	return workspace.Open(cfg, opts.Logger(cmd.ErrOrStderr(), cfg.LogFormat))
}

type localSession struct {
	ws *workspace.Workspace
}

func (s localSession) Build(ctx context.Context) (string, error) {
	return s.ws.Service.Build(ctx), nil
}

func (s localSession) Query(ctx context.Context, kind model.QueryKind, word string) ([]model.Item, error) {
	return s.ws.Service.Query(ctx, kind, word), nil
}

func (s localSession) CmdLast() (sidxd.CmdLastResult, error) {
	return sidxd.CmdLastResult{
		Build: s.ws.Service.LastCommand(model.OpBuild),
		Query: s.ws.Service.LastCommand(model.OpQuery),
	}, nil
}

func (s localSession) History(search string, limit int) ([]model.Run, error) {
	return s.ws.Service.History(search, limit)
}

func (s localSession) Close() error { return s.ws.Close() }

type remoteSession struct {
	c *sidxd.Client
}

func (s remoteSession) Build(ctx context.Context) (string, error) {
	return s.c.Build()
}

func (s remoteSession) Query(ctx context.Context, kind model.QueryKind, word string) ([]model.Item, error) {
	return s.c.Query(kind, word)
}

func (s remoteSession) CmdLast() (sidxd.CmdLastResult, error) {
	return s.c.CmdLast()
}

func (s remoteSession) History(search string, limit int) ([]model.Run, error) {
	return s.c.History(sidxd.HistoryParams{Search: search, Limit: limit})
}

func (s remoteSession) Close() error { return s.c.Close() }
