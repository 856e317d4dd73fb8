package server

import (
	"context"
	"errors"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"itoc/state"
)

// Run is "serve" command action. Server stops when context is canceled
// (program is interrupted).
func Run(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("serve")

	root := cmd.Args().Get(0)
	if len(root) == 0 {
		return errors.New("no document root has been specified")
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	if listen := cmd.String("listen"); len(listen) > 0 {
		env.Cfg.Server.Listen = listen
	}

	s, err := New(root, env.Cfg, log)
	if err != nil {
		return err
	}

	defer func() {
		log.Info("Server stopped", zap.Duration("uptime", env.Uptime()))
	}()
	return s.ListenAndServe(ctx)
}
