// Package state defines shared program state.
package state

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"itoc/config"
)

type envKey struct{}

// InjectOptions are command line switches of inject command which are not
// part of configuration.
type InjectOptions struct {
	// NoDirs flattens source directory structure in destination.
	NoDirs bool
	// Overwrite allows replacing existing results.
	Overwrite bool
	// CodePage decodes names in zip archives which do not declare UTF-8, nil
	// leaves names as is.
	CodePage encoding.Encoding
}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// Out receives command results which are not log messages, inspection
	// dumps for example.
	Out io.Writer

	Inject InjectOptions

	start      time.Time
	undoStdLog func()
}

// ContextWithEnv attaches environment usable before configuration is loaded:
// logging goes nowhere and results go to stdout.
func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{
		Log:   zap.NewNop(),
		Out:   os.Stdout,
		start: time.Now(),
	})
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// RedirectStdLog sends standard library log output to the current logger.
// Repeated calls keep the first redirection.
func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil || e.undoStdLog != nil {
		return
	}
	e.undoStdLog = zap.RedirectStdLog(e.Log)
}

// RestoreStdLog flushes logger and undoes redirection.
func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.undoStdLog != nil {
		e.undoStdLog()
		e.undoStdLog = nil
	}
}
