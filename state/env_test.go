package state

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/encoding/charmap"
)

func TestContextWithEnv(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))

	if env.start.IsZero() {
		t.Error("start time not set")
	}
	if env.Log == nil {
		t.Error("environment should start with no-op logger")
	}
	if env.Out != os.Stdout {
		t.Error("output should default to stdout")
	}
	if env.Inject != (InjectOptions{}) {
		t.Errorf("inject options = %+v, want zero", env.Inject)
	}
}

func TestEnvFromContext_Missing(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic when environment is not in context")
		}
	}()
	EnvFromContext(context.Background())
}

func TestEnvFromContext_Shared(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	EnvFromContext(ctx).Inject = InjectOptions{NoDirs: true, CodePage: charmap.Windows1251}

	got := EnvFromContext(context.WithValue(ctx, struct{}{}, 1)).Inject
	if !got.NoDirs || got.CodePage != charmap.Windows1251 {
		t.Errorf("inject options not shared through derived context: %+v", got)
	}
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := &LocalEnv{start: time.Now().Add(-time.Minute)}
	if got := env.Uptime(); got < time.Minute || got > time.Minute+10*time.Second {
		t.Errorf("Uptime() = %v", got)
	}
}

func TestLocalEnv_StdLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	env := &LocalEnv{Log: zap.New(core)}

	env.RedirectStdLog()
	env.RedirectStdLog()
	log.Print("redirected")
	env.RestoreStdLog()
	if env.undoStdLog != nil {
		t.Error("redirection not undone")
	}

	if got := logs.FilterMessage("redirected").Len(); got != 1 {
		t.Errorf("redirected messages = %d, want 1", got)
	}

	// nothing to undo
	env.RestoreStdLog()
}

func TestLocalEnv_StdLogNoLogger(t *testing.T) {
	env := &LocalEnv{}
	env.RedirectStdLog()
	if env.undoStdLog != nil {
		t.Error("redirect without logger should do nothing")
	}
	env.RestoreStdLog()
}
