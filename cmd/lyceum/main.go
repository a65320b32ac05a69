package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lyceum-academy/lyceum/internal/logging"
)

const (
	exitFailure  = 1
	exitCanceled = 130
)

func main() {
	if code := runMain(Execute, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

func runMain(execute func() error, stderr io.Writer) int {
	err := execute()
	if err == nil {
		return 0
	}

	var ee *exitError
	switch {
	case errors.As(err, &ee):
		if !ee.silent {
			cause := err
			if ee.err != nil {
				cause = ee.err
			}
			emitCommandError(cause, "command failed", ee.code, stderr)
		}
		return ee.code
	case errors.Is(err, context.Canceled):
		emitCommandError(err, "command canceled", exitCanceled, stderr)
		return exitCanceled
	default:
		emitCommandError(err, "command failed", exitFailure, stderr)
		return exitFailure
	}
}

// emitCommandError reports a fatal error as a log record for structured
// commands and as a bare line for interactive ones.
func emitCommandError(err error, message string, exitCode int, stderr io.Writer) {
	ctx := currentCommandExecutionContext()
	if ctx.UsesStructuredLog {
		fatalLogger(ctx.CommandPath, stderr).Error(message, "exit_code", exitCode, "error", err)
		return
	}
	if exitCode == exitCanceled {
		fmt.Fprintln(stderr, "canceled")
		return
	}
	fmt.Fprintln(stderr, err)
}

func fatalLogger(command string, stderr io.Writer) *slog.Logger {
	cfg, err := logging.LoadConfigFromEnv()
	if err != nil {
		cfg = logging.DefaultConfig()
	}
	return logging.NewLogger(cfg, stderr, command)
}
