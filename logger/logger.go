// Package logger wires up slog the way the teacher's CLI does: a single
// JSON handler installed as the slog default, level picked from a verbose
// flag/config value. mailfred's own internal log lines (connection.go,
// serve.go, the transports) carry no special component tag beyond their
// message text — callers that want to tell library noise apart from their
// own handler logs should give their own logger a "component" attribute,
// mirroring the "mailfred" vs "app" log-target split of the crate this
// module is based on.
package logger

import (
	"log/slog"
	"os"
)

// Setup installs a JSON slog handler writing to stdout as the process
// default logger. verbose selects Debug level; otherwise Info.
func Setup(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
