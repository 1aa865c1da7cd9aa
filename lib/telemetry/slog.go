package telemetry

import (
	"io"
	"log/slog"
	"os"
)

// InitSlog installs the default slog logger, logs go to stderr so that they
// never mix with the output of a command.
func InitSlog(debug bool) {
	slog.SetDefault(NewLogger(os.Stderr, debug))
}

func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}))
}
