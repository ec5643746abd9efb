// Package logging wires the process logger for the muxer and its CLI.
//
// The muxer is a library first: it logs through slog's process default so
// the embedding host keeps control of sink and format. What lives here is
// the translation from CLI flags to an installed handler, and the small
// attribute vocabulary muxer log lines share, so a config id or an event
// renders identically on every line that mentions one.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Options selects the logger the CLI flags describe.
type Options struct {
	// Debug lowers the level from Info to Debug.
	Debug bool

	// JSON switches from the human-readable text handler to JSON lines.
	JSON bool

	// Output is the log destination. Nil means stderr.
	Output io.Writer
}

// Setup builds a logger from opts and installs it as the slog default.
// The logger is also returned for callers that derive sub-loggers.
func Setup(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Session tags a line with the config id it concerns.
func Session(id uint64) slog.Attr {
	return slog.Uint64("config_id", id)
}

// Event tags a line with one ftrace event, rendered as group/name.
func Event(group, name string) slog.Attr {
	return slog.String("event", group+"/"+name)
}

// Category tags a line with an atrace category.
func Category(name string) slog.Attr {
	return slog.String("category", name)
}
