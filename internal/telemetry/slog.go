package telemetry

import (
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a configuration string to a slog.Level. Unknown values
// fall back to Info so a typo in config never silences the log.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger installs the global slog default logger.
//
// format "json" selects JSONHandler for production; anything else selects
// TextHandler for local development. Source locations are attached only at
// debug level.
func SetupLogger(format, level string) {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialised", "format", format, "level", lvl.String())
}
