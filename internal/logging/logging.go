package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the log file created inside the data directory
const FileName = "taskflow.log"

// Init writes logs to <dataDir>/taskflow.log and makes that the default slog logger.
// The terminal belongs to the UI, so nothing is logged to stdout or stderr.
// The returned closer flushes and closes the file.
func Init(dataDir, level string) (io.Closer, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	logPath := filepath.Join(dataDir, FileName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(New(file, level))

	// Redirect standard log package output to the same file
	log.SetOutput(file)
	log.SetFlags(log.LstdFlags)

	return file, nil
}

// New creates a text logger writing to w at the named level
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
