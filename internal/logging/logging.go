// Package logging sets up the process logger. The terminal belongs to the
// TUI, so logs go to a rotating file instead of stderr.
package logging

import (
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures the default slog logger to write JSON to path, rotating
// at a few megabytes. An empty path resolves next to the XDG state dir.
func Setup(path string, level slog.Level) (*slog.Logger, error) {
	if path == "" {
		p, err := defaultLogPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 2,
	}
	log := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return log, nil
}

func defaultLogPath() (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "quizdash", "quizdash.log"), nil
}
