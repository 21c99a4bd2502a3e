package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// DefaultPath returns the log file location used when none is configured
func DefaultPath() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "subs", "subs.log")
}

// Setup opens the log file in append mode and points the standard logger at
// both the file and sink. The caller closes the returned file.
func Setup(path string, sink *Sink) (*os.File, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	var out io.Writer = f
	if sink != nil {
		out = io.MultiWriter(f, sink)
	}
	log.SetOutput(out)
	return f, nil
}
