package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls where CLI logs go.
type Options struct {
	Verbose bool
	// Dir, when set, receives one JSON log file per run.
	Dir string
	// Console defaults to os.Stderr.
	Console io.Writer
	// NoColor disables ANSI colours on the console writer.
	NoColor bool
}

// RunLogger is the logger for a single CLI invocation
type RunLogger struct {
	zerolog.Logger

	path      string
	logFile   *os.File
	mutex     sync.Mutex
	startTime time.Time
}

// New builds a console logger, teeing to a log file when opts.Dir is set.
func New(opts Options) (*RunLogger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05", NoColor: opts.NoColor}

	r := &RunLogger{startTime: time.Now()}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		logFileName := fmt.Sprintf("carbone_%s.log", r.startTime.Format("20060102_150405"))
		r.path = filepath.Join(opts.Dir, logFileName)

		logFile, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		r.logFile = logFile
		out = zerolog.MultiLevelWriter(out, logFile)
	}

	r.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return r, nil
}

// Path returns the log file path, or "" when logging to the console only.
func (r *RunLogger) Path() string {
	if r == nil {
		return ""
	}
	return r.path
}

// Close writes the run duration and closes the log file.
func (r *RunLogger) Close() error {
	if r == nil {
		return nil
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.logFile == nil {
		return nil
	}

	r.Debug().
		Dur("duration", time.Since(r.startTime).Round(time.Millisecond)).
		Msg("Run completed")

	err := r.logFile.Close()
	r.logFile = nil
	return err
}
