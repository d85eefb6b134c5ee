package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// slog setup for the folio server. Records go to stdout and to one file
// per calendar day under the log directory; files older than the retention
// window are pruned whenever the writer rolls over.

const service = "folio"

const (
	envLevel  = "FOLIO_LOG_LEVEL"
	envFormat = "FOLIO_LOG_FORMAT"
)

const (
	dayFormat        = "20060102"
	defaultKeepDays  = 7
	logFilePrefix    = service + "-"
	logFileExtension = ".log"
)

// RotatingWriter appends to <dir>/folio-YYYYMMDD.log, switching files when
// the date changes. Safe for concurrent use.
type RotatingWriter struct {
	mu       sync.Mutex
	dir      string
	keepDays int
	openDay  string
	file     *os.File
}

// NewRotatingWriter opens a writer in dir, creating it if needed. keepDays
// below 1 falls back to the default retention of a week.
func NewRotatingWriter(dir string, keepDays int) (*RotatingWriter, error) {
	if keepDays < 1 {
		keepDays = defaultKeepDays
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	w := &RotatingWriter{dir: dir, keepDays: keepDays}
	if err := w.rollOver(time.Now()); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.rollOver(time.Now()); err != nil {
		return 0, err
	}
	return w.file.Write(p)
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}

// rollOver opens the file for now's date if it is not already the open one,
// then prunes expired files. Callers hold the mutex.
func (w *RotatingWriter) rollOver(now time.Time) error {
	day := now.Format(dayFormat)
	if day == w.openDay && w.file != nil {
		return nil
	}
	if w.file != nil {
		_ = w.file.Close()
	}
	file, err := os.OpenFile(w.pathFor(day), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w.openDay = day
	w.file = file
	w.prune(now)
	return nil
}

func (w *RotatingWriter) pathFor(day string) string {
	return filepath.Join(w.dir, logFilePrefix+day+logFileExtension)
}

func (w *RotatingWriter) prune(now time.Time) {
	matches, err := filepath.Glob(filepath.Join(w.dir, logFilePrefix+"*"+logFileExtension))
	if err != nil {
		return
	}
	cutoff := now.AddDate(0, 0, -w.keepDays)
	for _, path := range matches {
		name := filepath.Base(path)
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, logFilePrefix), logFileExtension)
		day, err := time.Parse(dayFormat, stamp)
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			_ = os.Remove(path)
		}
	}
}

// NewLogger builds the process logger writing to stdout and the rotating
// file, installs it as the slog default, and returns the writer so the
// caller can close it on shutdown. FOLIO_LOG_LEVEL overrides the given
// level; FOLIO_LOG_FORMAT=json switches to JSON records.
func NewLogger(logDir string, level slog.Level) (*slog.Logger, *RotatingWriter, error) {
	writer, err := NewRotatingWriter(logDir, defaultKeepDays)
	if err != nil {
		return nil, nil, err
	}
	out := io.MultiWriter(os.Stdout, writer)
	handler := newHandler(out, levelFromEnv(level))
	logger := slog.New(handler).With("service", service)
	slog.SetDefault(logger)
	return logger, writer, nil
}

func levelFromEnv(fallback slog.Level) slog.Level {
	switch value := strings.ToLower(strings.TrimSpace(os.Getenv(envLevel))); value {
	case "":
		return fallback
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		if n, err := strconv.Atoi(value); err == nil {
			return slog.Level(n)
		}
		return fallback
	}
}

func newHandler(out io.Writer, level slog.Level) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(envFormat)), "json") {
		return slog.NewJSONHandler(out, options)
	}
	return slog.NewTextHandler(out, options)
}
