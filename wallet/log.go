package wallet

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"

	"github.com/bitfsorg/notepicker-go/config"
	"github.com/bitfsorg/notepicker-go/notestore"
)

const (
	logRollSizeKB = 10 * 1024
	maxLogRolls   = 8
)

// log is a logger that is initialized with no output filters. This means the
// package will not perform any logging by default until the caller requests it.
var log = slog.Disabled

// DisableLog disables all library log output.  Logging output is disabled
// by default until UseLogger is called.
func DisableLog() {
	log = slog.Disabled
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger slog.Logger) {
	log = logger
}

// initLogging routes the wallet and note store loggers to cfg.LogFile, or
// to stdout when no file is configured. The loggers are package-level, so
// the most recent Open owns them. The returned closer disables both loggers
// and releases the log file.
func initLogging(cfg config.Config) (func() error, error) {
	var w io.Writer = os.Stdout
	closeOutput := func() error { return nil }
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0700); err != nil {
			return nil, err
		}
		r, err := rotator.New(cfg.LogFile, logRollSizeKB, false, maxLogRolls)
		if err != nil {
			return nil, err
		}
		w, closeOutput = r, r.Close
	}

	level, ok := slog.LevelFromString(strings.ToLower(cfg.LogLevel))
	if !ok {
		level = slog.LevelInfo
	}

	backend := slog.NewBackend(w)
	newLogger := func(subsystem string) slog.Logger {
		l := backend.Logger(subsystem)
		l.SetLevel(level)
		return l
	}
	UseLogger(newLogger("WLLT"))
	notestore.UseLogger(newLogger("NSTR"))

	closeFn := func() error {
		DisableLog()
		notestore.DisableLog()
		return closeOutput()
	}
	return closeFn, nil
}
