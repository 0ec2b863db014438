// log/log.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	*slog.Logger
	LogFile string
	LogDir  string
	Start   time.Time
}

func New(level string, dir string) *Logger {
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to find user config dir: %v", err)
			dir = "."
		}
		dir = filepath.Join(dir, "xsect")
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "xsect.slog"),
		MaxSize:    32, // MB
		MaxBackups: 1,
	}
	if level == "debug" {
		w.MaxSize = 512
	}

	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		fmt.Fprintf(os.Stderr, "%s: invalid log level", level)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	l := &Logger{
		Logger:  slog.New(h),
		LogFile: w.Filename,
		LogDir:  dir,
		Start:   time.Now(),
	}

	// Start out the logs with some basic information about the system
	// we're running on and the build that's being used.
	l.Info("Hello logging", slog.Time("start", time.Now()))
	l.Info("System information",
		slog.String("GOARCH", runtime.GOARCH),
		slog.String("GOOS", runtime.GOOS),
		slog.Int("NumCPUs", runtime.NumCPU()))

	var deps, settings []any
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range bi.Deps {
			deps = append(deps, slog.String(dep.Path, dep.Version))
			if dep.Replace != nil {
				deps = append(deps, slog.String("Replacement "+dep.Replace.Path, dep.Replace.Version))
			}
		}
		for _, setting := range bi.Settings {
			settings = append(settings, slog.String(setting.Key, setting.Value))
		}

		l.Info("Build",
			slog.String("Go version", bi.GoVersion),
			slog.String("Path", bi.Path),
			slog.Group("Dependencies", deps...),
			slog.Group("Settings", settings...))
	}

	return l
}

// NewNop returns a Logger that discards everything; handy for tests and
// for callers that don't care about logging.
func NewNop() *Logger {
	h := slog.NewJSONHandler(discard{}, nil)
	return &Logger{Logger: slog.New(h), Start: time.Now()}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// The slog interface is not friendly to the printf-style logging that is
// used in a fair amount of existing code, especially for debugging, so
// wrap it with the usual printf-style methods.

func (l *Logger) Debugf(f string, args ...interface{}) {
	if l != nil {
		l.Debug(fmt.Sprintf(f, args...))
	}
}

func (l *Logger) Infof(f string, args ...interface{}) {
	if l != nil {
		l.Info(fmt.Sprintf(f, args...))
	}
}

func (l *Logger) Warnf(f string, args ...interface{}) {
	if l != nil {
		l.Warn(fmt.Sprintf(f, args...))
	}
}

func (l *Logger) Errorf(f string, args ...interface{}) {
	if l != nil {
		l.Error(fmt.Sprintf(f, args...))
	}
}
