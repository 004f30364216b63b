package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	charmlog "github.com/charmbracelet/log/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
)

// Setup installs the default slog logger. With a log file, records are
// written as JSON through a rotating file; the terminal belongs to the UI.
// Without one, records go to stderr in a human readable form.
func Setup(logFile string, debug bool) {
	initOnce.Do(func() {
		var handler slog.Handler
		if logFile != "" {
			handler = fileHandler(&lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     30, // days
				Compress:   false,
			}, debug)
		} else {
			handler = consoleHandler(os.Stderr, debug)
		}
		slog.SetDefault(slog.New(handler))
		initialized.Store(true)
	})
}

func fileHandler(w io.Writer, debug bool) slog.Handler {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})
}

func consoleHandler(w io.Writer, debug bool) slog.Handler {
	level := charmlog.InfoLevel
	if debug {
		level = charmlog.DebugLevel
	}
	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "townview",
	})
}

func Initialized() bool {
	return initialized.Load()
}

// RecoverPanic logs a panic in the goroutine named name, writes the stack
// to a file in the working directory and runs cleanup.
func RecoverPanic(name string, cleanup func()) {
	r := recover()
	if r == nil {
		return
	}
	slog.Error("Recovered from panic", "goroutine", name, "panic", r)

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("townview-panic-%s-%s.log", name, timestamp)
	if file, err := os.Create(filename); err == nil {
		defer file.Close()
		fmt.Fprintf(file, "Panic in %s: %v\n\n", name, r)
		fmt.Fprintf(file, "Time: %s\n\n", time.Now().Format(time.RFC3339))
		fmt.Fprintf(file, "Stack Trace:\n%s\n", debug.Stack())
	}

	if cleanup != nil {
		cleanup()
	}
}
