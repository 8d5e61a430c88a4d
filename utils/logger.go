package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Logger provides leveled, timestamped logging. Messages carry their
// component as a "[name]" prefix by convention.
type Logger struct {
	out   *log.Logger
	err   *log.Logger
	debug bool
}

// NewLogger creates a Logger writing to stdout/stderr. level "debug" enables
// Debug output; anything else suppresses it.
func NewLogger(level string) *Logger {
	return &Logger{
		out:   log.New(os.Stdout, "", 0),
		err:   log.New(os.Stderr, "", 0),
		debug: strings.EqualFold(strings.TrimSpace(level), "debug"),
	}
}

// NewTestLogger returns a Logger that writes everything, debug included, to w.
func NewTestLogger(w io.Writer) *Logger {
	l := log.New(w, "", 0)
	return &Logger{out: l, err: l, debug: true}
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) line(tag, format string, args []any) string {
	return fmt.Sprintf("[%s] %s %s", l.timestamp(), tag, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...any) {
	l.out.Println(l.line("\033[32mINFO\033[0m ", format, args))
}

func (l *Logger) Warn(format string, args ...any) {
	l.out.Println(l.line("\033[33mWARN\033[0m ", format, args))
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Println(l.line("\033[31mERROR\033[0m", format, args))
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.debug {
		return
	}
	l.out.Println(l.line("\033[36mDEBUG\033[0m", format, args))
}
