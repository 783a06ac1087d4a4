// Package logx is the logging capability handed to the core components.
// The core never logs through ambient global state; everything that wants to
// report takes a Logger and defaults to Nop when given none.
package logx

import (
	"fmt"
	"io"
	"sync"
)

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "?"
}

// Logger is the sink contract. Implementations must not block the caller
// beyond the cost of formatting and a buffered write; the core calls this
// from its tick path.
type Logger interface {
	Logf(lvl Level, tag, format string, args ...any)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Logf(Level, string, string, ...any) {}

// Console writes "LEVEL TAG: message" lines to w, filtering below min.
type Console struct {
	mu  sync.Mutex
	w   io.Writer
	min Level
}

func NewConsole(w io.Writer, min Level) *Console {
	return &Console{w: w, min: min}
}

func (c *Console) Logf(lvl Level, tag, format string, args ...any) {
	if lvl < c.min {
		return
	}
	c.mu.Lock()
	fmt.Fprintf(c.w, "%s %s: "+format+"\n", append([]any{lvl.String(), tag}, args...)...)
	c.mu.Unlock()
}

// Nil-safe helpers so callers can hold a possibly-nil Logger.

func Debugf(l Logger, tag, format string, args ...any) {
	if l != nil {
		l.Logf(LevelDebug, tag, format, args...)
	}
}

func Infof(l Logger, tag, format string, args ...any) {
	if l != nil {
		l.Logf(LevelInfo, tag, format, args...)
	}
}

func Warnf(l Logger, tag, format string, args ...any) {
	if l != nil {
		l.Logf(LevelWarn, tag, format, args...)
	}
}

func Errorf(l Logger, tag, format string, args ...any) {
	if l != nil {
		l.Logf(LevelError, tag, format, args...)
	}
}
