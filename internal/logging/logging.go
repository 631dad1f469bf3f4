// Package logging implements the debug-stream logger described in spec.md
// §4.12: a process-wide base verbosity plus a thread-local scoped override
// used by mod API calls that want to be chatty for the duration of one call.
package logging

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Verbosity mirrors the nLogVerbosity levels used by the shellcode and the
// engine alike (spec.md §4.4): 0 silent, 1 errors only, 2 verbose.
type Verbosity int32

const (
	Silent Verbosity = iota
	Errors
	Verbose
)

// Logger is the process-wide singleton described in spec.md §4.12. The zero
// value is not usable; construct with New.
type Logger struct {
	base atomic.Int32 // Verbosity

	mu        sync.Mutex
	perThread map[uint32]Verbosity // keyed by the calling OS thread id, see scope.go

	out *logrus.Logger
}

// New constructs a Logger writing to the given logrus.Logger (grounded on
// moby-moby's daemon-wide use of a single *logrus.Logger threaded through
// every subsystem). base is the initial verbosity, read from engine.ini or
// the orchestrator's settings at startup.
func New(out *logrus.Logger, base Verbosity) *Logger {
	l := &Logger{out: out, perThread: map[uint32]Verbosity{}}
	l.base.Store(int32(base))
	return l
}

// SetBase atomically updates the process-wide base verbosity.
func (l *Logger) SetBase(v Verbosity) { l.base.Store(int32(v)) }

// Base returns the current process-wide base verbosity.
func (l *Logger) Base() Verbosity { return Verbosity(l.base.Load()) }

// effective returns the verbosity currently in force: the max of the base
// and every active scoped override, on any thread.
func (l *Logger) effective() Verbosity {
	v := l.Base()
	l.mu.Lock()
	for _, o := range l.perThread {
		if o > v {
			v = o
		}
	}
	l.mu.Unlock()
	return v
}

// Enabled reports whether at least Errors-level logging is active, the
// is_log_enabled mod-API semantics (spec.md §4.9 table): true whenever
// logging or debug-logging is enabled.
func (l *Logger) Enabled() bool { return l.effective() > Silent }

// Debugf writes a line at Verbose level only, tagged with the component
// name (e.g. "session", "mods-manager") for operator-side triage. Unlike
// the mod-facing Logf, it does not truncate the formatted line.
func (l *Logger) Debugf(component, format string, args ...interface{}) {
	if l.effective() < Verbose {
		return
	}
	l.write(logrus.DebugLevel, component, format, args...)
}

// Errorf writes a line regardless of verbosity above Silent.
func (l *Logger) Errorf(component, format string, args ...interface{}) {
	if l.effective() < Errors {
		return
	}
	l.write(logrus.ErrorLevel, component, format, args...)
}

// Logf implements the mod-facing Wh_Log contract (spec.md §4.9): formats up
// to 1024 characters and writes "[WH] [<mod>] <line>" to the debug stream.
// It is a no-op (and returns false) when logging is disabled for this mod.
func (l *Logger) Logf(mod string, format string, args ...interface{}) bool {
	if !l.Enabled() {
		return false
	}
	line := fmt.Sprintf(format, args...)
	if len(line) > 1024 {
		line = line[:1024]
	}
	l.out.WithField("mod", mod).Debug("[WH] [" + mod + "] " + line)
	return true
}

func (l *Logger) write(level logrus.Level, component, format string, args ...interface{}) {
	entry := l.out.WithField("component", component)
	switch level {
	case logrus.ErrorLevel:
		entry.Errorf(format, args...)
	default:
		entry.Debugf(format, args...)
	}
}
