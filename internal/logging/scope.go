package logging

// ScopedVerbosity records a verbosity override keyed by the calling OS
// thread, for the duration until the returned restore func runs (spec.md
// §4.12's "scoped_thread_verbosity(Verbose) RAII region", expressed as Go's
// usual defer-a-closer idiom since Go has no destructors). While any
// override is active, the effective verbosity on every thread is the max of
// the base and all active overrides. Re-entrant calls
// from the same thread are rejected: depth is capped at 1, matching the
// source's thread-local override stack of depth 1.
func (l *Logger) ScopedVerbosity(v Verbosity) (restore func(), ok bool) {
	tid := currentThreadID()

	l.mu.Lock()
	if _, already := l.perThread[tid]; already {
		l.mu.Unlock()
		return func() {}, false
	}
	l.perThread[tid] = v
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.perThread, tid)
		l.mu.Unlock()
	}, true
}
