package storage

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// fsNotifyWatch is the portable-mode ModConfigChangeNotification: a
// directory-change watcher on Mods/ for filename and last-write events
// (spec.md §4.2). Grounded on github.com/fsnotify/fsnotify, required by
// several repos in the retrieval pack (e.g. moby-moby vendors it for
// watching plugin/config directories).
type fsNotifyWatch struct {
	watcher *fsnotify.Watcher
	fired   chan struct{}
	dir     string
}

// NewPortableModConfigChangeNotification watches modsDir for create/write/
// rename/remove events.
func NewPortableModConfigChangeNotification(modsDir string) (ModConfigChangeNotification, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("storage: creating fsnotify watcher: %w", err)
	}
	if err := w.Add(modsDir); err != nil {
		w.Close()
		return nil, fmt.Errorf("storage: watching %s: %w", modsDir, err)
	}
	n := &fsNotifyWatch{watcher: w, fired: make(chan struct{}, 1), dir: modsDir}
	go n.pump()
	return n, nil
}

func (n *fsNotifyWatch) pump() {
	for {
		select {
		case ev, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case n.fired <- struct{}{}:
			default:
				// Already-pending notification; the waiter hasn't rearmed
				// yet, coalesce.
			}
		case _, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (n *fsNotifyWatch) Handle() <-chan struct{} { return n.fired }

func (n *fsNotifyWatch) ContinueMonitoring() error {
	// fsnotify delivers continuously; rearming is a no-op beyond draining
	// any already-queued signal so the next real change is what wakes the
	// waiter.
	select {
	case <-n.fired:
	default:
	}
	return nil
}

func (n *fsNotifyWatch) CanMonitorAcrossThreads() bool { return true }

func (n *fsNotifyWatch) Close() error { return n.watcher.Close() }
