package session

import "time"

// runEventLoop implements spec.md §4.11 step 4: wait on {orch process
// handle, mod config change} with no timeout. Orchestrator death tears the
// session down; a config change is coalesced for coalesceWait before
// triggering a reload, re-checking orchestrator liveness first.
func (s *Session) runEventLoop() {
	defer close(s.done)

	orchDone := s.orchDone()
	configChanged := s.configChanged()

	for {
		select {
		case <-s.stop:
			s.teardown()
			return

		case <-orchDone:
			s.teardown()
			return

		case <-configChanged:
			if !s.waitCoalesced(orchDone) {
				s.teardown()
				return
			}
			if err := s.reload(); err != nil {
				s.cfg.Logger.Errorf("session", "reload: %v", err)
			}
			if s.cfg.ConfigChange != nil {
				if err := s.cfg.ConfigChange.ContinueMonitoring(); err != nil {
					s.cfg.Logger.Errorf("session", "rearming config-change notification: %v", err)
				}
			}
		}
	}
}

func (s *Session) orchDone() <-chan struct{} {
	if s.wait == nil {
		return nil // a nil channel never fires, matching "no orchestrator handle to watch"
	}
	return s.wait.Done()
}

func (s *Session) configChanged() <-chan struct{} {
	if s.cfg.ConfigChange == nil {
		return nil
	}
	return s.cfg.ConfigChange.Handle()
}

// waitCoalesced waits coalesceWait before acting on a config-change signal,
// so a burst of near-simultaneous writes triggers one reload. It reports
// false if the orchestrator died or Stop was requested during the wait.
func (s *Session) waitCoalesced(orchDone <-chan struct{}) bool {
	timer := time.NewTimer(coalesceWait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-orchDone:
		return false
	case <-s.stop:
		return false
	}
}

func (s *Session) reload() error {
	descs, err := s.cfg.Descriptors()
	if err != nil {
		return err
	}
	return s.mgr.Reload(descs)
}

// teardown runs the ordered shutdown described in spec.md §4.11:
// mods.before_uninit() -> queued disable of every hook -> destroy the mods
// manager, which runs the thread-call-stack barrier (C13) before any mod
// DLL is actually unloaded -> release the per-process semaphore only after
// every other resource has been released.
func (s *Session) teardown() {
	if s.mgr != nil {
		if err := s.mgr.Shutdown(); err != nil {
			s.cfg.Logger.Errorf("session", "shutdown: %v", err)
		}
	}
	if s.cfg.Interceptor != nil {
		if err := s.cfg.Interceptor.Stop(); err != nil {
			s.cfg.Logger.Errorf("session", "stopping interceptor: %v", err)
		}
	}
	if s.cfg.ConfigChange != nil {
		if err := s.cfg.ConfigChange.Close(); err != nil {
			s.cfg.Logger.Errorf("session", "closing config-change notification: %v", err)
		}
	}
	if s.wait != nil {
		if err := s.wait.Close(); err != nil {
			s.cfg.Logger.Errorf("session", "closing orchestrator handle: %v", err)
		}
	}

	mu.Lock()
	if current == s {
		current = nil
	}
	mu.Unlock()

	if err := s.releaseSemaphore(); err != nil {
		s.cfg.Logger.Errorf("session", "releasing session semaphore: %v", err)
	}
}
