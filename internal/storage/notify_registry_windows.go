//go:build windows

package storage

import (
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// registryNotify is the non-portable ModConfigChangeNotification: a
// registry-change notifier on the Mods subkey (spec.md §4.2). Delivery is
// thread-agnostic (REG_NOTIFY_THREAD_AGNOSTIC) on Windows 8 and later;
// CanMonitorAcrossThreads reports whether that flag was accepted.
type registryNotify struct {
	key            registry.Key
	event          windows.Handle
	threadAgnostic bool
	fired          chan struct{}
	stop           chan struct{}
}

const (
	regNotifyChangeName     = 0x00000001
	regNotifyChangeLastSet  = 0x00000004
	regNotifyThreadAgnostic = 0x10000000
)

// NewRegistryModConfigChangeNotification watches the Mods subkey of base.
func NewRegistryModConfigChangeNotification(root registry.Key, modsSubkeyPath string) (ModConfigChangeNotification, error) {
	k, err := registry.OpenKey(root, modsSubkeyPath, registry.NOTIFY|registry.WOW64_64KEY)
	if err != nil {
		return nil, fmt.Errorf("storage: opening %s for change notification: %w", modsSubkeyPath, err)
	}
	n := &registryNotify{
		key:   k,
		fired: make(chan struct{}, 1),
		stop:  make(chan struct{}),
	}
	if err := n.arm(); err != nil {
		k.Close()
		return nil, err
	}
	go n.pump()
	return n, nil
}

func (n *registryNotify) arm() error {
	ev, err := windows.CreateEvent(nil, 1 /* manual reset */, 0, nil)
	if err != nil {
		return fmt.Errorf("storage: creating notify event: %w", err)
	}
	filter := uint32(regNotifyChangeName | regNotifyChangeLastSet | regNotifyThreadAgnostic)
	err = regNotifyChangeKeyValue(windows.Handle(n.key), false, filter, ev, true)
	if err != nil {
		// Retry without the thread-agnostic flag for pre-Windows-8 hosts.
		filter &^= regNotifyThreadAgnostic
		if err2 := regNotifyChangeKeyValue(windows.Handle(n.key), false, filter, ev, true); err2 != nil {
			windows.CloseHandle(ev)
			return fmt.Errorf("storage: RegNotifyChangeKeyValue: %w", err2)
		}
		n.threadAgnostic = false
	} else {
		n.threadAgnostic = true
	}
	n.event = ev
	return nil
}

func (n *registryNotify) pump() {
	for {
		s, err := windows.WaitForSingleObject(n.event, windows.INFINITE)
		if err != nil || s != windows.WAIT_OBJECT_0 {
			return
		}
		select {
		case n.fired <- struct{}{}:
		default:
		}
		select {
		case <-n.stop:
			return
		default:
		}
	}
}

func (n *registryNotify) Handle() <-chan struct{} { return n.fired }

func (n *registryNotify) ContinueMonitoring() error {
	windows.ResetEvent(n.event)
	return n.arm()
}

func (n *registryNotify) CanMonitorAcrossThreads() bool { return n.threadAgnostic }

func (n *registryNotify) Close() error {
	close(n.stop)
	windows.CloseHandle(n.event)
	return n.key.Close()
}
