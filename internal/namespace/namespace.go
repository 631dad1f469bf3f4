// Package namespace implements the session-private namespace (C3): a named
// kernel-object boundary scoped to one orchestrator process, so mutexes and
// events created by the engine inside target processes do not collide
// across concurrently running orchestrators (spec.md §4.3).
package namespace

import "fmt"

// Name returns the private-namespace name for the orchestrator with the
// given pid: "WindhawkSession<orch-pid>".
func Name(orchPID uint32) string {
	return fmt.Sprintf("WindhawkSession%d", orchPID)
}

// ObjectName builds the fully-qualified name of a kernel object that lives
// inside the given namespace, e.g. ObjectName(1234, "ProcessInitAPCMutex-pid=5678").
func ObjectName(orchPID uint32, object string) string {
	return `\` + Name(orchPID) + `\` + object
}
