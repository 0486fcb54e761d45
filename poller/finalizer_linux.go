//go:build linux

package poller

// BuildFDFinalizer returns the callback the port layer invokes when the
// descriptor behind w is closed. It empties both fields of w, so that a
// later descriptor reusing the same number can never resume a stale fiber.
//
// The callback does nothing else: no locking, no syscalls. It is idempotent
// and safe to invoke from any goroutine, concurrently with the scheduler.
// The poller is not retained, so the callback never keeps it reachable.
func BuildFDFinalizer(_ *Poller, w *WaiterRecord) func() {
	return func() {
		w.head.Store(nil)
		w.tail.Store(nil)
	}
}
