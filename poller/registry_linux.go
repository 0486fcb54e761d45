//go:build linux

package poller

import (
	"sync"
	"weak"
)

// registry tracks every poller created with reclamation enabled, using weak
// pointers so that tracking never keeps a poller reachable. Each entry also
// holds the core strongly, which is what lets Sweep destroy pollers whose
// handle has been collected.
type registry struct {
	data map[uint64]registryEntry

	// ring holds IDs in registration order, 0 marks a removed entry.
	ring []uint64

	mu sync.Mutex
}

type registryEntry struct {
	handle weak.Pointer[Poller]
	core   *core
}

var pollers = newRegistry()

func newRegistry() *registry {
	return &registry{
		data: make(map[uint64]registryEntry),
		ring: make([]uint64, 0, 64),
	}
}

// track registers p with the process-wide registry.
func track(p *Poller) {
	pollers.add(p)
}

func (r *registry) add(p *Poller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[p.core.id] = registryEntry{handle: weak.Make(p), core: p.core}
	r.ring = append(r.ring, p.core.id)
}

// remove drops the entry for id, if any. Called once a core is released, so
// explicitly destroyed pollers do not wait for a sweep to be forgotten.
func (r *registry) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return
	}
	delete(r.data, id)
	r.compact()
}

// collected removes and returns the cores whose handle is gone. Entries
// already destroyed are dropped without being returned.
func (r *registry) collected() []*core {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*core
	for i, id := range r.ring {
		if id == 0 {
			continue
		}
		e, ok := r.data[id]
		if !ok {
			r.ring[i] = 0
			continue
		}
		switch {
		case e.core.status.load() == Dead:
		case e.handle.Value() == nil:
			out = append(out, e.core)
		default:
			continue
		}
		delete(r.data, id)
		r.ring[i] = 0
	}
	r.compact()
	return out
}

// live counts tracked pollers that are still reachable and not destroyed.
func (r *registry) live() (n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.data {
		if e.handle.Value() != nil && e.core.status.load() != Dead {
			n++
		}
	}
	return n
}

// compact drops ring slots that no longer have an entry, once they dominate
// the ring. Must be called with mu held.
func (r *registry) compact() {
	if len(r.ring) <= 64 || len(r.data) >= len(r.ring)/4 {
		return
	}
	ring := make([]uint64, 0, max(len(r.data)*2, 64))
	for _, id := range r.ring {
		if _, ok := r.data[id]; ok {
			ring = append(ring, id)
		}
	}
	r.ring = ring
}

// Live returns the number of pollers tracked by the reclamation sweep that
// are still reachable and not destroyed.
func Live() int {
	return pollers.live()
}
