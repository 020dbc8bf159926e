package terminal

import (
	"github.com/robotalks/bfio.go/pkg/bfio"
)

// Taxiway is a bounded FIFO of function IDs waiting for departure.
// An ID can be queued at most once.
type Taxiway struct {
	ring   []bfio.FunctionID
	head   int
	count  int
	queued [256]bool
}

// NewTaxiway creates a Taxiway holding at most capacity IDs.
func NewTaxiway(capacity int) *Taxiway {
	if capacity <= 0 {
		capacity = DefaultTaxiwayCapacity
	}
	return &Taxiway{ring: make([]bfio.FunctionID, capacity)}
}

// Put queues an ID. It fails when full or when the ID is already queued.
func (t *Taxiway) Put(id bfio.FunctionID) error {
	if t.queued[id] {
		return bfio.Errorf(bfio.Failed, "taxiway.put", "plane %s already on taxiway", id)
	}
	if t.count >= len(t.ring) {
		return bfio.Errorf(bfio.Failed, "taxiway.put", "taxiway full (%d)", len(t.ring))
	}
	t.ring[(t.head+t.count)%len(t.ring)] = id
	t.count++
	t.queued[id] = true
	return nil
}

// Next pops the oldest ID. An empty taxiway is Unnecessary.
func (t *Taxiway) Next() (bfio.FunctionID, error) {
	if t.count == 0 {
		return 0, bfio.ErrUnnecessary
	}
	id := t.ring[t.head]
	t.head = (t.head + 1) % len(t.ring)
	t.count--
	t.queued[id] = false
	return id, nil
}

// Contains checks if the ID is queued.
func (t *Taxiway) Contains(id bfio.FunctionID) bool {
	return t.queued[id]
}

// Len returns the number of queued IDs.
func (t *Taxiway) Len() int {
	return t.count
}

// Cap returns the capacity.
func (t *Taxiway) Cap() int {
	return len(t.ring)
}

// Full indicates no more IDs can be queued.
func (t *Taxiway) Full() bool {
	return t.count >= len(t.ring)
}

// IDs lists queued IDs, oldest first.
func (t *Taxiway) IDs() []bfio.FunctionID {
	ids := make([]bfio.FunctionID, 0, t.count)
	for n := 0; n < t.count; n++ {
		ids = append(ids, t.ring[(t.head+n)%len(t.ring)])
	}
	return ids
}

// Reset drops all queued IDs.
func (t *Taxiway) Reset() {
	t.head, t.count = 0, 0
	t.queued = [256]bool{}
}
