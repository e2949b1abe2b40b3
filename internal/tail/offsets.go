package tail

import "sync"

// Offsets records, per stream name, how many bytes have been consumed.
// Values never decrease.
type Offsets struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewOffsets returns an empty tracker.
func NewOffsets() *Offsets {
	return &Offsets{values: make(map[string]int64)}
}

// Get returns the stored offset and whether the stream has been seen.
func (o *Offsets) Get(name string) (int64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.values[name]
	return v, ok
}

// Set records n for name unless it would move the offset backwards.
func (o *Offsets) Set(name string, n int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if cur, ok := o.values[name]; ok && n < cur {
		return
	}
	if n < 0 {
		n = 0
	}
	o.values[name] = n
}

// Advance adds delta to the stored offset. Negative deltas are ignored.
func (o *Offsets) Advance(name string, delta int64) int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if delta > 0 {
		o.values[name] += delta
	} else if _, ok := o.values[name]; !ok {
		o.values[name] = 0
	}
	return o.values[name]
}

// Len reports how many streams are tracked.
func (o *Offsets) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.values)
}
