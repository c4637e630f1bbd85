package provider

import "sync"

// KeyPool holds the ordered credential list and the current rotation index.
// The index lives for the process lifetime and only moves forward
// (circularly); a successful attempt leaves it pointing at the key that
// worked so later calls start there.
type KeyPool struct {
	mu    sync.Mutex
	keys  []string
	index int
}

func NewKeyPool(keys []string) *KeyPool {
	return &KeyPool{keys: append([]string(nil), keys...)}
}

// Current returns the credential at the rotation index, or "" when the
// pool is empty.
func (p *KeyPool) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) == 0 {
		return ""
	}
	return p.keys[p.index]
}

// Advance moves the rotation index to the next slot, wrapping around.
func (p *KeyPool) Advance() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) == 0 {
		return
	}
	p.index = (p.index + 1) % len(p.keys)
}

// Len returns the number of credentials in the pool.
func (p *KeyPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// Index returns the current rotation index. Exposed for tests.
func (p *KeyPool) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}
