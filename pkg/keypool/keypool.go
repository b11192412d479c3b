// Package keypool tracks a pool of interchangeable API keys for the
// generation endpoint.
//
// Keys are addressed by index. A key is either active or exhausted;
// exhaustion is terminal for the run (pools are rebuilt on process restart).
// The pool holds a rotation pointer so consecutive failures spread attempts
// across the remaining active keys.
package keypool

import (
	"errors"
	"sync"
)

// ErrEmptyPool indicates the pool was constructed with no keys.
var ErrEmptyPool = errors.New("key pool requires at least one key")

// Pool is the rotation state machine over key indices 0..N-1.
// All methods are safe for concurrent use.
type Pool struct {
	mu        sync.Mutex
	size      int
	current   int
	exhausted []bool
	remaining int
}

// New creates a Pool over n keys, all active.
func New(n int) (*Pool, error) {
	if n <= 0 {
		return nil, ErrEmptyPool
	}

	return &Pool{
		size:      n,
		exhausted: make([]bool, n),
		remaining: n,
	}, nil
}

// NextAvailable returns the index of the key at the current pointer if it is
// active, advancing circularly past exhausted keys otherwise. Returns false
// once every key is exhausted; from that point on it always returns false.
func (p *Pool) NextAvailable() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.remaining == 0 {
		return 0, false
	}

	for range p.size {
		if !p.exhausted[p.current] {
			return p.current, true
		}
		p.current = (p.current + 1) % p.size
	}

	return 0, false
}

// Advance unconditionally moves the rotation pointer to the next index.
// Called after any per-key failure so subsequent attempts land elsewhere.
func (p *Pool) Advance() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = (p.current + 1) % p.size
}

// MarkExhausted transitions a key to the exhausted state. Irreversible for
// the run; marking an already-exhausted key is a no-op.
func (p *Pool) MarkExhausted(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= p.size || p.exhausted[index] {
		return
	}

	p.exhausted[index] = true
	p.remaining--
}

// Size returns the total number of keys in the pool.
func (p *Pool) Size() int {
	return p.size
}

// ActiveCount returns the number of keys not yet exhausted.
func (p *Pool) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.remaining
}

// ExhaustedCount returns the number of keys exhausted so far.
func (p *Pool) ExhaustedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.size - p.remaining
}
