// Package testutil provides deterministic helpers shared by package tests.
package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates node and transaction identifiers "<prefix>-1",
// "<prefix>-2", ... in call order.
//
// Stores opened with a SequenceIDs generator assign identical identifiers
// to identical operation sequences, which keeps golden dumps stable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	seq    int
}

// NewSequenceIDs creates a generator. An empty prefix defaults to "id".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceIDs{prefix: prefix}
}

// NewID returns the next identifier.
func (g *SequenceIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Count returns how many identifiers have been issued.
func (g *SequenceIDs) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. The next call to NewID returns "<prefix>-1".
func (g *SequenceIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
