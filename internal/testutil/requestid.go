package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates request ids "req-0001", "req-0002", ... so logs,
// journal rows and golden files are deterministic.
//
// Thread-safety: all methods are safe for concurrent use.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator. If prefix is empty, "req" is used.
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "req"
	}
	return &SequentialIDs{prefix: prefix}
}

// Next returns the next id. Its signature matches relay.Options.NewRequestID.
func (g *SequentialIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
