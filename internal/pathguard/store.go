// Package pathguard owns every mutation of the PATH environment variable.
//
// All changes follow backup -> validate -> apply -> verify, with automatic
// rollback when apply or verify fails: PATH must never end up worse than it
// was before the operation began. Snapshots are persisted as JSON files and
// are never overwritten or auto-pruned; a recovery command restores from
// them by identifier.
package pathguard

import (
	"fmt"
	"sync"
)

// Scope identifies which PATH variable an operation targets.
type Scope int

const (
	// ScopeProcess is the current process's in-memory PATH.
	ScopeProcess Scope = iota
	// ScopeUser is the per-user persistent PATH.
	ScopeUser
	// ScopeMachine is the system-wide persistent PATH.
	ScopeMachine
)

// String returns the scope name used in logs and backup files.
func (s Scope) String() string {
	switch s {
	case ScopeProcess:
		return "process"
	case ScopeUser:
		return "user"
	case ScopeMachine:
		return "machine"
	default:
		return "unknown"
	}
}

// Store reads and writes the PATH variable for each scope. The production
// implementation is registry-backed on Windows; MemStore serves tests.
type Store interface {
	Get(scope Scope) (string, error)
	Set(scope Scope, value string) error
}

// MemStore is an in-memory Store for tests and dry runs.
type MemStore struct {
	mu     sync.Mutex
	values map[Scope]string
}

// NewMemStore creates a MemStore seeded with the given per-scope values.
func NewMemStore(values map[Scope]string) *MemStore {
	seeded := make(map[Scope]string, len(values))
	for k, v := range values {
		seeded[k] = v
	}
	return &MemStore{values: seeded}
}

// Get returns the stored value for the scope.
func (m *MemStore) Get(scope Scope) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[scope]
	if !ok {
		return "", fmt.Errorf("no value for %s scope", scope)
	}
	return v, nil
}

// Set stores the value for the scope.
func (m *MemStore) Set(scope Scope, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[scope] = value
	return nil
}
