//go:build !windows

package pathguard

import "os"

// envStore is a development fallback for non-Windows builds: persistent
// scopes have no backing store, so all scopes map onto the process
// environment. The real target platform uses the registry-backed store.
type envStore struct{}

// NewSystemStore returns the process-environment store.
func NewSystemStore() Store {
	return &envStore{}
}

func (e *envStore) Get(scope Scope) (string, error) {
	return os.Getenv("PATH"), nil
}

func (e *envStore) Set(scope Scope, value string) error {
	return os.Setenv("PATH", value)
}
