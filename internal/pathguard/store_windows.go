//go:build windows

package pathguard

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows/registry"
)

const (
	userEnvKey    = `Environment`
	machineEnvKey = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`
)

// RegistryStore reads and writes PATH through the Windows registry for the
// persistent scopes and through the process environment for ScopeProcess.
// Machine-scope writes require administrative rights.
type RegistryStore struct{}

// NewSystemStore returns the registry-backed store.
func NewSystemStore() Store {
	return &RegistryStore{}
}

// Get reads the PATH value for the scope.
func (r *RegistryStore) Get(scope Scope) (string, error) {
	if scope == ScopeProcess {
		return os.Getenv("PATH"), nil
	}

	key, path, err := openScopeKey(scope, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer key.Close()

	value, _, err := key.GetStringValue("Path")
	if err == registry.ErrNotExist {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s PATH from %s: %w", scope, path, err)
	}
	return value, nil
}

// Set writes the PATH value for the scope. Persistent scopes are written as
// REG_EXPAND_SZ so %VAR% references keep expanding.
func (r *RegistryStore) Set(scope Scope, value string) error {
	if scope == ScopeProcess {
		return os.Setenv("PATH", value)
	}

	key, path, err := openScopeKey(scope, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer key.Close()

	if err := key.SetExpandStringValue("Path", value); err != nil {
		return fmt.Errorf("failed to write %s PATH to %s: %w", scope, path, err)
	}
	return nil
}

// openScopeKey opens the registry key backing a persistent scope.
func openScopeKey(scope Scope, access uint32) (registry.Key, string, error) {
	switch scope {
	case ScopeUser:
		key, err := registry.OpenKey(registry.CURRENT_USER, userEnvKey, access)
		if err != nil {
			return registry.Key(0), userEnvKey, fmt.Errorf("failed to open HKCU\\%s: %w", userEnvKey, err)
		}
		return key, userEnvKey, nil
	case ScopeMachine:
		key, err := registry.OpenKey(registry.LOCAL_MACHINE, machineEnvKey, access)
		if err != nil {
			return registry.Key(0), machineEnvKey, fmt.Errorf("failed to open HKLM\\%s: %w", machineEnvKey, err)
		}
		return key, machineEnvKey, nil
	default:
		return registry.Key(0), "", fmt.Errorf("scope %s has no registry key", scope)
	}
}
