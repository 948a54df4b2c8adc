//go:build !windows

package runner

import "os/exec"

// hideWindow is a no-op off Windows; there is no console window to suppress.
func hideWindow(cmd *exec.Cmd) {}
