package pm

import (
	"fmt"
	"strings"

	"github.com/harrison/updatectl/internal/logger"
)

// Names lists the supported package managers in canonical run order.
var Names = []string{"winget", "choco", "scoop", "npm", "pip", "conda"}

// All constructs every adapter in canonical order.
func All(r ProcessRunner, log *logger.Logger) []Manager {
	return []Manager{
		NewWinget(r, log),
		NewChoco(r, log),
		NewScoop(r, log),
		NewNpm(r, log),
		NewPip(r, log),
		NewConda(r, log),
	}
}

// Select returns the adapters for the named managers, in canonical order
// regardless of how the caller spelled the list. Unknown names are an error.
func Select(names []string, r ProcessRunner, log *logger.Logger) ([]Manager, error) {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if !isKnown(key) {
			return nil, fmt.Errorf("unknown package manager %q (supported: %s)", name, strings.Join(Names, ", "))
		}
		wanted[key] = true
	}

	var selected []Manager
	for _, m := range All(r, log) {
		if wanted[m.Name()] {
			selected = append(selected, m)
		}
	}
	return selected, nil
}

func isKnown(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}
