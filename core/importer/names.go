package importer

import (
	"fmt"
	"strings"
)

// NameProvider hands out names that are unique within one namespace.
// Comparison is case insensitive.
type NameProvider struct {
	used  map[string]bool
	taken func(name string) bool
}

// NewNameProvider creates a provider. taken, when set, reports names owned
// by objects the provider does not track.
func NewNameProvider(taken func(name string) bool) *NameProvider {
	return &NameProvider{used: make(map[string]bool), taken: taken}
}

// GenerateUniqueName returns base, or base_N for the smallest free N, and
// reserves it.
func (n *NameProvider) GenerateUniqueName(base string) string {
	if base == "" {
		base = "Unnamed"
	}
	name := base
	for i := 1; n.inUse(name); i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	n.AddExistingName(name)
	return name
}

// AddExistingName reserves name.
func (n *NameProvider) AddExistingName(name string) {
	n.used[strings.ToLower(name)] = true
}

// RemoveExistingName releases name.
func (n *NameProvider) RemoveExistingName(name string) {
	delete(n.used, strings.ToLower(name))
}

// Contains reports whether name is reserved.
func (n *NameProvider) Contains(name string) bool {
	return n.used[strings.ToLower(name)]
}

func (n *NameProvider) inUse(name string) bool {
	return n.Contains(name) || (n.taken != nil && n.taken(name))
}
