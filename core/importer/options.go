package importer

import (
	"fmt"
	"strings"

	"scene-publisher/core/object"
)

// SceneMode selects what an import pass places in the destination.
type SceneMode int

const (
	// NewWorld publishes assets and spawns actors into a world created for
	// the scene.
	NewWorld SceneMode = iota
	// CurrentWorld publishes assets and spawns actors into Options.World.
	CurrentWorld
	// AssetsOnly publishes assets and skips actors.
	AssetsOnly
)

func (m SceneMode) String() string {
	switch m {
	case NewWorld:
		return "new-world"
	case CurrentWorld:
		return "current-world"
	case AssetsOnly:
		return "assets-only"
	}
	return fmt.Sprintf("SceneMode(%d)", int(m))
}

// ParseSceneMode parses the String form of a mode.
func ParseSceneMode(s string) (SceneMode, error) {
	switch strings.ToLower(s) {
	case "", "new-world", "new":
		return NewWorld, nil
	case "current-world", "current":
		return CurrentWorld, nil
	case "assets-only", "assets":
		return AssetsOnly, nil
	}
	return 0, fmt.Errorf("unknown scene mode %q", s)
}

// ConflictPolicy decides what happens when a published asset already exists.
type ConflictPolicy int

const (
	// Merge re-applies the user's edits on top of the fresh content.
	Merge ConflictPolicy = iota
	// Overwrite replaces the existing asset, dropping user edits.
	Overwrite
	// Ignore keeps the existing asset untouched.
	Ignore
)

func (p ConflictPolicy) String() string {
	switch p {
	case Merge:
		return "merge"
	case Overwrite:
		return "overwrite"
	case Ignore:
		return "ignore"
	}
	return fmt.Sprintf("ConflictPolicy(%d)", int(p))
}

// ParseConflictPolicy parses the String form of a policy.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(s) {
	case "", "merge":
		return Merge, nil
	case "overwrite":
		return Overwrite, nil
	case "ignore":
		return Ignore, nil
	}
	return 0, fmt.Errorf("unknown conflict policy %q", s)
}

// ActorPolicy decides whether actors of a kind are imported.
type ActorPolicy int

const (
	// ActorFull imports the actor.
	ActorFull ActorPolicy = iota
	// ActorIgnore leaves the actor out of the pass and keeps any previously
	// imported instance.
	ActorIgnore
)

// Options configure one import pass.
type Options struct {
	SceneMode SceneMode
	// World is the destination world path in CurrentWorld mode.
	World object.Path
	// Conflicts holds per-kind conflict policies. Missing kinds merge.
	Conflicts map[object.Kind]ConflictPolicy
	// Actors holds per actor kind policies. Missing kinds import fully.
	Actors map[object.Kind]ActorPolicy
	// RespawnDeleted brings back managed actors the user deleted.
	RespawnDeleted bool
	// MaxTextureSize clamps texture dimensions. Zero disables clamping.
	MaxTextureSize int
	// MaxPathLength is the advisory limit on published object paths.
	MaxPathLength int
	// ReadOnlyRoots are namespaces the host refuses to save into.
	ReadOnlyRoots []object.Path
	// Workers bounds the worker pool. Zero uses GOMAXPROCS.
	Workers int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		SceneMode:      NewWorld,
		MaxTextureSize: 8192,
		MaxPathLength:  260,
		ReadOnlyRoots:  []object.Path{"/Engine"},
	}
}

// ConflictFor returns the policy for kind.
func (o Options) ConflictFor(kind object.Kind) ConflictPolicy {
	return o.Conflicts[kind]
}

// ActorPolicyFor returns the policy for actor kind.
func (o Options) ActorPolicyFor(kind object.Kind) ActorPolicy {
	return o.Actors[kind]
}

// ParsePolicies parses "kind=policy" pairs.
func ParsePolicies(pairs []string) (map[object.Kind]ConflictPolicy, error) {
	out := make(map[object.Kind]ConflictPolicy, len(pairs))
	for _, pair := range pairs {
		kind, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("policy %q: expected kind=policy", pair)
		}
		p, err := ParseConflictPolicy(value)
		if err != nil {
			return nil, err
		}
		out[object.Kind(kind)] = p
	}
	return out, nil
}
