package actor

import (
	"scene-publisher/core/importer"
	"scene-publisher/core/object"
)

// ActionType represents the type of action for one managed actor.
type ActionType string

const (
	// ActionSpawn publishes a staged actor that has no destination instance.
	ActionSpawn ActionType = "spawn"
	// ActionUpdate reconciles a staged actor with its destination instance.
	ActionUpdate ActionType = "update"
	// ActionReplace deletes a destination instance of another kind and
	// spawns the staged actor in its place.
	ActionReplace ActionType = "replace"
	// ActionSkipDeleted leaves out a staged actor the user deleted from the
	// destination.
	ActionSkipDeleted ActionType = "skip_deleted"
	// ActionKeepExcluded keeps a destination actor whose kind was excluded
	// from the pass.
	ActionKeepExcluded ActionType = "keep_excluded"
	// ActionDelete removes a destination actor the scene no longer has.
	ActionDelete ActionType = "delete"
)

// Action represents a single reconcile operation on a managed actor.
type Action struct {
	Type     ActionType `json:"type"`
	StableID string     `json:"stable_id"`
	Name     string     `json:"name,omitempty"`
	Reason   string     `json:"reason,omitempty"`

	Staged   *object.Object `json:"-"`
	Existing *object.Object `json:"-"`
}

// Summary provides counts for each action type.
type Summary struct {
	Spawn        int `json:"spawn"`
	Update       int `json:"update"`
	Replace      int `json:"replace"`
	SkipDeleted  int `json:"skip_deleted"`
	KeepExcluded int `json:"keep_excluded"`
	Delete       int `json:"delete"`
}

func (s *Summary) count(t ActionType) {
	switch t {
	case ActionSpawn:
		s.Spawn++
	case ActionUpdate:
		s.Update++
	case ActionReplace:
		s.Replace++
	case ActionSkipDeleted:
		s.SkipDeleted++
	case ActionKeepExcluded:
		s.KeepExcluded++
	case ActionDelete:
		s.Delete++
	}
}

// Plan contains the actions that reconcile a world with the staged actors.
type Plan struct {
	Anchor string `json:"anchor"`
	// Created is set when the anchor did not exist before the pass.
	Created bool     `json:"created"`
	Actions []Action `json:"actions"`
	Summary Summary  `json:"summary"`
}

// BuildPlan classifies every staged actor and every actor managed by anchor.
// Staged actors come first, in staging order, so parents precede their
// children; deletions come last.
func BuildPlan(ic *importer.Context, anchor *object.Object) *Plan {
	plan := &Plan{Anchor: string(anchor.Path())}
	add := func(a Action) {
		plan.Actions = append(plan.Actions, a)
		plan.Summary.count(a.Type)
	}

	for id, staged := range ic.Actors.All() {
		a := Action{StableID: id, Name: staged.Name, Staged: staged}
		ref, tracked := anchor.Managed[id]
		existing, alive := trackedActor(ic.Store, ref, tracked)
		switch {
		case tracked && !alive && !ic.Options.RespawnDeleted:
			a.Type = ActionSkipDeleted
			a.Reason = "deleted from the destination"
		case !alive:
			a.Type = ActionSpawn
		case existing.Kind != staged.Kind:
			a.Type = ActionReplace
			a.Existing = existing
			a.Reason = "kind changed from " + string(existing.Kind)
		default:
			a.Type = ActionUpdate
			a.Existing = existing
		}
		add(a)
	}

	for id, ref := range sortedManaged(anchor) {
		if _, staged := ic.Actors.Get(id); staged {
			continue
		}
		existing, alive := trackedActor(ic.Store, ref, true)
		if !alive {
			continue
		}
		a := Action{StableID: id, Name: existing.Name, Existing: existing}
		if ic.Excluded[id] {
			a.Type = ActionKeepExcluded
			a.Reason = "excluded from the pass"
		} else {
			a.Type = ActionDelete
			a.Reason = "no longer in the scene"
		}
		add(a)
	}
	return plan
}

// trackedActor resolves a managed reference to a live actor in the world.
func trackedActor(s object.Store, r object.Ref, tracked bool) (*object.Object, bool) {
	if !tracked {
		return nil, false
	}
	o, ok := object.Resolve(s, r)
	if !ok || !o.Kind.IsActor() {
		return nil, false
	}
	return o, true
}
