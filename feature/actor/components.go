package actor

import (
	"maps"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/template"
)

// components reconciles the component tree of existing with the staged
// one. Staged components match existing ones by stable ID, or by name for
// components the import never tracked. Tracked components without a match
// are stale and removed; whatever was attached to them moves to their
// replacement. With apply unset only the identities are mapped.
func (f *finalizer) components(staged, existing *object.Object, apply bool) {
	ic := f.ic
	stagedComps := object.Subobjects(ic.Store, staged)
	current := object.Subobjects(ic.Store, existing)

	matched := make(map[object.ID]bool)
	var unmatched []*object.Object
	for _, sc := range stagedComps {
		ec, ok := match(sc, current, matched)
		if !ok {
			unmatched = append(unmatched, sc)
			continue
		}
		matched[ec.ID] = true
		ic.Remap.Add(sc.ID, ec.ID)
		if apply {
			updateComponent(ic, sc, ec)
		}
	}
	if !apply {
		return
	}

	type stale struct {
		id       object.ID
		stableID string
		name     string
		parent   object.ID
	}
	var removed []stale
	names := importer.NewNameProvider(nil)
	for _, ec := range current {
		if matched[ec.ID] || ec.StableID == "" {
			names.AddExistingName(ec.Name)
			continue
		}
		s := stale{id: ec.ID, stableID: ec.StableID, name: ec.Name}
		if r, ok := ec.RefOf("AttachParent"); ok {
			s.parent = r.Target
		}
		if err := ic.Store.Delete(ec.ID); err != nil {
			ic.Log.Warn(Stage, existing.Name, "remove stale component %s: %v", ec.Name, err)
			names.AddExistingName(ec.Name)
			continue
		}
		removed = append(removed, s)
	}

	created := make(map[string]object.ID)
	for _, sc := range unmatched {
		nc := &object.Object{
			Kind:     sc.Kind,
			Name:     names.GenerateUniqueName(sc.Name),
			Outer:    existing.ID,
			StableID: sc.StableID,
			Metadata: maps.Clone(sc.Metadata),
			Props:    sc.Props.Clone(),
		}
		if _, err := ic.Store.Create(nc); err != nil {
			ic.Log.Warn(Stage, existing.Name, "add component %s: %v", sc.Name, err)
			continue
		}
		template.Store(template.CaptureScope(nc, template.Editable), nc)
		ic.Remap.Add(sc.ID, nc.ID)
		created[nc.StableID] = nc.ID
		created[nc.Name] = nc.ID
	}

	for _, s := range removed {
		to, ok := created[s.stableID]
		if !ok {
			to, ok = created[s.name]
		}
		if !ok {
			to = s.parent
			if t, mapped := ic.Remap.Lookup(to); mapped {
				to = t
			}
		}
		if to == "" {
			to = f.root.ID
		}
		f.reparent(s.id, to)
	}
}

// match finds the existing component a staged one is reconciled with.
func match(sc *object.Object, current []*object.Object, matched map[object.ID]bool) (*object.Object, bool) {
	for _, ec := range current {
		if !matched[ec.ID] && ec.StableID != "" && ec.StableID == sc.StableID && ec.Kind == sc.Kind {
			return ec, true
		}
	}
	for _, ec := range current {
		if !matched[ec.ID] && ec.StableID == "" && ec.Name == sc.Name && ec.Kind == sc.Kind {
			return ec, true
		}
	}
	return nil, false
}

// updateComponent reconciles ec with the staged component sc in place.
func updateComponent(ic *importer.Context, sc, ec *object.Object) {
	fresh := template.CaptureScope(sc, template.Editable)
	diff := fresh
	if ic.Options.ConflictFor(sc.Kind) != importer.Overwrite {
		diff = template.Diff(ec, fresh)
	}
	object.CopyProps(ec, sc, bulk)
	template.Apply(diff, ec, true)
	template.Store(fresh, ec)
	ec.StableID = sc.StableID
	ec.Metadata = maps.Clone(sc.Metadata)
	rebuild(ec)
}

// SetRegistered flips the registration state of every component in world
// and returns how many components changed.
func SetRegistered(s object.Store, world object.Path, registered bool) int {
	n := 0
	var walk func(o *object.Object, depth int)
	walk = func(o *object.Object, depth int) {
		if o.Kind.IsComponent() && o.Registered != registered {
			o.Registered = registered
			n++
		}
		if depth >= maxDepth {
			return
		}
		for _, sub := range object.Subobjects(s, o) {
			walk(sub, depth+1)
		}
	}
	for _, o := range s.List(world, "") {
		walk(o, 0)
	}
	return n
}
