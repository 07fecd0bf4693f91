package actor

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/remap"
	"scene-publisher/core/template"

	"go.uber.org/zap"
)

// maxDepth bounds walks up attachment chains.
const maxDepth = 64

// Result is the outcome of the actor finalize stage.
type Result struct {
	Plan      *Plan            `json:"plan,omitempty"`
	Published []*object.Object `json:"-"`
	Deleted   int              `json:"deleted"`
	Cancelled bool             `json:"cancelled"`
}

type finalizer struct {
	ic     *importer.Context
	world  *object.Object
	anchor *object.Object
	root   *object.Object
}

// Finalize publishes the staged anchor and reconciles the world with the
// staged actors. Every asset kind must be finalized first.
func Finalize(ctx context.Context, ic *importer.Context) *Result {
	res := &Result{}
	if ic.Anchor == nil || ic.World == "" {
		return res
	}
	world, err := ensureWorld(ic)
	if err != nil {
		ic.Log.Error(Stage, ic.Scene.Name, "%v", err)
		return res
	}
	anchor, created, err := publishAnchor(ic)
	if err != nil {
		ic.Log.Error(Stage, ic.Scene.Name, "%v", err)
		return res
	}
	root, ok := rootComponent(ic.Store, anchor)
	if !ok {
		ic.Log.Error(Stage, anchor.Name, "anchor has no root component")
		return res
	}
	f := &finalizer{ic: ic, world: world, anchor: anchor, root: root}

	SetRegistered(ic.Store, ic.World, false)
	defer SetRegistered(ic.Store, ic.World, true)

	plan := BuildPlan(ic, anchor)
	plan.Created = created
	res.Plan = plan
	ic.Reporter.Stage(Stage, len(plan.Actions))

	var deletes []Action
	for i, a := range plan.Actions {
		if a.Type == ActionDelete {
			deletes = append(deletes, a)
			continue
		}
		if ic.Cancelled(ctx) {
			ic.Log.Info(Stage, "", "cancelled after %d of %d actors", i, len(plan.Actions))
			res.Cancelled = true
			break
		}
		switch a.Type {
		case ActionSpawn, ActionUpdate, ActionReplace:
			ic.Attempted++
			final, err := f.actor(a)
			if err != nil {
				ic.Log.Error(Stage, a.Name, "%v", err)
				continue
			}
			ic.Succeeded++
			res.Published = append(res.Published, final)
		case ActionSkipDeleted:
			f.skip(a)
			ic.Log.Info(Stage, a.Name, "actor was deleted from the destination and is not respawned")
		case ActionKeepExcluded:
		}
		ic.Reporter.Step(Stage, a.Name, i+1, len(plan.Actions))
	}

	// references between actors, like look-at targets, can only be
	// rewritten once every actor is published
	for _, o := range res.Published {
		ic.RewriteStaged(Stage, o)
	}

	if !res.Cancelled && ic.Cancelled(ctx) {
		res.Cancelled = true
	}
	if !res.Cancelled {
		res.Deleted = f.delete(deletes)
	}
	f.layers(res.Published)

	if res.Cancelled && created && len(anchor.Managed) == 0 {
		if err := ic.Store.Delete(anchor.ID); err == nil {
			ic.Log.Info(Stage, anchor.Name, "removed the empty anchor of the cancelled import")
		}
	}

	ic.Logger.Info("actors finalized",
		zap.Int("spawned", plan.Summary.Spawn+plan.Summary.Replace),
		zap.Int("updated", plan.Summary.Update),
		zap.Int("deleted", res.Deleted),
		zap.Bool("cancelled", res.Cancelled),
	)
	return res
}

// ensureWorld returns the world object at the destination world path,
// creating it when the path is free.
func ensureWorld(ic *importer.Context) (*object.Object, error) {
	if o, ok := ic.Store.FindByPath(ic.World); ok {
		if o.Kind != object.KindWorld {
			return nil, fmt.Errorf("world path %s is taken by a %s", ic.World, o.Kind)
		}
		return o, nil
	}
	o, err := ic.Store.Create(&object.Object{
		Kind:  object.KindWorld,
		Name:  ic.World.Base(),
		Dir:   ic.World.Dir(),
		Props: make(object.Props),
	})
	if err != nil {
		return nil, fmt.Errorf("create world %s: %w", ic.World, err)
	}
	return o, nil
}

// publishAnchor maps the staged anchor onto the scene's anchor in the
// world, or moves it there when the scene has none yet.
func publishAnchor(ic *importer.Context) (*object.Object, bool, error) {
	staged := ic.Anchor
	stagedRoot, _ := rootComponent(ic.Store, staged)
	stagedPath := staged.Path()

	if existing, ok := FindAnchor(ic.Store, ic.World, ic.Scene.Name); ok {
		root, ok := rootComponent(ic.Store, existing)
		if !ok {
			created, err := ic.Store.Create(&object.Object{
				Kind:  object.KindSceneComponent,
				Name:  RootName,
				Outer: existing.ID,
				Props: stagedRoot.Props.Clone(),
			})
			if err != nil {
				return nil, false, fmt.Errorf("restore anchor root: %w", err)
			}
			existing.Set("RootComponent", object.StrongValue(created.ID))
			root = created
		}
		if existing.Managed == nil {
			existing.Managed = make(map[string]object.Ref)
		}
		ic.Remap.Add(staged.ID, existing.ID)
		ic.Remap.Add(stagedRoot.ID, root.ID)
		ic.Renames.Add(stagedPath, existing.Path())
		return existing, false, nil
	}

	name := staged.Name
	if _, taken := ic.Store.FindByPath(ic.World.Join(name)); taken {
		name = ic.Labels.GenerateUniqueName(name)
	}
	if err := ic.Store.Move(staged.ID, ic.World, name); err != nil {
		return nil, false, fmt.Errorf("publish anchor: %w", err)
	}
	// the managed map of a new anchor fills up as actors are published
	staged.Managed = make(map[string]object.Ref)
	ic.Renames.Add(stagedPath, staged.Path())
	ic.Log.Info(Stage, name, "created anchor for scene %s", ic.Scene.Name)
	return staged, true, nil
}

// bulk selects the properties copied as-is onto existing actors and
// components: everything persistent that the editable template leaves out.
func bulk(p object.PropertyDescriptor) bool {
	return !p.Has(object.Transient) && !template.Editable(p)
}

// actor publishes one spawn, update or replace action.
func (f *finalizer) actor(a Action) (*object.Object, error) {
	ic := f.ic
	staged, existing := a.Staged, a.Existing

	name := staged.Name
	var oldRoot object.ID
	if a.Type == ActionReplace {
		name = existing.Name
		if r, ok := rootComponent(ic.Store, existing); ok {
			oldRoot = r.ID
		}
		if err := ic.Store.Delete(existing.ID); err != nil {
			return nil, fmt.Errorf("replace %s: %w", existing.Path(), err)
		}
		ic.Labels.RemoveExistingName(existing.Name)
		existing = nil
	}

	stagedPath := staged.Path()
	remap.RewriteReferences(ic.Store, staged, ic.Remap)
	fresh := template.CaptureScope(staged, template.Editable)

	var final *object.Object
	if existing == nil {
		if _, taken := ic.Store.FindByPath(ic.World.Join(name)); taken {
			name = ic.Labels.GenerateUniqueName(name)
		} else {
			ic.Labels.AddExistingName(name)
		}
		if err := ic.Store.Move(staged.ID, ic.World, name); err != nil {
			return nil, fmt.Errorf("spawn %s: %w", staged.Name, err)
		}
		final = staged
		for _, c := range object.Subobjects(ic.Store, final) {
			template.Store(template.CaptureScope(c, template.Editable), c)
		}
		if oldRoot != "" {
			if root, ok := rootComponent(ic.Store, final); ok {
				f.reparent(oldRoot, root.ID)
			}
		}
	} else {
		final = existing
		f.update(staged, existing, fresh)
	}
	template.Store(fresh, final)

	ic.Remap.Add(staged.ID, final.ID)
	ic.Renames.Add(stagedPath, final.Path())
	remap.RewriteReferences(ic.Store, final, ic.Remap)
	f.anchor.Managed[a.StableID] = object.Ref{Kind: object.Weak, Target: final.ID, Path: final.Path()}
	if err := ic.Actors.Set(a.StableID, final); err != nil {
		ic.Log.Warn(Stage, final.Name, "%v", err)
	}

	postFinalize(ic, final)
	ic.CheckPersistence(Stage, final.Name, final.Path())
	ic.Logger.Debug("published actor",
		zap.String("action", string(a.Type)),
		zap.String("element", a.StableID),
		zap.String("path", string(final.Path())),
	)
	return final, nil
}

// update reconciles existing with staged in place. Editable properties
// keep user edits, everything else is copied.
func (f *finalizer) update(staged, existing *object.Object, fresh *template.Template) {
	ic := f.ic
	if ic.Options.ConflictFor(existing.Kind) == importer.Ignore {
		f.components(staged, existing, false)
		return
	}
	diff := fresh
	if ic.Options.ConflictFor(existing.Kind) != importer.Overwrite {
		diff = template.Diff(existing, fresh)
	}
	object.CopyProps(existing, staged, bulk)
	template.Apply(diff, existing, true)
	existing.StableID = staged.StableID
	existing.Metadata = maps.Clone(staged.Metadata)
	existing.Import = staged.Import

	f.components(staged, existing, true)
	rebuild(existing)
}

// skip maps the components of a user-deleted actor onto the component it
// was attached to, so its children re-attach to the nearest ancestor. Soft
// bindings to the staged actor are pointed at the world path it last had.
func (f *finalizer) skip(a Action) {
	dest := f.ic.World.Join(a.Name)
	if r, ok := f.anchor.Managed[a.StableID]; ok && r.Path != "" {
		dest = r.Path
	}
	f.ic.Renames.Add(a.Staged.Path(), dest)

	root, ok := rootComponent(f.ic.Store, a.Staged)
	if !ok {
		return
	}
	parent, ok := root.RefOf("AttachParent")
	if !ok {
		parent = object.StrongRef(f.root.ID)
	}
	for _, c := range object.Subobjects(f.ic.Store, a.Staged) {
		f.ic.Remap.Add(c.ID, parent.Target)
	}
}

// delete removes the actors the scene no longer has. Surviving actors
// attached to one of them move up to the nearest surviving ancestor, or to
// the anchor root.
func (f *finalizer) delete(actions []Action) int {
	if len(actions) == 0 {
		return 0
	}
	ic := f.ic
	deleted := make(map[object.ID]bool, len(actions))
	for _, a := range actions {
		deleted[a.Existing.ID] = true
	}

	for _, o := range ic.Store.List(ic.World, "") {
		if deleted[o.ID] {
			continue
		}
		for _, c := range object.Subobjects(ic.Store, o) {
			r, ok := c.RefOf("AttachParent")
			if !ok {
				continue
			}
			if owner, ok := f.owner(r.Target); ok && deleted[owner.ID] {
				c.Set("AttachParent", object.StrongValue(f.survivor(r.Target, deleted)))
			}
		}
	}

	n := 0
	for _, a := range actions {
		if err := ic.Store.Delete(a.Existing.ID); err != nil {
			ic.Log.Error(Stage, a.Name, "%v", err)
			continue
		}
		delete(f.anchor.Managed, a.StableID)
		ic.Labels.RemoveExistingName(a.Existing.Name)
		ic.Log.Info(Stage, a.Name, "deleted actor no longer in the scene")
		n++
	}
	return n
}

// survivor walks up from component id to the first one not owned by a
// deleted actor.
func (f *finalizer) survivor(id object.ID, deleted map[object.ID]bool) object.ID {
	for i := 0; i < maxDepth; i++ {
		owner, ok := f.owner(id)
		if !ok {
			break
		}
		if !deleted[owner.ID] {
			return id
		}
		root, ok := rootComponent(f.ic.Store, owner)
		if !ok {
			break
		}
		r, ok := root.RefOf("AttachParent")
		if !ok {
			break
		}
		id = r.Target
	}
	return f.root.ID
}

func (f *finalizer) owner(component object.ID) (*object.Object, bool) {
	c, ok := f.ic.Store.Get(component)
	if !ok || c.Outer == "" {
		return nil, false
	}
	return f.ic.Store.Get(c.Outer)
}

// reparent points every component attached to from at to instead.
func (f *finalizer) reparent(from, to object.ID) int {
	n := 0
	for _, o := range f.ic.Store.List(f.ic.World, "") {
		for _, c := range object.Subobjects(f.ic.Store, o) {
			if r, ok := c.RefOf("AttachParent"); ok && r.Target == from {
				c.Set("AttachParent", object.StrongValue(to))
				n++
			}
		}
	}
	return n
}

// layers adds the layers of the published actors to the world.
func (f *finalizer) layers(published []*object.Object) {
	cur := slices.Clone(f.world.Props["Layers"].List)
	n := len(cur)
	for _, o := range published {
		for _, l := range o.Props["Layers"].List {
			if !slices.Contains(cur, l) {
				cur = append(cur, l)
			}
		}
	}
	if len(cur) > n {
		f.world.Set("Layers", object.Strings(cur...))
	}
}

// rebuild regenerates derived state of o after a bulk copy.
func rebuild(o *object.Object) {
	if fn := object.Describe(o.Kind).Rebuild; fn != nil {
		fn(o)
	}
}
