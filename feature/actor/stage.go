package actor

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/scene"
)

// Stage is the name actors are logged and reported under.
const Stage = "actors"

// RootName is the name of the root component of every actor and anchor.
const RootName = "Root"

// AnchorName returns the name of the anchor of scene.
func AnchorName(sceneName string) string {
	return sceneName + "_Anchor"
}

// rootStableID tags the root component of the actor with stable ID id.
func rootStableID(id string) string {
	return id + "#root"
}

type stager struct {
	ic *importer.Context
	// existing is the published anchor of the scene, if any.
	existing *object.Object
	lookAt   []lookAt
	staged   int
}

type lookAt struct {
	camera *object.Object
	target string
}

// Import stages the scene anchor and the actor hierarchy of the filtered
// scene. Nothing is staged when the pass has no destination world. Assets
// must be staged first.
func Import(ctx context.Context, ic *importer.Context) int {
	if ic.World == "" {
		return 0
	}
	anchor, err := stageAnchor(ic)
	if err != nil {
		ic.Log.Error(Stage, ic.Scene.Name, "%v", err)
		return 0
	}
	ic.Anchor = anchor

	st := &stager{ic: ic}
	st.existing, _ = FindAnchor(ic.Store, ic.World, ic.Scene.Name)
	root, _ := rootComponent(ic.Store, anchor)
	for _, a := range ic.Filtered.Actors {
		if ic.Cancelled(ctx) {
			break
		}
		st.actor(a, root.ID)
	}

	// LookAt may point at any actor, so it is resolved once all are staged.
	for _, l := range st.lookAt {
		target, ok := ic.Resolve(importer.AreaWorld, "", ic.Actors, l.target)
		if !ok {
			ic.Log.Warn(Stage, l.camera.Name, "camera looks at unknown actor %s", l.target)
			continue
		}
		l.camera.Set("LookAt", object.StrongValue(target.ID))
	}
	return st.staged
}

func stageAnchor(ic *importer.Context) (*object.Object, error) {
	dir := ic.StagingDir(importer.AreaWorld)
	name := AnchorName(ic.Scene.Name)
	ic.Names(importer.AreaWorld).AddExistingName(name)

	anchor, err := ic.Store.Create(&object.Object{
		Kind:     object.KindSceneAnchor,
		Name:     name,
		Dir:      dir,
		StableID: ic.Scene.Name,
		Managed:  make(map[string]object.Ref),
	})
	if err != nil {
		return nil, fmt.Errorf("stage anchor: %w", err)
	}
	anchor.Set("Scene", object.String(ic.Scene.Name))
	anchor.Set("World", object.String(string(ic.World)))

	root, err := ic.Store.Create(&object.Object{
		Kind:  object.KindSceneComponent,
		Name:  RootName,
		Outer: anchor.ID,
		Props: object.Props{"Mobility": object.String("Static")},
	})
	if err != nil {
		return nil, fmt.Errorf("stage anchor root: %w", err)
	}
	anchor.Set("RootComponent", object.StrongValue(root.ID))
	return anchor, nil
}

// actor stages a and its children below the component attach.
func (st *stager) actor(a *scene.Actor, attach object.ID) {
	ic := st.ic
	kind := KindOf(a)

	if ic.Options.ActorPolicyFor(kind) == importer.ActorIgnore {
		ic.Excluded[a.ID] = true
		ic.Log.Info(Stage, a.Name, "%s actors are excluded from this import", kind)
		// children stay attached where the published instance is, if any
		if prev, ok := st.published(a.ID); ok {
			ic.Kept[a.ID] = prev
			if root, ok := rootComponent(ic.Store, prev); ok {
				attach = root.ID
			}
		}
		for _, c := range a.Children {
			if !c.Component {
				st.actor(c, attach)
			}
		}
		return
	}

	o, err := ic.StageObject(importer.AreaWorld, kind, a)
	if err != nil {
		ic.Log.Error(Stage, a.Name, "%v", err)
		return
	}
	setProps(ic, o, a)
	if a.Camera != nil && a.Camera.LookAt != "" {
		st.lookAt = append(st.lookAt, lookAt{camera: o, target: a.Camera.LookAt})
	}

	names := importer.NewNameProvider(nil)
	names.AddExistingName(RootName)
	root, err := st.component(o, a, RootName, rootStableID(a.ID), attach)
	if err != nil {
		ic.Log.Error(Stage, a.Name, "%v", err)
		return
	}
	o.Set("RootComponent", object.StrongValue(root.ID))

	if err := ic.Actors.Set(a.ID, o); err != nil {
		ic.Log.Error(Stage, a.Name, "%v", err)
		return
	}
	ic.Anchor.Managed[a.ID] = object.WeakRef(o.ID)
	st.staged++

	st.children(o, a, root.ID, names)
}

// children stages the children of a: components fold into the actor o,
// everything else becomes an actor of its own attached to parent.
func (st *stager) children(o *object.Object, a *scene.Actor, parent object.ID, names *importer.NameProvider) {
	for _, c := range a.Children {
		if !c.Component {
			st.actor(c, parent)
			continue
		}
		comp, err := st.component(o, c, names.GenerateUniqueName(c.Name), c.ID, parent)
		if err != nil {
			st.ic.Log.Error(Stage, c.Name, "%v", err)
			continue
		}
		st.children(o, c, comp.ID, names)
	}
}

// component creates a scene component of owner from element a.
func (st *stager) component(owner *object.Object, a *scene.Actor, name, stableID string, attach object.ID) (*object.Object, error) {
	ic := st.ic
	kind := object.KindSceneComponent
	switch {
	case a.Mesh != "" && len(a.Instances) > 0:
		kind = object.KindInstancedMeshComponent
	case a.Mesh != "":
		kind = object.KindStaticMeshComponent
	}

	c := &object.Object{
		Kind:     kind,
		Name:     name,
		Outer:    owner.ID,
		StableID: stableID,
		Props:    make(object.Props),
	}
	t := a.Transform.Flatten()
	c.Set("Location", object.Vector(t[0:3]...))
	c.Set("Rotation", object.Vector(t[3:6]...))
	c.Set("Scale", object.Vector(t[6:9]...))
	c.Set("Visible", object.Bool(!a.Hidden))
	if kind == object.KindSceneComponent {
		c.Set("Mobility", object.String("Movable"))
	} else {
		c.Set("Mobility", object.String("Static"))
	}
	if attach != "" {
		c.Set("AttachParent", object.StrongValue(attach))
	}

	if a.Mesh != "" {
		if m, ok := ic.Resolve(importer.AreaMeshes, object.KindStaticMesh, ic.Meshes, a.Mesh); ok {
			c.Set("Mesh", object.StrongValue(m.ID))
		} else {
			ic.Log.Warn(Stage, a.Name, "mesh %s is not available", a.Mesh)
		}
		for _, slot := range slices.Sorted(maps.Keys(a.Materials)) {
			m, ok := ic.Resolve(importer.AreaMaterials, object.KindMaterial, ic.Materials, a.Materials[slot])
			if !ok {
				ic.Log.Warn(Stage, a.Name, "material %s for slot %s is not available", a.Materials[slot], slot)
				continue
			}
			c.Set("Material."+slot, object.StrongValue(m.ID))
		}
	}
	if kind == object.KindInstancedMeshComponent {
		flat := make([]float64, 0, 9*len(a.Instances))
		for _, inst := range a.Instances {
			flat = append(flat, inst.Flatten()...)
		}
		c.Set("Instances", object.Vector(flat...))
	}
	if rebuild := object.Describe(kind).Rebuild; rebuild != nil {
		rebuild(c)
	}

	if _, err := ic.Store.Create(c); err != nil {
		return nil, fmt.Errorf("stage component %s: %w", name, err)
	}
	return c, nil
}

// published returns the actor the existing anchor manages for stableID.
func (st *stager) published(stableID string) (*object.Object, bool) {
	if st.existing == nil {
		return nil, false
	}
	r, ok := st.existing.Managed[stableID]
	if !ok {
		return nil, false
	}
	return object.Resolve(st.ic.Store, r)
}

// rootComponent returns the component o's RootComponent points to.
func rootComponent(s object.Store, o *object.Object) (*object.Object, bool) {
	r, ok := o.RefOf("RootComponent")
	if !ok {
		return nil, false
	}
	return object.Resolve(s, r)
}
