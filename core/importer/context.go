package importer

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"scene-publisher/core/logger"
	"scene-publisher/core/object"
	"scene-publisher/core/progress"
	"scene-publisher/core/remap"
	"scene-publisher/core/scene"
	"scene-publisher/core/worker"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrMissingService is returned by New when a required host service is absent.
	ErrMissingService = errors.New("missing required service")
	// ErrInvalidDestination is returned by New for unusable destination paths.
	ErrInvalidDestination = errors.New("invalid destination path")
)

// TransientRoot is the namespace staged objects live in.
const TransientRoot object.Path = "/Transient"

// Area is one staging sub-namespace.
type Area string

const (
	AreaTextures  Area = "Textures"
	AreaFunctions Area = "MaterialFunctions"
	AreaMaterials Area = "Materials"
	AreaMeshes    Area = "Meshes"
	AreaSequences Area = "Sequences"
	AreaVariants  Area = "Variants"
	AreaWorld     Area = "World"
)

// Areas lists every area in finalize order.
var Areas = []Area{AreaTextures, AreaFunctions, AreaMaterials, AreaMeshes, AreaSequences, AreaVariants, AreaWorld}

// Services are the host collaborators an import pass needs.
type Services struct {
	// Store is the destination object runtime. Required.
	Store object.Store
	// Index answers change-detection lookups. Required.
	Index AssetIndex
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Reporter defaults to progress.Nop.
	Reporter progress.Reporter
	// Signal defaults to a fresh, never raised signal.
	Signal *progress.Signal
	// Pool defaults to a pool sized by Options.Workers.
	Pool *worker.Pool
}

// Context owns the state of one import pass: the staged namespace, the
// filtered scene and the element maps. It is used from a single goroutine.
type Context struct {
	// Scene is the input scene. It is never modified.
	Scene *scene.Scene
	// Filtered is the working copy; unchanged elements are removed from it.
	Filtered *scene.Scene

	Options     Options
	PassID      string
	Destination object.Path
	// World is the destination world path; empty in AssetsOnly mode.
	World object.Path

	Store    object.Store
	Index    AssetIndex
	Log      *Log
	Logger   *zap.Logger
	Reporter progress.Reporter
	Signal   *progress.Signal
	Pool     *worker.Pool

	Remap   *remap.Table
	Renames *remap.Renames

	Textures    *ElementMap
	Functions   *ElementMap
	Materials   *ElementMap
	Meshes      *ElementMap
	Sequences   *ElementMap
	VariantSets *ElementMap
	// Actors maps stable IDs to staged actors, flattened over the hierarchy.
	Actors *ElementMap

	// Anchor is the staged scene anchor holding this pass's managed actors.
	Anchor *object.Object
	// Excluded lists stable IDs of actors intentionally left out of this pass.
	Excluded map[string]bool
	// Kept maps excluded stable IDs to the live destination actors that stay
	// in place of them.
	Kept map[string]*object.Object
	// MeshPayloads holds loaded geometry keyed by mesh stable ID.
	MeshPayloads map[string]*scene.MeshPayload

	// Attempted and Succeeded count finalized items for the pass result.
	Attempted int
	Succeeded int

	// Labels hands out unique actor labels in the destination world.
	Labels *NameProvider

	staging map[Area]object.Path
	final   map[Area]object.Path
	names   map[Area]*NameProvider
	// ids maps element names of the input scene to stable IDs per area.
	ids map[Area]map[string]string
}

// New initializes an import pass. It validates the destination and the
// required services, derives the staging and final sub-namespaces and
// clones the scene. Nothing is staged on error.
func New(sc *scene.Scene, destination object.Path, opts Options, svc Services) (*Context, error) {
	if sc == nil {
		return nil, errors.New("init import: scene is nil")
	}
	if err := validateDestination(destination); err != nil {
		return nil, fmt.Errorf("init import: %w", err)
	}
	if svc.Store == nil {
		return nil, fmt.Errorf("init import: object store: %w", ErrMissingService)
	}
	if svc.Index == nil {
		return nil, fmt.Errorf("init import: asset index: %w", ErrMissingService)
	}
	if opts.SceneMode == CurrentWorld {
		if err := validateDestination(opts.World); err != nil {
			return nil, fmt.Errorf("init import: world: %w", err)
		}
	}

	filtered, err := sc.Clone()
	if err != nil {
		return nil, fmt.Errorf("init import: clone scene: %w", err)
	}

	passID := uuid.NewString()
	log := svc.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = logger.WithPass(log, passID)
	if svc.Reporter == nil {
		svc.Reporter = progress.Nop{}
	}
	if svc.Signal == nil {
		svc.Signal = &progress.Signal{}
	}
	if svc.Pool == nil {
		svc.Pool = worker.New(opts.Workers)
	}

	ic := &Context{
		Scene:        sc,
		Filtered:     filtered,
		Options:      opts,
		PassID:       passID,
		Destination:  destination,
		Store:        svc.Store,
		Index:        svc.Index,
		Log:          NewLog(log),
		Logger:       log,
		Reporter:     svc.Reporter,
		Signal:       svc.Signal,
		Pool:         svc.Pool,
		Remap:        remap.NewTable(),
		Renames:      remap.NewRenames(),
		Textures:     NewElementMap(),
		Functions:    NewElementMap(),
		Materials:    NewElementMap(),
		Meshes:       NewElementMap(),
		Sequences:    NewElementMap(),
		VariantSets:  NewElementMap(),
		Actors:       NewElementMap(),
		Excluded:     make(map[string]bool),
		Kept:         make(map[string]*object.Object),
		MeshPayloads: make(map[string]*scene.MeshPayload),
		staging:      make(map[Area]object.Path),
		final:        make(map[Area]object.Path),
		names:        make(map[Area]*NameProvider),
		ids:          indexElements(sc),
	}

	root := ic.StagingRoot()
	for _, a := range Areas {
		ic.staging[a] = root.Join(string(a))
		ic.final[a] = destination.Join(string(a))
		finalDir := ic.final[a]
		ic.names[a] = NewNameProvider(func(name string) bool {
			_, ok := ic.Store.FindByPath(finalDir.Join(name))
			return ok
		})
	}

	switch opts.SceneMode {
	case NewWorld:
		ic.World = destination.Join(sc.Name + "_World")
	case CurrentWorld:
		ic.World = opts.World
	}
	if ic.World != "" {
		ic.final[AreaWorld] = ic.World
		world := ic.World
		ic.Labels = NewNameProvider(func(name string) bool {
			_, ok := ic.Store.FindByPath(world.Join(name))
			return ok
		})
	} else {
		ic.Labels = NewNameProvider(nil)
	}

	ic.CheckPersistence("init", "", destination)
	ic.Logger.Info("import initialized",
		zap.String("scene", sc.Name),
		zap.String("destination", string(destination)),
		zap.Stringer("mode", opts.SceneMode),
	)
	return ic, nil
}

func validateDestination(p object.Path) error {
	s := string(p)
	if s == "" || !strings.HasPrefix(s, "/") {
		return fmt.Errorf("%q must be an absolute path: %w", s, ErrInvalidDestination)
	}
	for _, part := range strings.Split(s, "/") {
		if part == ".." || part == "." {
			return fmt.Errorf("%q must not contain relative segments: %w", s, ErrInvalidDestination)
		}
	}
	if p.HasPrefix(TransientRoot) {
		return fmt.Errorf("%q is inside the transient namespace: %w", s, ErrInvalidDestination)
	}
	return nil
}

func indexElements(sc *scene.Scene) map[Area]map[string]string {
	ids := make(map[Area]map[string]string)
	add := func(a Area, e *scene.Element) {
		if ids[a] == nil {
			ids[a] = make(map[string]string)
		}
		ids[a][e.Name] = e.ID
	}
	for _, t := range sc.Textures {
		add(AreaTextures, &t.Element)
	}
	for _, f := range sc.MaterialFunctions {
		add(AreaFunctions, &f.Element)
	}
	for _, m := range sc.Materials {
		add(AreaMaterials, &m.Element)
	}
	for _, m := range sc.Meshes {
		add(AreaMeshes, &m.Element)
	}
	for _, q := range sc.Sequences {
		add(AreaSequences, &q.Element)
	}
	sc.WalkActors(func(a, _ *scene.Actor) bool {
		add(AreaWorld, &a.Element)
		return true
	})
	return ids
}

// ElementID returns the stable ID of the element of area named name in the
// input scene.
func (ic *Context) ElementID(a Area, name string) (string, bool) {
	id, ok := ic.ids[a][name]
	return id, ok
}

// Resolve returns the object a reference by element name points to: the
// object staged for it in m, or its previously published asset when the
// element was filtered out as unchanged. Actors excluded from the pass
// resolve to the destination actor kept in their place.
func (ic *Context) Resolve(a Area, kind object.Kind, m *ElementMap, name string) (*object.Object, bool) {
	id, ok := ic.ElementID(a, name)
	if !ok {
		return nil, false
	}
	if o, ok := m.Get(id); ok {
		return o, true
	}
	if a == AreaWorld {
		o, ok := ic.Kept[id]
		return o, ok
	}
	return ic.Store.FindByStableID(ic.FinalDir(a), kind, id)
}

// StagingRoot is the transient namespace of this pass.
func (ic *Context) StagingRoot() object.Path {
	return TransientRoot.Join(ic.PassID)
}

// StagingDir returns the staging sub-namespace of area.
func (ic *Context) StagingDir(a Area) object.Path {
	return ic.staging[a]
}

// FinalDir returns the destination sub-namespace of area. The world area
// resolves to the destination world.
func (ic *Context) FinalDir(a Area) object.Path {
	return ic.final[a]
}

// Names returns the unique name provider of area.
func (ic *Context) Names(a Area) *NameProvider {
	return ic.names[a]
}

// Cancelled reports whether the user cancelled the pass or ctx is done.
func (ic *Context) Cancelled(ctx context.Context) bool {
	return ic.Signal.Cancelled() || ctx.Err() != nil
}

// IsStaged reports whether id is a staged object, or a subobject of one.
func (ic *Context) IsStaged(id object.ID) bool {
	o, ok := ic.Store.Get(id)
	for i := 0; ok && o.Outer != "" && i < 64; i++ {
		o, ok = ic.Store.Get(o.Outer)
	}
	return ok && o.Path().HasPrefix(ic.StagingRoot())
}

// StageObject creates a staged object in area under a unique name, tagged
// with the element's stable ID, metadata and content hash.
func (ic *Context) StageObject(a Area, kind object.Kind, elem scene.Identified) (*object.Object, error) {
	e := elem.Base()
	o := &object.Object{
		Kind:     kind,
		Name:     ic.AssetName(a, kind, e),
		Dir:      ic.StagingDir(a),
		StableID: e.ID,
		Metadata: copyMetadata(ic.Filtered.MetadataFor(e.Name)),
		Props:    make(object.Props),
		Import:   object.ImportData{SourceFile: ic.Scene.SourceFile, Hash: scene.Hash(elem)},
	}
	if _, err := ic.Store.Create(o); err != nil {
		return nil, fmt.Errorf("stage %s %s: %w", kind, e.Name, err)
	}
	return o, nil
}

// AssetName picks the name an element is staged and published under: the
// name of its previously published asset if there is one, or a fresh
// unique name otherwise.
func (ic *Context) AssetName(a Area, kind object.Kind, e *scene.Element) string {
	names := ic.names[a]
	if prev, ok := ic.Store.FindByStableID(ic.FinalDir(a), kind, e.ID); ok && !names.Contains(prev.Name) {
		names.AddExistingName(prev.Name)
		return prev.Name
	}
	return names.GenerateUniqueName(e.Name)
}

// Discard deletes every object still in the staging namespace.
func (ic *Context) Discard() int {
	n := 0
	for _, o := range ic.Store.List(ic.StagingRoot(), "") {
		if err := ic.Store.Delete(o.ID); err == nil {
			n++
		}
	}
	if n > 0 {
		ic.Logger.Debug("discarded staged objects", zap.Int("count", n))
	}
	return n
}

// Success reports the overall outcome: false only when items were attempted
// and none succeeded.
func (ic *Context) Success() bool {
	return ic.Attempted == 0 || ic.Succeeded > 0
}

// CheckPersistence logs advisory warnings for paths the host may refuse to
// save.
func (ic *Context) CheckPersistence(stage, element string, p object.Path) {
	if limit := ic.Options.MaxPathLength; limit > 0 && len(p) > limit {
		ic.Log.Warn(stage, element, "path %s is %d characters long, over the %d limit", p, len(p), limit)
	}
	for _, ro := range ic.Options.ReadOnlyRoots {
		if p.HasPrefix(ro) {
			ic.Log.Warn(stage, element, "path %s is inside read-only namespace %s", p, ro)
		}
	}
}

func copyMetadata(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}
