package mesh

import (
	"context"
	"fmt"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/scene"
	"scene-publisher/core/worker"

	"github.com/goccy/go-json"
)

// Stage names used in logs and progress.
const (
	Stage      = "meshes"
	BuildStage = "mesh_build"
)

// PayloadKind is the element kind translators are asked about for parallel
// payload loading.
const PayloadKind = "mesh"

// Translator loads the geometry of mesh elements.
type Translator interface {
	// SupportsParallelLoad reports whether payloads of kind may be loaded
	// from several goroutines at once.
	SupportsParallelLoad(kind string) bool
	LoadMeshPayload(ctx context.Context, mesh *scene.Mesh) (*scene.MeshPayload, error)
}

// Import loads the payload of every mesh of the filtered scene and stages
// the meshes that loaded. Payloads are loaded on the worker pool when the
// translator allows it; staging always happens here, in scene order.
func Import(ctx context.Context, ic *importer.Context, tr Translator) int {
	meshes := ic.Filtered.Meshes
	if len(meshes) == 0 || ic.Cancelled(ctx) {
		return 0
	}

	var results []worker.Result[*scene.MeshPayload]
	if tr.SupportsParallelLoad(PayloadKind) {
		results = worker.Map(ctx, ic.Pool, meshes, tr.LoadMeshPayload)
	} else {
		results = make([]worker.Result[*scene.MeshPayload], len(meshes))
		for i, m := range meshes {
			if ic.Cancelled(ctx) {
				break
			}
			p, err := tr.LoadMeshPayload(ctx, m)
			results[i] = worker.Result[*scene.MeshPayload]{Value: p, Err: err}
		}
	}

	staged := 0
	for i, m := range meshes {
		if ic.Cancelled(ctx) {
			break
		}
		res := results[i]
		if res.Err == nil && res.Value == nil {
			res.Err = fmt.Errorf("translator returned no payload")
		}
		if res.Err != nil {
			ic.Log.Warn(Stage, m.Name, "mesh payload could not be loaded: %v", res.Err)
			continue
		}
		o, err := ic.StageObject(importer.AreaMeshes, object.KindStaticMesh, m)
		if err != nil {
			ic.Log.Warn(Stage, m.Name, "%v", err)
			continue
		}
		if err := build(ic, o, m, res.Value); err != nil {
			ic.Log.Warn(Stage, m.Name, "%v", err)
			continue
		}
		if err := ic.Meshes.Set(m.ID, o); err != nil {
			ic.Log.Warn(Stage, m.Name, "%v", err)
			continue
		}
		ic.MeshPayloads[m.ID] = res.Value
		staged++
	}
	return staged
}

func build(ic *importer.Context, o *object.Object, m *scene.Mesh, p *scene.MeshPayload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	o.Payload = data
	if m.LightmapResolution > 0 {
		o.Set("LightmapResolution", object.Int(int64(m.LightmapResolution)))
	}
	o.Set("GenerateLightmapUVs", object.Bool(m.GenerateLightmapUVs))
	for _, slot := range m.Materials {
		mat, ok := ic.Resolve(importer.AreaMaterials, object.KindMaterial, ic.Materials, slot.Material)
		if !ok {
			ic.Log.Warn(Stage, m.Name, "material %s for slot %s is not available", slot.Material, slot.Slot)
			continue
		}
		o.Set("Material."+slot.Slot, object.StrongValue(mat.ID))
	}
	return nil
}

// Finalize publishes the staged meshes. Building is deferred to Build.
func Finalize(ctx context.Context, ic *importer.Context, valid importer.Subset) []*object.Object {
	return ic.FinalizeMap(ctx, Stage, importer.AreaMeshes, ic.Meshes, valid, nil)
}
