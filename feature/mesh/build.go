package mesh

import (
	"context"
	"errors"
	"math"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/scene"
	"scene-publisher/core/worker"
)

// Built is the derived render data of one mesh.
type Built struct {
	Vertices  int
	Triangles int
	// Bounds is the axis aligned box as min xyz then max xyz.
	Bounds []float64
}

// Builder computes render data from geometry. Build runs on the worker pool
// and must not touch shared state.
type Builder interface {
	Build(ctx context.Context, p *scene.MeshPayload) (Built, error)
}

// Geometry is the default builder: counts and bounds.
type Geometry struct{}

// Build computes the counts and the bounding box of p.
func (Geometry) Build(ctx context.Context, p *scene.MeshPayload) (Built, error) {
	if err := ctx.Err(); err != nil {
		return Built{}, err
	}
	n := p.VertexCount()
	if n == 0 {
		return Built{}, errors.New("mesh has no vertices")
	}
	lo := []float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := []float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i < n; i++ {
		for c := 0; c < 3; c++ {
			v := p.Positions[i*3+c]
			lo[c] = math.Min(lo[c], v)
			hi[c] = math.Max(hi[c], v)
		}
	}
	return Built{Vertices: n, Triangles: p.TriangleCount(), Bounds: append(lo, hi...)}, nil
}

type buildJob struct {
	mesh    *object.Object
	payload *scene.MeshPayload
}

// Build builds the distinct set of meshes on the worker pool. It runs after
// every mesh was published. Tasks that start after cancellation are skipped;
// results observed after cancellation are discarded. Progress is reported
// once per mesh. It returns the number of meshes built.
func Build(ctx context.Context, ic *importer.Context, b Builder, meshes []*object.Object) int {
	seen := make(map[object.ID]bool, len(meshes))
	var jobs []buildJob
	for _, m := range meshes {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		p, ok := ic.MeshPayloads[m.StableID]
		if !ok {
			continue
		}
		jobs = append(jobs, buildJob{mesh: m, payload: p})
	}
	ic.Reporter.Stage(BuildStage, len(jobs))
	if len(jobs) == 0 {
		return 0
	}

	signal := ic.Signal
	results := worker.Map(ctx, ic.Pool, jobs, func(ctx context.Context, j buildJob) (Built, error) {
		if signal.Cancelled() {
			return Built{}, context.Canceled
		}
		return b.Build(ctx, j.payload)
	})

	built := 0
	for i, j := range jobs {
		if ic.Cancelled(ctx) {
			ic.Log.Info(BuildStage, "", "cancelled after %d of %d meshes", i, len(jobs))
			break
		}
		res := results[i]
		if res.Err != nil {
			ic.Log.Warn(BuildStage, j.mesh.Name, "mesh build failed: %v", res.Err)
			continue
		}
		j.mesh.Set("VertexCount", object.Int(int64(res.Value.Vertices)))
		j.mesh.Set("TriangleCount", object.Int(int64(res.Value.Triangles)))
		j.mesh.Set("Bounds", object.Vector(res.Value.Bounds...))
		j.mesh.Set("Built", object.Bool(true))
		built++
		ic.Reporter.Step(BuildStage, j.mesh.Name, i+1, len(jobs))
	}
	return built
}
