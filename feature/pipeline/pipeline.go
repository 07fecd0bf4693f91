// Package pipeline sequences the per-kind importers and finalizers of one
// import pass.
//
// Kinds are staged and published in dependency order: a kind referenced by
// strong reference is always published, and its remap entries recorded,
// before any kind referencing it. Soft references are rewritten in sweeps
// once the objects they name have moved.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/remap"
	"scene-publisher/core/scene"
	"scene-publisher/feature/actor"
	"scene-publisher/feature/material"
	"scene-publisher/feature/mesh"
	"scene-publisher/feature/sequence"
	"scene-publisher/feature/texture"
	"scene-publisher/feature/variant"

	"go.uber.org/zap"
)

// SweepStage is the name soft reference sweeps are logged under.
const SweepStage = "sweep"

// ErrNoTranslator is returned for mesh payloads when no translator is set.
var ErrNoTranslator = errors.New("no mesh translator configured")

// Services are the collaborators of a pass beyond the importer services.
type Services struct {
	importer.Services
	// Fetcher reads texture files. Defaults to the directory of the scene's
	// source file.
	Fetcher texture.Fetcher
	// Translator loads mesh payloads. Without one, meshes fail to load.
	Translator mesh.Translator
	// Builder defaults to mesh.Geometry.
	Builder mesh.Builder
	// Publisher uploads texture payloads when set.
	Publisher *texture.Publisher
}

// Result is the outcome of a pass.
type Result struct {
	PassID string `json:"pass_id"`
	// Staged counts staged objects per stage.
	Staged map[string]int `json:"staged,omitempty"`
	// Published lists the paths of published objects per stage.
	Published map[string][]object.Path `json:"published"`
	Actors    *actor.Result            `json:"actors,omitempty"`
	Log       []importer.Entry         `json:"log"`
	Success   bool                     `json:"success"`
	Cancelled bool                     `json:"cancelled"`
	Discarded int                      `json:"discarded"`
}

// Count returns the number of objects published by stage.
func (r *Result) Count(stage string) int {
	return len(r.Published[stage])
}

func (s Services) fetcher(ic *importer.Context) texture.Fetcher {
	if s.Fetcher != nil {
		return s.Fetcher
	}
	root := ""
	if src := ic.Scene.SourceFile; src != "" {
		root = filepath.Dir(src)
	}
	return texture.Router{Files: texture.FileFetcher{Root: root}}
}

func (s Services) translator() mesh.Translator {
	if s.Translator != nil {
		return s.Translator
	}
	return noTranslator{}
}

func (s Services) builder() mesh.Builder {
	if s.Builder != nil {
		return s.Builder
	}
	return mesh.Geometry{}
}

type noTranslator struct{}

func (noTranslator) SupportsParallelLoad(string) bool { return false }

func (noTranslator) LoadMeshPayload(context.Context, *scene.Mesh) (*scene.MeshPayload, error) {
	return nil, ErrNoTranslator
}

// Import stages every kind of the filtered scene, referenced kinds first.
// It returns the number of staged objects per stage.
func Import(ctx context.Context, ic *importer.Context, svc Services) map[string]int {
	staged := make(map[string]int)
	steps := []struct {
		stage string
		run   func() int
	}{
		{texture.Stage, func() int { return texture.Import(ctx, ic, svc.fetcher(ic)) }},
		{material.Stage, func() int {
			functions, materials := material.Import(ctx, ic)
			staged[material.FunctionStage] = functions
			return materials
		}},
		{mesh.Stage, func() int { return mesh.Import(ctx, ic, svc.translator()) }},
		{actor.Stage, func() int { return actor.Import(ctx, ic) }},
		{sequence.Stage, func() int { return sequence.Import(ctx, ic) }},
		{variant.Stage, func() int { return variant.Import(ctx, ic) }},
	}
	for _, s := range steps {
		if ic.Cancelled(ctx) {
			ic.Log.Info(s.stage, "", "import cancelled before staging")
			break
		}
		staged[s.stage] = s.run()
	}
	ic.Logger.Info("scene staged", zap.Any("staged", staged))
	return staged
}

// Finalize publishes the staged objects of ic in dependency order. A
// non-empty valid subset restricts the textures, material functions,
// materials and meshes taking part. Cancellation stops the pass between
// items; nothing already published is rolled back.
func Finalize(ctx context.Context, ic *importer.Context, valid importer.Subset, svc Services) *Result {
	res := &Result{PassID: ic.PassID, Published: make(map[string][]object.Path)}
	record := func(stage string, objs []*object.Object) []*object.Object {
		for _, o := range objs {
			res.Published[stage] = append(res.Published[stage], o.Path())
		}
		return objs
	}
	var dependents []*object.Object

	steps := []struct {
		stage string
		run   func()
	}{
		{texture.Stage, func() {
			record(texture.Stage, texture.Finalize(ctx, ic, valid, svc.Publisher))
		}},
		{material.FunctionStage, func() {
			record(material.FunctionStage, material.FinalizeFunctions(ctx, ic, valid))
		}},
		{material.Stage, func() {
			// components re-register once, after every material changed
			if ic.World != "" {
				actor.SetRegistered(ic.Store, ic.World, false)
				defer actor.SetRegistered(ic.Store, ic.World, true)
			}
			materials := record(material.Stage, material.Finalize(ctx, ic, valid))
			dependents = append(dependents, materials...)
			record(texture.VirtualStage, texture.ConvertUnsupportedVirtual(ic, materials).Textures)
		}},
		{mesh.Stage, func() {
			meshes := record(mesh.Stage, mesh.Finalize(ctx, ic, valid))
			mesh.Build(ctx, ic, svc.builder(), meshes)
		}},
		{sequence.Stage, func() {
			dependents = append(dependents, record(sequence.Stage, sequence.Finalize(ctx, ic))...)
		}},
		{variant.Stage, func() {
			dependents = append(dependents, record(variant.Stage, variant.Finalize(ctx, ic))...)
			sweep(ic, dependents)
		}},
		{actor.Stage, func() {
			res.Actors = actor.Finalize(ctx, ic)
			record(actor.Stage, res.Actors.Published)
			sweep(ic, dependents)
		}},
	}
	for _, s := range steps {
		if ic.Cancelled(ctx) {
			ic.Log.Info(s.stage, "", "finalize cancelled")
			res.Cancelled = true
			break
		}
		s.run()
	}
	if res.Actors != nil && res.Actors.Cancelled {
		res.Cancelled = true
	}

	res.Success = ic.Success()
	res.Log = ic.Log.Entries()
	ic.Logger.Info("finalize complete",
		zap.Int("attempted", ic.Attempted),
		zap.Int("succeeded", ic.Succeeded),
		zap.Bool("cancelled", res.Cancelled),
	)
	return res
}

// sweep rewrites the soft references of objs through the renames recorded
// so far.
func sweep(ic *importer.Context, objs []*object.Object) {
	if n := remap.SweepSoft(ic.Store, objs, ic.Renames); n > 0 {
		ic.Logger.Debug("soft references rewritten", zap.String("stage", SweepStage), zap.Int("count", n))
	}
}

// Run performs a whole pass: init, change filtering, staging, finalize and
// discard of the staging namespace. Setup errors are returned before
// anything is staged.
func Run(ctx context.Context, sc *scene.Scene, destination object.Path, opts importer.Options, svc Services) (*Result, error) {
	ic, err := importer.New(sc, destination, opts, svc.Services)
	if err != nil {
		return nil, err
	}
	ic.FilterElementsToImport(ctx)
	staged := Import(ctx, ic, svc)
	res := Finalize(ctx, ic, nil, svc)
	res.Staged = staged
	res.Discarded = ic.Discard()
	res.Log = ic.Log.Entries()
	return res, nil
}
