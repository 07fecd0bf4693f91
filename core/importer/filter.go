package importer

import (
	"context"
	"slices"

	"scene-publisher/core/object"
	"scene-publisher/core/scene"
)

// FilterElementsToImport removes meshes and textures whose content hash
// matches the record of their published asset. Skipped assets keep their
// destination name reserved and get their source file refreshed. Elements
// without a record, or whose lookup fails, are kept.
func (ic *Context) FilterElementsToImport(ctx context.Context) int {
	skipped := 0

	ic.Filtered.Textures = slices.DeleteFunc(ic.Filtered.Textures, func(t *scene.Texture) bool {
		if ic.unchanged(ctx, AreaTextures, object.KindTexture, t) {
			skipped++
			return true
		}
		return false
	})
	ic.Filtered.Meshes = slices.DeleteFunc(ic.Filtered.Meshes, func(m *scene.Mesh) bool {
		if ic.unchanged(ctx, AreaMeshes, object.KindStaticMesh, m) {
			skipped++
			return true
		}
		return false
	})

	if skipped > 0 {
		ic.Log.Info("filter", "", "%d unchanged assets skipped", skipped)
	}
	return skipped
}

func (ic *Context) unchanged(ctx context.Context, a Area, kind object.Kind, elem scene.Identified) bool {
	e := elem.Base()
	rec, ok, err := ic.Index.Lookup(ctx, ic.FinalDir(a), kind, e.ID)
	if err != nil {
		ic.Log.Warn("filter", e.Name, "asset index lookup failed: %v", err)
		return false
	}
	if !ok || rec.Hash == "" || rec.Hash != scene.Hash(elem) {
		return false
	}

	ic.Names(a).AddExistingName(rec.Path.Base())
	if src := ic.Scene.SourceFile; src != "" && rec.SourceFile != src {
		if o, found := ic.Store.FindByPath(rec.Path); found {
			o.Import.SourceFile = src
		}
	}
	return true
}
