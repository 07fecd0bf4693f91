package importer

import (
	"context"

	"scene-publisher/core/object"
)

// Record is the change-detection data of a published asset.
type Record struct {
	Path       object.Path
	SourceFile string
	Hash       string
}

// AssetIndex looks up the publish record of an asset by stable ID.
type AssetIndex interface {
	Lookup(ctx context.Context, dir object.Path, kind object.Kind, stableID string) (Record, bool, error)
}

// StoreIndex answers lookups from the live object store.
type StoreIndex struct {
	Store object.Store
}

// Lookup returns the import data of the asset of kind below dir tagged with
// stableID.
func (s StoreIndex) Lookup(_ context.Context, dir object.Path, kind object.Kind, stableID string) (Record, bool, error) {
	o, ok := s.Store.FindByStableID(dir, kind, stableID)
	if !ok {
		return Record{}, false, nil
	}
	return Record{Path: o.Path(), SourceFile: o.Import.SourceFile, Hash: o.Import.Hash}, true, nil
}
