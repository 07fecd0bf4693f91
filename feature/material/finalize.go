package material

import (
	"context"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
)

// FinalizeFunctions publishes the staged material functions. Textures must
// be finalized first.
func FinalizeFunctions(ctx context.Context, ic *importer.Context, valid importer.Subset) []*object.Object {
	return ic.FinalizeMap(ctx, FunctionStage, importer.AreaFunctions, ic.Functions, valid, nil)
}

// Finalize publishes the staged materials. Textures and material functions
// must be finalized first.
func Finalize(ctx context.Context, ic *importer.Context, valid importer.Subset) []*object.Object {
	return ic.FinalizeMap(ctx, Stage, importer.AreaMaterials, ic.Materials, valid, nil)
}
