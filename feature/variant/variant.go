// Package variant stages and publishes variant sets.
//
// A variant sets asset owns one Variant subobject per variant. Variants
// toggle actors through soft bindings and swap materials through strong
// references.
package variant

import (
	"context"
	"fmt"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/scene"
)

// Stage is the name variant sets are logged and reported under.
const Stage = "variants"

// Import stages every variant sets element of the filtered scene. Actors and
// materials must be staged first.
func Import(ctx context.Context, ic *importer.Context) int {
	staged := 0
	for _, vs := range ic.Filtered.VariantSets {
		if ic.Cancelled(ctx) {
			break
		}
		if err := stage(ic, vs); err != nil {
			ic.Log.Warn(Stage, vs.Name, "%v", err)
			continue
		}
		staged++
	}
	return staged
}

func stage(ic *importer.Context, vs *scene.VariantSets) error {
	seen := make(map[string]bool)
	for _, set := range vs.Sets {
		for _, v := range set.Variants {
			key := set.Name + "." + v.Name
			if seen[key] {
				return fmt.Errorf("duplicate variant %s", key)
			}
			seen[key] = true
		}
	}

	o, err := ic.StageObject(importer.AreaVariants, object.KindVariantSets, vs)
	if err != nil {
		return err
	}
	names := make([]string, len(vs.Sets))
	for i, set := range vs.Sets {
		names[i] = set.Name
	}
	o.Set("Sets", object.Strings(names...))

	for _, set := range vs.Sets {
		for _, v := range set.Variants {
			sub := &object.Object{
				Kind:  object.KindVariant,
				Name:  set.Name + "." + v.Name,
				Outer: o.ID,
				Props: make(object.Props),
			}
			sub.Set("Set", object.String(set.Name))
			sub.Set("Active", object.Bool(v.Active))
			for i, name := range v.Actors {
				actor, ok := ic.Resolve(importer.AreaWorld, "", ic.Actors, name)
				if !ok {
					ic.Log.Warn(Stage, vs.Name, "variant %s binds unknown actor %s", sub.Name, name)
					continue
				}
				sub.Set(fmt.Sprintf("Binding.%d", i), object.SoftValue(actor.Path()))
			}
			for i, name := range v.Materials {
				mat, ok := ic.Resolve(importer.AreaMaterials, object.KindMaterial, ic.Materials, name)
				if !ok {
					ic.Log.Warn(Stage, vs.Name, "variant %s swaps in unknown material %s", sub.Name, name)
					continue
				}
				sub.Set(fmt.Sprintf("Swap.%d", i), object.StrongValue(mat.ID))
			}
			if _, err := ic.Store.Create(sub); err != nil {
				return fmt.Errorf("stage variant %s: %w", sub.Name, err)
			}
		}
	}
	return ic.VariantSets.Set(vs.ID, o)
}

// Finalize publishes the staged variant sets. Materials must be finalized
// first.
func Finalize(ctx context.Context, ic *importer.Context) []*object.Object {
	return ic.FinalizeMap(ctx, Stage, importer.AreaVariants, ic.VariantSets, nil, nil)
}
