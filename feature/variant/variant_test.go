package variant

import (
	"context"
	"testing"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/object/memstore"
	"scene-publisher/core/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScene() *scene.Scene {
	return &scene.Scene{
		Name:      "Room",
		Actors:    []*scene.Actor{{Element: scene.Element{ID: "a1", Name: "Sofa"}}},
		Materials: []*scene.Material{{Element: scene.Element{ID: "m1", Name: "M_Leather"}}},
		VariantSets: []*scene.VariantSets{
			{Element: scene.Element{ID: "v1", Name: "Config"}, Sets: []scene.VariantSet{
				{Name: "Fabric", Variants: []scene.Variant{
					{Name: "Leather", Active: true, Actors: []string{"Sofa"}, Materials: []string{"M_Leather", "M_Velvet"}},
					{Name: "Hidden", Actors: []string{"Ghost"}},
				}},
			}},
			{Element: scene.Element{ID: "v2", Name: "Broken"}, Sets: []scene.VariantSet{
				{Name: "S", Variants: []scene.Variant{{Name: "X"}, {Name: "X"}}},
			}},
		},
	}
}

func newContext(t *testing.T) (*importer.Context, *memstore.Store) {
	t.Helper()
	s := memstore.New()
	ic, err := importer.New(testScene(), "/Game/Room", importer.DefaultOptions(), importer.Services{
		Store: s,
		Index: importer.StoreIndex{Store: s},
	})
	require.NoError(t, err)
	actor, err := ic.StageObject(importer.AreaWorld, object.KindGenericActor, ic.Filtered.Actors[0])
	require.NoError(t, err)
	require.NoError(t, ic.Actors.Set("a1", actor))
	mat, err := ic.StageObject(importer.AreaMaterials, object.KindMaterial, ic.Filtered.Materials[0])
	require.NoError(t, err)
	require.NoError(t, ic.Materials.Set("m1", mat))
	return ic, s
}

// TestImport tests variant subobjects and their references.
func TestImport(t *testing.T) {
	ic, s := newContext(t)

	assert.Equal(t, 1, Import(context.Background(), ic))
	o, ok := ic.VariantSets.Get("v1")
	require.True(t, ok)
	assert.Equal(t, []string{"Fabric"}, o.Props["Sets"].List)

	subs := object.Subobjects(s, o)
	require.Len(t, subs, 2)
	leather := subs[0]
	assert.Equal(t, "Fabric.Leather", leather.Name)
	assert.True(t, leather.Props["Active"].Bool)

	sofa, _ := ic.Actors.Get("a1")
	mat, _ := ic.Materials.Get("m1")
	assert.Equal(t, object.SoftValue(sofa.Path()), leather.Props["Binding.0"])
	assert.Equal(t, object.StrongValue(mat.ID), leather.Props["Swap.0"])
	assert.NotContains(t, leather.Props, "Swap.1")

	_, ok = ic.VariantSets.Get("v2")
	assert.False(t, ok)
	assert.Len(t, ic.Log.ForElement("Broken"), 1)
	assert.Len(t, ic.Log.ForElement("Config"), 2)
}

// TestFinalize_RewritesSwaps tests that published variants reference the
// published material.
func TestFinalize_RewritesSwaps(t *testing.T) {
	ic, s := newContext(t)
	Import(context.Background(), ic)

	mat, _ := ic.Materials.Get("m1")
	finalMat, err := ic.FinalizeAsset("materials", importer.AreaMaterials, mat)
	require.NoError(t, err)

	published := Finalize(context.Background(), ic)
	require.Len(t, published, 1)
	for _, sub := range object.Subobjects(s, published[0]) {
		if v, ok := sub.Props["Swap.0"]; ok {
			assert.Equal(t, finalMat.ID, v.Ref.Target)
		}
		assert.Equal(t, published[0].ID, sub.Outer)
	}
}
