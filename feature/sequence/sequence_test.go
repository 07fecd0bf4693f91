package sequence

import (
	"context"
	"testing"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/object/memstore"
	"scene-publisher/core/remap"
	"scene-publisher/core/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T, sc *scene.Scene) (*importer.Context, *memstore.Store) {
	t.Helper()
	s := memstore.New()
	ic, err := importer.New(sc, "/Game/Room", importer.DefaultOptions(), importer.Services{
		Store: s,
		Index: importer.StoreIndex{Store: s},
	})
	require.NoError(t, err)
	for _, a := range ic.Filtered.Actors {
		o, err := ic.StageObject(importer.AreaWorld, object.KindGenericActor, a)
		require.NoError(t, err)
		require.NoError(t, ic.Actors.Set(a.ID, o))
	}
	return ic, s
}

// TestImport_OrdersSubSequences tests that sub-sequences are staged first.
func TestImport_OrdersSubSequences(t *testing.T) {
	sc := &scene.Scene{
		Name:   "Room",
		Actors: []*scene.Actor{{Element: scene.Element{ID: "a1", Name: "Door"}}},
		Sequences: []*scene.Sequence{
			{Element: scene.Element{ID: "q1", Name: "Master"}, SubSequences: []string{"Shot"}, Bindings: []string{"Door", "Ghost"}},
			{Element: scene.Element{ID: "q2", Name: "Shot"}, FrameRate: 24, Duration: 2},
		},
	}
	ic, _ := newContext(t, sc)

	assert.Equal(t, 2, Import(context.Background(), ic))
	assert.Equal(t, []string{"q2", "q1"}, ic.Sequences.Keys())

	master, _ := ic.Sequences.Get("q1")
	shot, _ := ic.Sequences.Get("q2")
	door, _ := ic.Actors.Get("a1")
	assert.Equal(t, object.StrongValue(shot.ID), master.Props["SubSequence.0"])
	assert.Equal(t, object.SoftValue(door.Path()), master.Props["Binding.0"])
	assert.NotContains(t, master.Props, "Binding.1")
	assert.Equal(t, 30.0, master.Props["FrameRate"].Float)
	assert.Equal(t, 24.0, shot.Props["FrameRate"].Float)
	assert.Len(t, ic.Log.ForElement("Master"), 1)
}

// TestImport_Cycle tests that a sub-sequence cycle is reported and broken.
func TestImport_Cycle(t *testing.T) {
	sc := &scene.Scene{
		Name: "Room",
		Sequences: []*scene.Sequence{
			{Element: scene.Element{ID: "q1", Name: "A"}, SubSequences: []string{"B"}},
			{Element: scene.Element{ID: "q2", Name: "B"}, SubSequences: []string{"A"}},
		},
	}
	ic, _ := newContext(t, sc)

	assert.Equal(t, 2, Import(context.Background(), ic))
	assert.NotEmpty(t, ic.Log.Filter(importer.SeverityWarning))
}

// TestFinalize_SweepsBindings tests publishing and the soft binding sweep.
func TestFinalize_SweepsBindings(t *testing.T) {
	sc := &scene.Scene{
		Name:   "Room",
		Actors: []*scene.Actor{{Element: scene.Element{ID: "a1", Name: "Door"}}},
		Sequences: []*scene.Sequence{
			{Element: scene.Element{ID: "q1", Name: "Open"}, Bindings: []string{"Door"}},
		},
	}
	ic, s := newContext(t, sc)
	require.Equal(t, 1, Import(context.Background(), ic))

	published := Finalize(context.Background(), ic)
	require.Len(t, published, 1)
	assert.Equal(t, object.Path("/Game/Room/Sequences/Open"), published[0].Path())

	door, _ := ic.Actors.Get("a1")
	ic.Renames.Add(door.Path(), "/Game/Room/Room_World/Door")
	n := remap.SweepSoft(s, published, ic.Renames)
	assert.Equal(t, 1, n)
	assert.Equal(t, object.SoftValue("/Game/Room/Room_World/Door"), published[0].Props["Binding.0"])
	assert.Equal(t, object.SoftValue("/Game/Room/Room_World/Door"), published[0].Baseline["Binding.0"])
}
