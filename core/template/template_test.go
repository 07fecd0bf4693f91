package template

import (
	"testing"

	"scene-publisher/core/object"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texture(props object.Props) *object.Object {
	return &object.Object{Kind: object.KindTexture, Name: "T", Props: props}
}

// TestCapture_OnlyCovered tests that uncovered properties are not captured.
func TestCapture_OnlyCovered(t *testing.T) {
	o := texture(object.Props{
		"SRGB":       object.Bool(true),
		"PayloadURI": object.String("s3://bucket/t.png"),
	})

	tpl := Capture(o)

	assert.Equal(t, object.KindTexture, tpl.Kind)
	assert.Equal(t, object.Props{"SRGB": object.Bool(true)}, tpl.Values)
}

// TestCapture_Independent tests that a captured template does not alias the object.
func TestCapture_Independent(t *testing.T) {
	o := &object.Object{Kind: object.KindMaterial, Props: object.Props{"BaseColor": object.Vector(1, 1, 1)}}
	tpl := Capture(o)
	o.Props["BaseColor"].Vec[0] = 0

	v, ok := tpl.Get("BaseColor")
	require.True(t, ok)
	assert.Equal(t, 1.0, v.Vec[0])
}

// TestDiff tests the user edit detection against the stored baseline.
func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		current  object.Props
		baseline object.Props
		fresh    object.Props
		want     object.Props
	}{
		{
			name:    "no baseline takes fresh",
			current: object.Props{"SRGB": object.Bool(false)},
			fresh:   object.Props{"SRGB": object.Bool(true)},
			want:    object.Props{"SRGB": object.Bool(true)},
		},
		{
			name:     "untouched value takes fresh",
			current:  object.Props{"Compression": object.String("Default")},
			baseline: object.Props{"Compression": object.String("Default")},
			fresh:    object.Props{"Compression": object.String("Normalmap")},
			want:     object.Props{"Compression": object.String("Normalmap")},
		},
		{
			name:     "edited value is kept",
			current:  object.Props{"Compression": object.String("HDR"), "SRGB": object.Bool(true)},
			baseline: object.Props{"Compression": object.String("Default"), "SRGB": object.Bool(true)},
			fresh:    object.Props{"Compression": object.String("Default"), "SRGB": object.Bool(false)},
			want:     object.Props{"Compression": object.String("HDR"), "SRGB": object.Bool(false)},
		},
		{
			name:     "user cleared value stays cleared",
			current:  object.Props{},
			baseline: object.Props{"LODGroup": object.String("World")},
			fresh:    object.Props{"LODGroup": object.String("World")},
			want:     object.Props{},
		},
		{
			name:     "user added value is kept",
			current:  object.Props{"MipGen": object.String("Sharpen")},
			baseline: object.Props{},
			fresh:    object.Props{},
			want:     object.Props{"MipGen": object.String("Sharpen")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := texture(tt.current)
			existing.Baseline = tt.baseline

			got := Diff(existing, &Template{Kind: object.KindTexture, Values: tt.fresh})

			assert.Equal(t, tt.want, got.Values)
		})
	}
}

// TestDiff_Idempotent tests that an unchanged, unedited object diffs to the fresh template.
func TestDiff_Idempotent(t *testing.T) {
	staged := texture(object.Props{"SRGB": object.Bool(true), "Role": object.String("Diffuse")})
	fresh := Capture(staged)

	final := texture(fresh.Values.Clone())
	Store(fresh, final)

	assert.True(t, Diff(final, Capture(staged)).Equal(fresh))
}

// TestApply tests forced and unforced application.
func TestApply(t *testing.T) {
	tpl := &Template{Kind: object.KindTexture, Values: object.Props{
		"SRGB":        object.Bool(false),
		"Compression": object.String("Normalmap"),
	}}

	t.Run("force overwrites and clears", func(t *testing.T) {
		o := texture(object.Props{"SRGB": object.Bool(true), "MipGen": object.String("Blur")})
		o.Baseline = object.Props{"SRGB": object.Bool(false)}

		Apply(tpl, o, true)

		assert.Equal(t, object.Props{
			"SRGB":        object.Bool(false),
			"Compression": object.String("Normalmap"),
		}, o.Props)
	})

	t.Run("unforced keeps edits", func(t *testing.T) {
		o := texture(object.Props{"SRGB": object.Bool(true), "Compression": object.String("Default")})
		o.Baseline = object.Props{"SRGB": object.Bool(false), "Compression": object.String("Default")}

		Apply(tpl, o, false)

		assert.True(t, o.Props["SRGB"].Bool)
		assert.Equal(t, "Normalmap", o.Props["Compression"].Str)
	})

	t.Run("uncovered properties survive", func(t *testing.T) {
		o := texture(object.Props{"PayloadURI": object.String("s3://b/k")})

		Apply(tpl, o, true)

		assert.Equal(t, "s3://b/k", o.Props["PayloadURI"].Str)
	})
}

// TestReimport_OverridePreservation walks the full reimport sequence.
func TestReimport_OverridePreservation(t *testing.T) {
	// first import
	final := texture(object.Props{"SRGB": object.Bool(true), "Compression": object.String("Default")})
	Store(Capture(final), final)

	// user edits P
	final.Set("SRGB", object.Bool(false))

	// source changes Q
	staged := texture(object.Props{"SRGB": object.Bool(true), "Compression": object.String("HDR")})
	fresh := Capture(staged)
	diff := Diff(final, fresh)

	// publish overwrites the final object with the staged content
	final.Props = staged.Props.Clone()
	Apply(diff, final, true)
	Store(fresh, final)

	assert.False(t, final.Props["SRGB"].Bool)
	assert.Equal(t, "HDR", final.Props["Compression"].Str)
	assert.Equal(t, []string{"SRGB"}, Changes(Capture(final), fresh))
}

func TestEqual(t *testing.T) {
	a := &Template{Kind: object.KindTexture, Values: object.Props{"SRGB": object.Bool(true)}}
	b := &Template{Kind: object.KindTexture, Values: object.Props{"SRGB": object.Bool(true)}}
	c := &Template{Kind: object.KindMaterial, Values: object.Props{"SRGB": object.Bool(true)}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
	assert.Nil(t, Baseline(texture(nil)))
}

// TestEditableScope tests that actor templates leave owning, transient and
// non-editable properties alone.
func TestEditableScope(t *testing.T) {
	landscape := &object.Object{Kind: object.KindLandscape, Props: object.Props{
		"Label":          object.String("Terrain"),
		"Heightmap":      object.String("h.png"),
		"Material":       object.StrongValue("mat"),
		"CollisionDirty": object.Bool(true),
		"RootComponent":  object.StrongValue("root"),
	}}

	tpl := CaptureScope(landscape, Editable)
	assert.Equal(t, object.Props{"Label": object.String("Terrain")}, tpl.Values)

	target := &object.Object{Kind: object.KindLandscape, Props: object.Props{
		"Heightmap": object.String("old.png"),
	}}
	Apply(tpl, target, true)
	assert.Equal(t, "old.png", target.Str("Heightmap"))
	assert.Equal(t, "Terrain", target.Str("Label"))

	target.Baseline = object.Props{"Label": object.String("Terrain")}
	target.Props["Label"] = object.String("Hills")
	diff := Diff(target, tpl)
	assert.Equal(t, "Hills", diff.Values["Label"].Str)
	assert.NotContains(t, diff.Values, "Heightmap")
}
