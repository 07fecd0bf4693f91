package texture

import (
	"maps"
	"slices"
	"strings"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"

	"go.uber.org/zap"
)

// VirtualStage is the name virtual texture conversions are logged under.
const VirtualStage = "virtual_textures"

// Conversion is the outcome of ConvertUnsupportedVirtual.
type Conversion struct {
	// Textures lost their virtual texture flag.
	Textures []*object.Object
	// Materials sample a converted texture and were refreshed.
	Materials []*object.Object
}

// ConvertUnsupportedVirtual turns virtual textures sampled by a published
// material that cannot read them back into regular textures. Textures a
// material reaches through its material functions count as sampled by it.
// The flag is cleared in the baseline too, so the next import converts
// again instead of treating the change as a user edit.
func ConvertUnsupportedVirtual(ic *importer.Context, materials []*object.Object) Conversion {
	convert := make(map[object.ID]*object.Object)
	for _, m := range materials {
		if m.Props["VirtualTextureSupport"].Bool {
			continue
		}
		for _, t := range sampled(ic.Store, m) {
			if t.Props["VirtualTexture"].Bool {
				convert[t.ID] = t
			}
		}
	}
	if len(convert) == 0 {
		return Conversion{}
	}

	var out Conversion
	for _, id := range slices.Sorted(maps.Keys(convert)) {
		t := convert[id]
		t.Set("VirtualTexture", object.Bool(false))
		if t.Baseline != nil {
			t.Baseline["VirtualTexture"] = object.Bool(false)
		}
		ic.Log.Warn(VirtualStage, t.Name, "texture %s could not be published as a virtual texture as it is not supported by every material using it", t.Name)
		out.Textures = append(out.Textures, t)
	}

	for _, m := range materials {
		if !slices.ContainsFunc(sampled(ic.Store, m), func(t *object.Object) bool {
			return convert[t.ID] != nil
		}) {
			continue
		}
		out.Materials = append(out.Materials, m)
		ic.Logger.Debug("material refreshed after virtual texture conversion",
			zap.String("stage", VirtualStage),
			zap.String("path", string(m.Path())),
		)
	}
	return out
}

// sampled returns the textures m references directly or through the
// material functions it calls.
func sampled(s object.Store, m *object.Object) []*object.Object {
	var out []*object.Object
	seen := make(map[object.ID]bool)
	var walk func(o *object.Object)
	walk = func(o *object.Object) {
		for _, name := range slices.Sorted(maps.Keys(o.Props)) {
			r, ok := o.RefOf(name)
			if !ok || r.Kind != object.Strong || seen[r.Target] {
				continue
			}
			target, ok := s.Get(r.Target)
			if !ok {
				continue
			}
			switch {
			case strings.HasPrefix(name, "Texture.") && target.Kind == object.KindTexture:
				seen[r.Target] = true
				out = append(out, target)
			case strings.HasPrefix(name, "Function.") && target.Kind == object.KindMaterialFunction:
				seen[r.Target] = true
				walk(target)
			}
		}
	}
	walk(m)
	return out
}
