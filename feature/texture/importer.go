package texture

import (
	"context"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/scene"
	"scene-publisher/core/worker"

	"go.uber.org/zap"
)

// Stage is the name textures are logged and reported under.
const Stage = "textures"

type prepared struct {
	role Role
	out  *Processed
}

// Import stages every texture of the filtered scene. Roles are inferred from
// the materials first; payloads are fetched and processed on the worker pool
// and the staged objects are built here, in scene order. A texture that
// fails to load is left out with a warning. It returns the number staged.
func Import(ctx context.Context, ic *importer.Context, fetcher Fetcher) int {
	textures := ic.Filtered.Textures
	if len(textures) == 0 || ic.Cancelled(ctx) {
		return 0
	}
	roles := InferRoles(ic.Filtered)
	limit := ic.Options.MaxTextureSize

	results := worker.Map(ctx, ic.Pool, textures, func(ctx context.Context, t *scene.Texture) (prepared, error) {
		data := t.Data
		if len(data) == 0 {
			if t.File == "" {
				return prepared{}, ErrNoSource
			}
			var err error
			if data, err = fetcher.Fetch(ctx, t.File); err != nil {
				return prepared{}, err
			}
		}
		out, err := Process(data, t.Environment, limit)
		if err != nil {
			return prepared{}, err
		}
		return prepared{role: roles[t.Name], out: out}, nil
	})

	staged := 0
	for i, t := range textures {
		if ic.Cancelled(ctx) {
			break
		}
		res := results[i]
		if res.Err != nil {
			ic.Log.Warn(Stage, t.Name, "texture could not be loaded: %v", res.Err)
			continue
		}
		o, err := ic.StageObject(importer.AreaTextures, object.KindTexture, t)
		if err != nil {
			ic.Log.Warn(Stage, t.Name, "%v", err)
			continue
		}
		apply(o, t, res.Value)
		if err := ic.Textures.Set(t.ID, o); err != nil {
			ic.Log.Warn(Stage, t.Name, "%v", err)
			continue
		}
		if res.Value.out.Resized {
			ic.Logger.Debug("texture resized",
				zap.String("element", t.Name),
				zap.Int("width", res.Value.out.Width),
				zap.Int("height", res.Value.out.Height),
			)
		}
		staged++
	}
	return staged
}

func apply(o *object.Object, t *scene.Texture, p prepared) {
	s := SettingsFor(p.role, t.Environment)
	if t.File != "" {
		o.Set("SourcePath", object.String(t.File))
	}
	o.Set("Role", object.String(string(p.role)))
	o.Set("SRGB", object.Bool(s.SRGB))
	o.Set("Compression", object.String(s.Compression))
	o.Set("MipGen", object.String(s.MipGen))
	o.Set("LODGroup", object.String(s.LODGroup))
	o.Set("FlipGreen", object.Bool(s.FlipGreen))
	o.Set("VirtualTexture", object.Bool(t.Virtual))
	o.Set("Format", object.String(p.out.Format))
	o.Set("Width", object.Int(int64(p.out.Width)))
	o.Set("Height", object.Int(int64(p.out.Height)))
	o.Payload = p.out.Data
}
