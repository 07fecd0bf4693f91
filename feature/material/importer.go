package material

import (
	"context"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/scene"
)

// Stage names used in logs and progress.
const (
	FunctionStage = "material_functions"
	Stage         = "materials"
)

// Import stages the material functions and then the materials of the
// filtered scene. Texture and function slots become strong references to
// the staged objects, or to the published assets of elements that were
// skipped as unchanged. A slot naming an unknown element is dropped with a
// warning on the referrer.
func Import(ctx context.Context, ic *importer.Context) (functions, materials int) {
	for _, f := range ic.Filtered.MaterialFunctions {
		if ic.Cancelled(ctx) {
			return
		}
		o, err := ic.StageObject(importer.AreaFunctions, object.KindMaterialFunction, f)
		if err != nil {
			ic.Log.Warn(FunctionStage, f.Name, "%v", err)
			continue
		}
		if f.Description != "" {
			o.Set("Description", object.String(f.Description))
		}
		o.Set("Expressions", object.Strings(expressionNames(f.Expressions)...))
		for _, e := range f.Expressions {
			if e.Type == scene.ExpressionTexture {
				linkTexture(ic, FunctionStage, o, "Texture."+e.Name, e.Texture)
			}
		}
		if err := ic.Functions.Set(f.ID, o); err != nil {
			ic.Log.Warn(FunctionStage, f.Name, "%v", err)
			continue
		}
		functions++
	}

	for _, m := range ic.Filtered.Materials {
		if ic.Cancelled(ctx) {
			return
		}
		if m.Shader != nil && m.Graph != nil {
			ic.Log.Warn(Stage, m.Name, "material has both a shader and a graph")
			continue
		}
		o, err := ic.StageObject(importer.AreaMaterials, object.KindMaterial, m)
		if err != nil {
			ic.Log.Warn(Stage, m.Name, "%v", err)
			continue
		}
		build(ic, o, m)
		if err := ic.Materials.Set(m.ID, o); err != nil {
			ic.Log.Warn(Stage, m.Name, "%v", err)
			continue
		}
		materials++
	}
	return
}

func build(ic *importer.Context, o *object.Object, m *scene.Material) {
	shading := m.ShadingModel
	if shading == "" {
		shading = "DefaultLit"
	}
	o.Set("ShadingModel", object.String(shading))
	o.Set("TwoSided", object.Bool(m.TwoSided))
	o.Set("Opacity", object.Float(opacity(m.Opacity)))
	// legacy shaders instance fixed parents that sample regular textures only
	o.Set("VirtualTextureSupport", object.Bool(m.Graph != nil && m.VirtualTextures))
	if len(m.BaseColor) > 0 {
		o.Set("BaseColor", object.Vector(m.BaseColor...))
	}

	switch {
	case m.Shader != nil:
		s := m.Shader
		o.Set("Metallic", object.Float(s.Metallic))
		o.Set("Roughness", object.Float(s.Roughness))
		for _, slot := range [][2]string{
			{"Diffuse", s.Diffuse},
			{"Reflectance", s.Reflectance},
			{"Displace", s.Displace},
			{"Normal", s.Normal},
		} {
			if slot[1] != "" {
				linkTexture(ic, Stage, o, "Texture."+slot[0], slot[1])
			}
		}
	case m.Graph != nil:
		for _, e := range m.Graph.Expressions {
			switch e.Type {
			case scene.ExpressionTexture:
				linkTexture(ic, Stage, o, "Texture."+e.Name, e.Texture)
			case scene.ExpressionFunction:
				f, ok := ic.Resolve(importer.AreaFunctions, object.KindMaterialFunction, ic.Functions, e.Function)
				if !ok {
					ic.Log.Warn(Stage, m.Name, "unknown material function %s", e.Function)
					continue
				}
				o.Set("Function."+e.Name, object.StrongValue(f.ID))
			case scene.ExpressionConstant:
				constant(o, m.Graph, e)
			}
		}
	}
}

// constant writes a scalar expression wired to the metallic or roughness
// input straight onto the material.
func constant(o *object.Object, g *scene.Graph, e scene.Expression) {
	if len(e.Value) == 0 {
		return
	}
	switch e.Name {
	case g.Metallic:
		o.Set("Metallic", object.Float(e.Value[0]))
	case g.Roughness:
		o.Set("Roughness", object.Float(e.Value[0]))
	}
}

func linkTexture(ic *importer.Context, stage string, o *object.Object, prop, name string) {
	t, ok := ic.Resolve(importer.AreaTextures, object.KindTexture, ic.Textures, name)
	if !ok {
		ic.Log.Warn(stage, o.Name, "texture %s is not available", name)
		return
	}
	o.Set(prop, object.StrongValue(t.ID))
}

func opacity(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

func expressionNames(exprs []scene.Expression) []string {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		out[i] = e.Name + ":" + e.Type
	}
	return out
}
