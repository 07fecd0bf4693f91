package actor

import (
	"math"
	"slices"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/scene"
)

// KindOf maps an actor element onto the closed actor kind set. An explicit
// type wins; otherwise the kind is derived from the attached settings.
func KindOf(a *scene.Actor) object.Kind {
	if a.Type != "" {
		return object.ActorKind(a.Type)
	}
	switch {
	case a.Light != nil:
		return object.KindPointLight
	case a.Camera != nil:
		return object.KindCamera
	case a.Landscape != nil:
		return object.KindLandscape
	case a.PostProcess != nil:
		return object.KindPostProcessVolume
	case a.Mesh != "":
		return object.KindStaticMeshActor
	}
	return object.KindGenericActor
}

// setProps writes the actor level properties of a onto o.
func setProps(ic *importer.Context, o *object.Object, a *scene.Actor) {
	o.Set("Label", object.String(a.DisplayName()))
	if len(a.Layers) > 0 {
		o.Set("Layers", object.Strings(a.Layers...))
	}
	if len(a.Tags) > 0 {
		o.Set("Tags", object.Strings(a.Tags...))
	}
	o.Set("Hidden", object.Bool(a.Hidden))
	o.Set("SourceScene", object.String(ic.Scene.Name))

	switch k := o.Kind; {
	case k.IsLight() && a.Light != nil:
		l := a.Light
		o.Set("Intensity", object.Float(l.Intensity))
		if len(l.Color) > 0 {
			o.Set("Color", object.Vector(l.Color...))
		}
		if l.Temperature > 0 {
			o.Set("Temperature", object.Float(l.Temperature))
		}
		o.Set("CastShadows", object.Bool(l.CastShadows))
		switch k {
		case object.KindPointLight:
			o.Set("AttenuationRadius", object.Float(l.AttenuationRadius))
		case object.KindSpotLight:
			o.Set("AttenuationRadius", object.Float(l.AttenuationRadius))
			o.Set("InnerCone", object.Float(l.InnerCone))
			o.Set("OuterCone", object.Float(l.OuterCone))
		case object.KindAreaLight:
			o.Set("Width", object.Float(l.Width))
			o.Set("Height", object.Float(l.Height))
		}
	case k == object.KindCamera && a.Camera != nil:
		c := a.Camera
		o.Set("FocalLength", object.Float(c.FocalLength))
		o.Set("Aperture", object.Float(c.Aperture))
		o.Set("SensorWidth", object.Float(c.SensorWidth))
	case k == object.KindLandscape && a.Landscape != nil:
		l := a.Landscape
		o.Set("Heightmap", object.String(l.Heightmap))
		if l.ComponentSize > 0 {
			o.Set("ComponentSize", object.Int(int64(l.ComponentSize)))
		}
		if l.Material != "" {
			if m, ok := ic.Resolve(importer.AreaMaterials, object.KindMaterial, ic.Materials, l.Material); ok {
				o.Set("Material", object.StrongValue(m.ID))
			} else {
				ic.Log.Warn(Stage, a.Name, "landscape material %s is not available", l.Material)
			}
		}
		o.Set("CollisionDirty", object.Bool(true))
	case k == object.KindPostProcessVolume && a.PostProcess != nil:
		p := a.PostProcess
		o.Set("Unbound", object.Bool(p.Unbound))
		o.Set("Exposure", object.Float(p.Exposure))
		o.Set("Priority", object.Float(p.Priority))
	}
}

// postFinalize runs the kind specific checks and refreshes after an actor
// was finalized.
func postFinalize(ic *importer.Context, o *object.Object) {
	if root, ok := rootComponent(ic.Store, o); ok {
		if rot := root.Props["Rotation"].Vec; len(rot) >= 2 && math.Abs(math.Abs(rot[1])-90) < 1e-4 {
			ic.Log.Warn(Stage, o.Name, "rotation pitch of %.1f degrees is a gimbal singularity", rot[1])
		}
	}

	switch o.Kind {
	case object.KindLandscape:
		// collision is derived from the heightmap that was just copied
		o.Set("CollisionDirty", object.Bool(false))
	case object.KindPointLight, object.KindSpotLight, object.KindDirectionalLight, object.KindAreaLight:
		if o.Props["Intensity"].Float < 0 {
			ic.Log.Warn(Stage, o.Name, "light intensity is negative")
		}
		if o.Kind == object.KindSpotLight && o.Props["InnerCone"].Float > o.Props["OuterCone"].Float {
			ic.Log.Warn(Stage, o.Name, "spot light inner cone is wider than its outer cone")
		}
	case object.KindCamera:
		if r, ok := o.RefOf("LookAt"); ok && r.Target == o.ID {
			ic.Log.Warn(Stage, o.Name, "camera looks at itself")
		}
	case object.KindStaticMeshActor:
		if !slices.ContainsFunc(object.Subobjects(ic.Store, o), func(c *object.Object) bool {
			_, ok := c.RefOf("Mesh")
			return ok
		}) {
			ic.Log.Warn(Stage, o.Name, "static mesh actor has no mesh")
		}
	case object.KindPostProcessVolume, object.KindGenericActor:
	}
}
