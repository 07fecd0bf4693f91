// Package scene is the parsed description of externally authored content that
// an import pass consumes. Scenes are produced by translators and are never
// mutated by the importer; filtering works on a clone.
package scene

import (
	"github.com/jinzhu/copier"
)

// Element is the identity shared by every scene element.
type Element struct {
	// ID is the stable element ID. It is derived from content and survives
	// re-imports of the same source.
	ID string `yaml:"id" json:"id"`
	// Name is the asset name and the key other elements use to reference it.
	Name string `yaml:"name" json:"name"`
	// Label is the display name, used for actors.
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Base returns the element identity.
func (e *Element) Base() *Element { return e }

// DisplayName returns the label, or the name when no label is set.
func (e *Element) DisplayName() string {
	if e.Label != "" {
		return e.Label
	}
	return e.Name
}

// Identified is implemented by every element type.
type Identified interface {
	Base() *Element
}

// Texture is an image referenced by materials.
type Texture struct {
	Element `yaml:",inline"`
	// File is a local path or an s3://bucket/key URI.
	File string `yaml:"file" json:"file"`
	// Environment marks HDR environment maps, which keep their container.
	Environment bool `yaml:"environment,omitempty" json:"environment,omitempty"`
	// Virtual asks for virtual texture streaming.
	Virtual bool `yaml:"virtual,omitempty" json:"virtual,omitempty"`
	// Data is an inline payload that takes precedence over File.
	Data []byte `yaml:"data,omitempty" json:"data,omitempty"`
}

// Expression is one node of a material expression graph.
type Expression struct {
	Name string `yaml:"name" json:"name"`
	// Type is one of "texture", "constant" or "function".
	Type     string    `yaml:"type" json:"type"`
	Texture  string    `yaml:"texture,omitempty" json:"texture,omitempty"`
	Function string    `yaml:"function,omitempty" json:"function,omitempty"`
	Value    []float64 `yaml:"value,omitempty" json:"value,omitempty"`
}

// Expression types.
const (
	ExpressionTexture  = "texture"
	ExpressionConstant = "constant"
	ExpressionFunction = "function"
)

// MaterialFunction is a reusable expression graph.
type MaterialFunction struct {
	Element     `yaml:",inline"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Expressions []Expression `yaml:"expressions,omitempty" json:"expressions,omitempty"`
}

// Shader is a legacy slot based material description. Slots hold texture
// names.
type Shader struct {
	Diffuse      string  `yaml:"diffuse,omitempty" json:"diffuse,omitempty"`
	Reflectance  string  `yaml:"reflectance,omitempty" json:"reflectance,omitempty"`
	Displace     string  `yaml:"displace,omitempty" json:"displace,omitempty"`
	Normal       string  `yaml:"normal,omitempty" json:"normal,omitempty"`
	NormalInvert bool    `yaml:"normal_invert,omitempty" json:"normal_invert,omitempty"`
	Metallic     float64 `yaml:"metallic,omitempty" json:"metallic,omitempty"`
	Roughness    float64 `yaml:"roughness,omitempty" json:"roughness,omitempty"`
}

// Graph is a physically based material whose inputs name expressions.
type Graph struct {
	Expressions []Expression `yaml:"expressions,omitempty" json:"expressions,omitempty"`
	BaseColor   string       `yaml:"base_color,omitempty" json:"base_color,omitempty"`
	Specular    string       `yaml:"specular,omitempty" json:"specular,omitempty"`
	Normal      string       `yaml:"normal,omitempty" json:"normal,omitempty"`
	Metallic    string       `yaml:"metallic,omitempty" json:"metallic,omitempty"`
	Roughness   string       `yaml:"roughness,omitempty" json:"roughness,omitempty"`
}

// Expression returns the named expression of the graph.
func (g *Graph) Expression(name string) (Expression, bool) {
	for _, e := range g.Expressions {
		if e.Name == name {
			return e, true
		}
	}
	return Expression{}, false
}

// Material is either a legacy shader or an expression graph.
type Material struct {
	Element      `yaml:",inline"`
	ShadingModel string    `yaml:"shading_model,omitempty" json:"shading_model,omitempty"`
	TwoSided     bool      `yaml:"two_sided,omitempty" json:"two_sided,omitempty"`
	Opacity      float64   `yaml:"opacity,omitempty" json:"opacity,omitempty"`
	BaseColor    []float64 `yaml:"base_color,omitempty" json:"base_color,omitempty"`
	Shader       *Shader   `yaml:"shader,omitempty" json:"shader,omitempty"`
	Graph        *Graph    `yaml:"graph,omitempty" json:"graph,omitempty"`

	// VirtualTextures marks graphs able to sample virtual textures.
	VirtualTextures bool `yaml:"virtual_textures,omitempty" json:"virtual_textures,omitempty"`
}

// MeshSlot binds a material to a mesh section.
type MeshSlot struct {
	Slot     string `yaml:"slot" json:"slot"`
	Material string `yaml:"material" json:"material"`
}

// Mesh is a static mesh whose geometry is loaded through a translator.
type Mesh struct {
	Element             `yaml:",inline"`
	File                string     `yaml:"file,omitempty" json:"file,omitempty"`
	FileHash            string     `yaml:"file_hash,omitempty" json:"file_hash,omitempty"`
	LightmapResolution  int        `yaml:"lightmap_resolution,omitempty" json:"lightmap_resolution,omitempty"`
	GenerateLightmapUVs bool       `yaml:"generate_lightmap_uvs,omitempty" json:"generate_lightmap_uvs,omitempty"`
	Materials           []MeshSlot `yaml:"materials,omitempty" json:"materials,omitempty"`
}

// Transform is a location, an euler rotation in degrees and a scale.
type Transform struct {
	Location []float64 `yaml:"location,omitempty" json:"location,omitempty"`
	Rotation []float64 `yaml:"rotation,omitempty" json:"rotation,omitempty"`
	Scale    []float64 `yaml:"scale,omitempty" json:"scale,omitempty"`
}

// Flatten returns the transform as nine floats, filling defaults.
func (t Transform) Flatten() []float64 {
	out := []float64{0, 0, 0, 0, 0, 0, 1, 1, 1}
	copy(out[0:3], t.Location)
	copy(out[3:6], t.Rotation)
	copy(out[6:9], t.Scale)
	return out
}

// Light holds light actor settings.
type Light struct {
	Intensity         float64   `yaml:"intensity,omitempty" json:"intensity,omitempty"`
	Color             []float64 `yaml:"color,omitempty" json:"color,omitempty"`
	Temperature       float64   `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	CastShadows       bool      `yaml:"cast_shadows,omitempty" json:"cast_shadows,omitempty"`
	AttenuationRadius float64   `yaml:"attenuation_radius,omitempty" json:"attenuation_radius,omitempty"`
	InnerCone         float64   `yaml:"inner_cone,omitempty" json:"inner_cone,omitempty"`
	OuterCone         float64   `yaml:"outer_cone,omitempty" json:"outer_cone,omitempty"`
	Width             float64   `yaml:"width,omitempty" json:"width,omitempty"`
	Height            float64   `yaml:"height,omitempty" json:"height,omitempty"`
}

// Camera holds camera actor settings.
type Camera struct {
	FocalLength float64 `yaml:"focal_length,omitempty" json:"focal_length,omitempty"`
	Aperture    float64 `yaml:"aperture,omitempty" json:"aperture,omitempty"`
	SensorWidth float64 `yaml:"sensor_width,omitempty" json:"sensor_width,omitempty"`
	// LookAt names the actor the camera tracks.
	LookAt string `yaml:"look_at,omitempty" json:"look_at,omitempty"`
}

// Landscape holds landscape actor settings.
type Landscape struct {
	Heightmap     string `yaml:"heightmap" json:"heightmap"`
	ComponentSize int    `yaml:"component_size,omitempty" json:"component_size,omitempty"`
	Material      string `yaml:"material,omitempty" json:"material,omitempty"`
}

// PostProcess holds post process volume settings.
type PostProcess struct {
	Unbound  bool    `yaml:"unbound,omitempty" json:"unbound,omitempty"`
	Exposure float64 `yaml:"exposure,omitempty" json:"exposure,omitempty"`
	Priority float64 `yaml:"priority,omitempty" json:"priority,omitempty"`
}

// Actor is a placed entity of the scene hierarchy.
type Actor struct {
	Element `yaml:",inline"`
	// Type names the actor kind, e.g. "PointLight". Unknown types import as
	// generic actors.
	Type      string    `yaml:"type,omitempty" json:"type,omitempty"`
	Layers    []string  `yaml:"layers,omitempty" json:"layers,omitempty"`
	Tags      []string  `yaml:"tags,omitempty" json:"tags,omitempty"`
	Hidden    bool      `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Transform Transform `yaml:"transform,omitempty" json:"transform,omitempty"`

	// Mesh names the static mesh rendered by the actor.
	Mesh string `yaml:"mesh,omitempty" json:"mesh,omitempty"`
	// Materials overrides mesh slots with materials.
	Materials map[string]string `yaml:"materials,omitempty" json:"materials,omitempty"`
	// Instances turns the mesh into an instanced mesh.
	Instances []Transform `yaml:"instances,omitempty" json:"instances,omitempty"`

	Light       *Light       `yaml:"light,omitempty" json:"light,omitempty"`
	Camera      *Camera      `yaml:"camera,omitempty" json:"camera,omitempty"`
	Landscape   *Landscape   `yaml:"landscape,omitempty" json:"landscape,omitempty"`
	PostProcess *PostProcess `yaml:"post_process,omitempty" json:"post_process,omitempty"`

	// Component folds this child into its parent's component tree instead of
	// spawning a separate actor.
	Component bool     `yaml:"component,omitempty" json:"component,omitempty"`
	Children  []*Actor `yaml:"children,omitempty" json:"children,omitempty"`
}

// Sequence is an animation sequence. Bindings name animated actors.
type Sequence struct {
	Element      `yaml:",inline"`
	FrameRate    float64  `yaml:"frame_rate,omitempty" json:"frame_rate,omitempty"`
	Duration     float64  `yaml:"duration,omitempty" json:"duration,omitempty"`
	Bindings     []string `yaml:"bindings,omitempty" json:"bindings,omitempty"`
	SubSequences []string `yaml:"sub_sequences,omitempty" json:"sub_sequences,omitempty"`
}

// Variant toggles actors and swaps materials.
type Variant struct {
	Name      string   `yaml:"name" json:"name"`
	Active    bool     `yaml:"active,omitempty" json:"active,omitempty"`
	Actors    []string `yaml:"actors,omitempty" json:"actors,omitempty"`
	Materials []string `yaml:"materials,omitempty" json:"materials,omitempty"`
}

// VariantSet groups mutually exclusive variants.
type VariantSet struct {
	Name     string    `yaml:"name" json:"name"`
	Variants []Variant `yaml:"variants,omitempty" json:"variants,omitempty"`
}

// VariantSets is the root of a variant hierarchy.
type VariantSets struct {
	Element `yaml:",inline"`
	Sets    []VariantSet `yaml:"sets,omitempty" json:"sets,omitempty"`
}

// Metadata is free-form data attached to another element by name.
type Metadata struct {
	Target     string            `yaml:"target" json:"target"`
	Properties map[string]string `yaml:"properties" json:"properties"`
}

// Scene is everything one translator produced from one source file.
type Scene struct {
	Name              string              `yaml:"name" json:"name"`
	SourceFile        string              `yaml:"source_file,omitempty" json:"source_file,omitempty"`
	Textures          []*Texture          `yaml:"textures,omitempty" json:"textures,omitempty"`
	MaterialFunctions []*MaterialFunction `yaml:"material_functions,omitempty" json:"material_functions,omitempty"`
	Materials         []*Material         `yaml:"materials,omitempty" json:"materials,omitempty"`
	Meshes            []*Mesh             `yaml:"meshes,omitempty" json:"meshes,omitempty"`
	Actors            []*Actor            `yaml:"actors,omitempty" json:"actors,omitempty"`
	Sequences         []*Sequence         `yaml:"sequences,omitempty" json:"sequences,omitempty"`
	VariantSets       []*VariantSets      `yaml:"variant_sets,omitempty" json:"variant_sets,omitempty"`
	Metadata          []*Metadata         `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Clone returns a deep copy of s.
func (s *Scene) Clone() (*Scene, error) {
	c := &Scene{}
	if err := copier.CopyWithOption(c, s, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return c, nil
}

// MetadataFor returns the properties attached to the element named target.
func (s *Scene) MetadataFor(target string) map[string]string {
	for _, m := range s.Metadata {
		if m.Target == target {
			return m.Properties
		}
	}
	return nil
}

// WalkActors visits every actor depth first, parents before children.
// Returning false from fn skips the actor's children.
func (s *Scene) WalkActors(fn func(a, parent *Actor) bool) {
	var walk func(a, parent *Actor)
	walk = func(a, parent *Actor) {
		if !fn(a, parent) {
			return
		}
		for _, c := range a.Children {
			walk(c, a)
		}
	}
	for _, a := range s.Actors {
		walk(a, nil)
	}
}

// Counts returns the number of elements per kind, actors included.
func (s *Scene) Counts() map[string]int {
	actors := 0
	s.WalkActors(func(*Actor, *Actor) bool {
		actors++
		return true
	})
	return map[string]int{
		"textures":           len(s.Textures),
		"material_functions": len(s.MaterialFunctions),
		"materials":          len(s.Materials),
		"meshes":             len(s.Meshes),
		"actors":             actors,
		"sequences":          len(s.Sequences),
		"variant_sets":       len(s.VariantSets),
	}
}
