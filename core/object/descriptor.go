package object

import (
	"slices"
	"strings"
	"sync"
)

// Flags describe how the importer treats a property.
type Flags uint8

const (
	// Covered properties are controlled by the importer and captured in templates.
	Covered Flags = 1 << iota
	// Owning properties hold strong references.
	Owning
	// Transient properties are derived at runtime and never copied.
	Transient
	// Editable properties are exposed to the user for editing.
	Editable
)

// PropertyDescriptor describes one property of a kind. A descriptor whose
// name ends with "." is a prefix and matches every property starting with it,
// e.g. "Material." matches "Material.0" and "Material.Body".
type PropertyDescriptor struct {
	Name  string
	Type  ValueType
	Flags Flags
}

// Has reports whether every flag in f is set.
func (p PropertyDescriptor) Has(f Flags) bool {
	return p.Flags&f == f
}

// IsPrefix reports whether the descriptor matches a family of properties.
func (p PropertyDescriptor) IsPrefix() bool {
	return strings.HasSuffix(p.Name, ".")
}

func (p PropertyDescriptor) matches(name string) bool {
	if p.IsPrefix() {
		return strings.HasPrefix(name, p.Name) && len(name) > len(p.Name)
	}
	return p.Name == name
}

// Field is a concrete property of one object resolved against its descriptor.
type Field struct {
	Name string
	PropertyDescriptor
}

// Get reads the field off o.
func (f Field) Get(o *Object) (Value, bool) {
	v, ok := o.Props[f.Name]
	return v, ok
}

// Set writes v onto o. A zero value removes the property.
func (f Field) Set(o *Object, v Value) {
	if v.IsZero() {
		delete(o.Props, f.Name)
		return
	}
	o.Set(f.Name, v.Clone())
}

// Descriptor is the property table of one kind.
type Descriptor struct {
	Kind       Kind
	Properties []PropertyDescriptor
	// Rebuild regenerates derived state after a bulk property copy.
	Rebuild func(o *Object)
}

// Property returns the descriptor entry matching name.
func (d *Descriptor) Property(name string) (PropertyDescriptor, bool) {
	for _, p := range d.Properties {
		if p.matches(name) {
			return p, true
		}
	}
	return PropertyDescriptor{}, false
}

// Fields resolves the properties of o selected by keep. Fixed properties are
// always returned, prefix properties only for the names present on o or on
// any of the extra objects. The result is sorted by name.
func (d *Descriptor) Fields(keep func(PropertyDescriptor) bool, objs ...*Object) []Field {
	seen := make(map[string]bool)
	var out []Field
	for _, p := range d.Properties {
		if !keep(p) {
			continue
		}
		if !p.IsPrefix() {
			seen[p.Name] = true
			out = append(out, Field{Name: p.Name, PropertyDescriptor: p})
			continue
		}
		for _, o := range objs {
			if o == nil {
				continue
			}
			for name := range o.Props {
				if seen[name] || !p.matches(name) {
					continue
				}
				seen[name] = true
				out = append(out, Field{Name: name, PropertyDescriptor: p})
			}
		}
	}
	slices.SortFunc(out, func(a, b Field) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// CoveredFields returns the importer-controlled fields of the given objects.
func (d *Descriptor) CoveredFields(objs ...*Object) []Field {
	return d.Fields(func(p PropertyDescriptor) bool { return p.Has(Covered) }, objs...)
}

// CopyProps copies the fields selected by keep from src onto dst.
// Values missing on src are removed from dst.
func CopyProps(dst, src *Object, keep func(PropertyDescriptor) bool) {
	d := Describe(src.Kind)
	for _, f := range d.Fields(keep, src, dst) {
		v, _ := f.Get(src)
		f.Set(dst, v)
	}
}

var (
	registryMu sync.RWMutex
	registry   = make(map[Kind]*Descriptor)
)

// Register installs d as the descriptor for its kind, replacing any previous one.
func Register(d *Descriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Kind] = d
}

// Describe returns the descriptor registered for kind. Unknown kinds get an
// empty descriptor.
func Describe(kind Kind) *Descriptor {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if d, ok := registry[kind]; ok {
		return d
	}
	return &Descriptor{Kind: kind}
}

const (
	ce  = Covered | Editable
	cor = Covered | Owning
)

var actorCommon = []PropertyDescriptor{
	{Name: "Label", Type: TypeString, Flags: ce},
	{Name: "Layers", Type: TypeStrings, Flags: ce},
	{Name: "Tags", Type: TypeStrings, Flags: ce},
	{Name: "Hidden", Type: TypeBool, Flags: ce},
	{Name: "RootComponent", Type: TypeRef, Flags: Owning},
	{Name: "SourceScene", Type: TypeString},
	{Name: "LastSelected", Type: TypeFloat, Flags: Transient},
}

var lightCommon = []PropertyDescriptor{
	{Name: "Intensity", Type: TypeFloat, Flags: ce},
	{Name: "Color", Type: TypeVector, Flags: ce},
	{Name: "Temperature", Type: TypeFloat, Flags: ce},
	{Name: "CastShadows", Type: TypeBool, Flags: ce},
}

var componentCommon = []PropertyDescriptor{
	{Name: "Location", Type: TypeVector, Flags: ce},
	{Name: "Rotation", Type: TypeVector, Flags: ce},
	{Name: "Scale", Type: TypeVector, Flags: ce},
	{Name: "Mobility", Type: TypeString, Flags: ce},
	{Name: "Visible", Type: TypeBool, Flags: ce},
	{Name: "AttachParent", Type: TypeRef, Flags: Owning},
	{Name: "ComponentToWorld", Type: TypeVector, Flags: Transient},
}

func props(groups ...[]PropertyDescriptor) []PropertyDescriptor {
	var out []PropertyDescriptor
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func init() {
	for _, d := range []*Descriptor{
		{Kind: KindWorld, Properties: []PropertyDescriptor{
			{Name: "Layers", Type: TypeStrings, Flags: Editable},
		}},
		{Kind: KindSceneAnchor, Properties: []PropertyDescriptor{
			{Name: "Scene", Type: TypeString},
			{Name: "World", Type: TypeString},
			{Name: "RootComponent", Type: TypeRef, Flags: Owning},
		}},
		{Kind: KindTexture, Properties: []PropertyDescriptor{
			{Name: "SourcePath", Type: TypeString, Flags: Covered},
			{Name: "Role", Type: TypeString, Flags: Covered},
			{Name: "SRGB", Type: TypeBool, Flags: ce},
			{Name: "Compression", Type: TypeString, Flags: ce},
			{Name: "MipGen", Type: TypeString, Flags: ce},
			{Name: "LODGroup", Type: TypeString, Flags: ce},
			{Name: "FlipGreen", Type: TypeBool, Flags: ce},
			{Name: "VirtualTexture", Type: TypeBool, Flags: ce},
			{Name: "Format", Type: TypeString, Flags: Covered},
			{Name: "Width", Type: TypeInt, Flags: Covered},
			{Name: "Height", Type: TypeInt, Flags: Covered},
			{Name: "PayloadURI", Type: TypeString},
		}},
		{Kind: KindMaterialFunction, Properties: []PropertyDescriptor{
			{Name: "Description", Type: TypeString, Flags: ce},
			{Name: "Expressions", Type: TypeStrings, Flags: Covered},
			{Name: "Texture.", Type: TypeRef, Flags: cor},
		}},
		{Kind: KindMaterial, Properties: []PropertyDescriptor{
			{Name: "ShadingModel", Type: TypeString, Flags: ce},
			{Name: "TwoSided", Type: TypeBool, Flags: ce},
			{Name: "Opacity", Type: TypeFloat, Flags: ce},
			{Name: "BaseColor", Type: TypeVector, Flags: ce},
			{Name: "Metallic", Type: TypeFloat, Flags: ce},
			{Name: "Roughness", Type: TypeFloat, Flags: ce},
			{Name: "VirtualTextureSupport", Type: TypeBool, Flags: Covered},
			{Name: "Texture.", Type: TypeRef, Flags: cor},
			{Name: "Function.", Type: TypeRef, Flags: cor},
		}},
		{Kind: KindStaticMesh, Properties: []PropertyDescriptor{
			{Name: "LightmapResolution", Type: TypeInt, Flags: ce},
			{Name: "GenerateLightmapUVs", Type: TypeBool, Flags: ce},
			{Name: "Material.", Type: TypeRef, Flags: cor},
			{Name: "VertexCount", Type: TypeInt, Flags: Transient},
			{Name: "TriangleCount", Type: TypeInt, Flags: Transient},
			{Name: "Bounds", Type: TypeVector, Flags: Transient},
			{Name: "Built", Type: TypeBool, Flags: Transient},
		}},
		{Kind: KindLevelSequence, Properties: []PropertyDescriptor{
			{Name: "FrameRate", Type: TypeFloat, Flags: ce},
			{Name: "Duration", Type: TypeFloat, Flags: ce},
			{Name: "Binding.", Type: TypeRef, Flags: Covered},
			{Name: "SubSequence.", Type: TypeRef, Flags: cor},
		}},
		{Kind: KindVariantSets, Properties: []PropertyDescriptor{
			{Name: "Sets", Type: TypeStrings, Flags: Covered},
		}},
		{Kind: KindVariant, Properties: []PropertyDescriptor{
			{Name: "Set", Type: TypeString, Flags: Covered},
			{Name: "Active", Type: TypeBool, Flags: ce},
			{Name: "Binding.", Type: TypeRef, Flags: Covered},
			{Name: "Swap.", Type: TypeRef, Flags: cor},
		}},

		{Kind: KindStaticMeshActor, Properties: actorCommon},
		{Kind: KindGenericActor, Properties: actorCommon},
		{Kind: KindPointLight, Properties: props(actorCommon, lightCommon, []PropertyDescriptor{
			{Name: "AttenuationRadius", Type: TypeFloat, Flags: ce},
		})},
		{Kind: KindSpotLight, Properties: props(actorCommon, lightCommon, []PropertyDescriptor{
			{Name: "AttenuationRadius", Type: TypeFloat, Flags: ce},
			{Name: "InnerCone", Type: TypeFloat, Flags: ce},
			{Name: "OuterCone", Type: TypeFloat, Flags: ce},
		})},
		{Kind: KindDirectionalLight, Properties: props(actorCommon, lightCommon)},
		{Kind: KindAreaLight, Properties: props(actorCommon, lightCommon, []PropertyDescriptor{
			{Name: "Width", Type: TypeFloat, Flags: ce},
			{Name: "Height", Type: TypeFloat, Flags: ce},
		})},
		{Kind: KindCamera, Properties: props(actorCommon, []PropertyDescriptor{
			{Name: "FocalLength", Type: TypeFloat, Flags: ce},
			{Name: "Aperture", Type: TypeFloat, Flags: ce},
			{Name: "SensorWidth", Type: TypeFloat, Flags: ce},
			{Name: "LookAt", Type: TypeRef, Flags: Owning},
		})},
		{Kind: KindLandscape, Properties: props(actorCommon, []PropertyDescriptor{
			{Name: "Heightmap", Type: TypeString, Flags: Covered},
			{Name: "ComponentSize", Type: TypeInt, Flags: Covered},
			{Name: "Material", Type: TypeRef, Flags: cor},
			{Name: "CollisionDirty", Type: TypeBool, Flags: Transient},
		})},
		{Kind: KindPostProcessVolume, Properties: props(actorCommon, []PropertyDescriptor{
			{Name: "Unbound", Type: TypeBool, Flags: ce},
			{Name: "Exposure", Type: TypeFloat, Flags: ce},
			{Name: "Priority", Type: TypeFloat, Flags: ce},
		})},

		{Kind: KindSceneComponent, Properties: componentCommon},
		{Kind: KindStaticMeshComponent, Properties: props(componentCommon, []PropertyDescriptor{
			{Name: "Mesh", Type: TypeRef, Flags: cor},
			{Name: "Material.", Type: TypeRef, Flags: cor},
		})},
		{Kind: KindInstancedMeshComponent, Properties: props(componentCommon, []PropertyDescriptor{
			{Name: "Mesh", Type: TypeRef, Flags: cor},
			{Name: "Material.", Type: TypeRef, Flags: cor},
			{Name: "Instances", Type: TypeVector, Flags: ce},
			{Name: "InstanceCount", Type: TypeInt, Flags: Transient},
			{Name: "TreeBuilt", Type: TypeBool, Flags: Transient},
		}), Rebuild: rebuildInstanceTree},
	} {
		Register(d)
	}
}

// rebuildInstanceTree recomputes the instance count from the flattened
// 9-float transforms and marks the culling tree as current.
func rebuildInstanceTree(o *Object) {
	n := len(o.Props["Instances"].Vec) / 9
	o.Set("InstanceCount", Int(int64(n)))
	o.Set("TreeBuilt", Bool(true))
}
