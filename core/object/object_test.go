package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPath_Rebase(t *testing.T) {
	tests := []struct {
		name string
		path Path
		from Path
		to   Path
		want Path
	}{
		{"inside", "/Transient/p1/World/A", "/Transient/p1/World", "/Worlds/Main", "/Worlds/Main/A"},
		{"equal", "/Transient/p1", "/Transient/p1", "/Game", "/Game"},
		{"sibling prefix", "/Transient/p10/A", "/Transient/p1", "/Game", "/Transient/p10/A"},
		{"outside", "/Other/A", "/Transient", "/Game", "/Other/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.path.Rebase(tt.from, tt.to))
		})
	}
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, Float(0.1+0.2).Equal(Float(0.3)))
	assert.True(t, Vector(1, 2, 3).Equal(Vector(1, 2, 3)))
	assert.False(t, Vector(1, 2).Equal(Vector(1, 2, 3)))
	assert.False(t, Int(1).Equal(Float(1)))
	assert.False(t, StrongValue("a").Equal(Reference(WeakRef("a"))))
	assert.True(t, Props{"a": String("x")}.Equal(Props{"a": String("x")}))
	assert.False(t, Props{"a": String("x")}.Equal(Props{"b": String("x")}))
}

func TestValue_CloneIsDeep(t *testing.T) {
	v := Vector(1, 2, 3)
	c := v.Clone()
	c.Vec[0] = 9
	assert.Equal(t, 1.0, v.Vec[0])
}

func TestKind_ActorKind(t *testing.T) {
	assert.Equal(t, KindSpotLight, ActorKind("SpotLight"))
	assert.Equal(t, KindGenericActor, ActorKind("Decal"))
	assert.True(t, KindAreaLight.IsLight())
	assert.False(t, KindCamera.IsLight())
	assert.True(t, KindInstancedMeshComponent.IsComponent())
}

func TestDescriptor_CoveredFields(t *testing.T) {
	d := Describe(KindMaterial)
	o := &Object{Kind: KindMaterial, Props: Props{
		"Texture.BaseColor": StrongValue("t1"),
		"Unrelated":         String("x"),
	}}
	other := &Object{Kind: KindMaterial, Props: Props{"Function.0": StrongValue("f1")}}

	var names []string
	for _, f := range d.CoveredFields(o, other) {
		names = append(names, f.Name)
	}

	assert.Equal(t, []string{
		"BaseColor", "Function.0", "Metallic", "Opacity", "Roughness",
		"ShadingModel", "Texture.BaseColor", "TwoSided",
	}, names)
}

func TestCopyProps_RemovesMissing(t *testing.T) {
	src := &Object{Kind: KindPointLight, Props: Props{"Intensity": Float(5)}}
	dst := &Object{Kind: KindPointLight, Props: Props{
		"Intensity":    Float(1),
		"Color":        Vector(1, 0, 0),
		"LastSelected": Float(3),
	}}

	CopyProps(dst, src, func(p PropertyDescriptor) bool {
		return p.Has(Covered) && !p.Has(Transient)
	})

	assert.Equal(t, 5.0, dst.Props["Intensity"].Float)
	assert.NotContains(t, dst.Props, "Color")
	assert.Contains(t, dst.Props, "LastSelected")
}

func TestDescriptor_Rebuild(t *testing.T) {
	d := Describe(KindInstancedMeshComponent)
	o := &Object{Kind: KindInstancedMeshComponent}
	o.Set("Instances", Vector(make([]float64, 18)...))

	d.Rebuild(o)

	assert.Equal(t, int64(2), o.Props["InstanceCount"].Int)
	assert.True(t, o.Props["TreeBuilt"].Bool)
}

func TestDescribe_Unknown(t *testing.T) {
	d := Describe("Nope")
	assert.Empty(t, d.Properties)
	assert.Nil(t, d.Rebuild)
}
