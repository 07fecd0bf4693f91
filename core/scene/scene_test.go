package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Scene {
	return &Scene{
		Name: "Room",
		Textures: []*Texture{
			{Element: Element{ID: "t1", Name: "T_Wood"}, File: "wood.png"},
		},
		Materials: []*Material{
			{Element: Element{ID: "m1", Name: "M_Wood"}, Shader: &Shader{Diffuse: "T_Wood"}},
		},
		Actors: []*Actor{{
			Element: Element{ID: "a1", Name: "Table"},
			Mesh:    "SM_Table",
			Children: []*Actor{
				{Element: Element{ID: "a2", Name: "Lamp"}, Type: "PointLight", Light: &Light{Intensity: 5}},
				{Element: Element{ID: "a3", Name: "Leg"}, Component: true},
			},
		}},
		Metadata: []*Metadata{{Target: "Table", Properties: map[string]string{"vendor": "acme"}}},
	}
}

func TestHash(t *testing.T) {
	a := &Texture{Element: Element{ID: "t1", Name: "T"}, File: "a.png"}
	b := &Texture{Element: Element{ID: "t1", Name: "T"}, File: "a.png"}
	c := &Texture{Element: Element{ID: "t1", Name: "T"}, File: "b.png"}

	assert.Len(t, Hash(a), 64)
	assert.Equal(t, Hash(a), Hash(b))
	assert.NotEqual(t, Hash(a), Hash(c))

	m1 := &Metadata{Target: "x", Properties: map[string]string{"a": "1", "b": "2", "c": "3"}}
	m2 := &Metadata{Target: "x", Properties: map[string]string{"c": "3", "b": "2", "a": "1"}}
	assert.Equal(t, Hash(m1), Hash(m2))
}

func TestClone_IsDeep(t *testing.T) {
	s := sample()

	c, err := s.Clone()
	require.NoError(t, err)

	c.Textures[0].File = "changed.png"
	c.Actors[0].Children[0].Light.Intensity = 1
	c.Textures = c.Textures[:0]

	assert.Equal(t, "wood.png", s.Textures[0].File)
	assert.Equal(t, 5.0, s.Actors[0].Children[0].Light.Intensity)
	assert.Len(t, s.Textures, 1)
	assert.Equal(t, "T_Wood", c.Materials[0].Shader.Diffuse)
}

func TestWalkActors(t *testing.T) {
	s := sample()
	var visited []string
	s.WalkActors(func(a, parent *Actor) bool {
		visited = append(visited, a.Name)
		return !a.Component
	})

	assert.Equal(t, []string{"Table", "Lamp", "Leg"}, visited)
	assert.Equal(t, 3, s.Counts()["actors"])
	assert.Equal(t, "acme", s.MetadataFor("Table")["vendor"])
	assert.Nil(t, s.MetadataFor("Nope"))
}

func TestTransform_Flatten(t *testing.T) {
	tr := Transform{Location: []float64{1, 2, 3}}
	assert.Equal(t, []float64{1, 2, 3, 0, 0, 0, 1, 1, 1}, tr.Flatten())
}
