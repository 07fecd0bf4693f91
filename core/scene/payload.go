package scene

// MeshPayload is the geometry of one mesh as returned by a translator.
type MeshPayload struct {
	Positions []float64 `yaml:"positions" json:"positions"`
	Indices   []int32   `yaml:"indices" json:"indices"`
	// Sections lists the material slot used by each triangle range.
	Sections []string `yaml:"sections,omitempty" json:"sections,omitempty"`
}

// VertexCount returns the number of vertices.
func (p *MeshPayload) VertexCount() int { return len(p.Positions) / 3 }

// TriangleCount returns the number of triangles.
func (p *MeshPayload) TriangleCount() int { return len(p.Indices) / 3 }
