// Package manifest reads scenes from YAML (or JSON) manifests and serves the
// mesh payloads they carry inline. It stands in for format specific
// translators in the CLI, the HTTP API and tests.
package manifest

import (
	"context"
	"fmt"
	"io"
	"os"

	"scene-publisher/core/scene"

	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk document: a scene plus mesh payloads keyed by mesh
// name.
type Manifest struct {
	scene.Scene `yaml:",inline"`

	Payloads map[string]*scene.MeshPayload `yaml:"payloads,omitempty"`
}

// Decode parses a manifest and fills in derived identifiers.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("parse manifest: scene name is required")
	}
	m.normalize()
	return &m, nil
}

// Load reads the manifest at path. The scene source file defaults to path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.SourceFile == "" {
		m.SourceFile = path
	}
	return m, nil
}

// normalize derives missing stable IDs from kind and name, and mesh file
// hashes from their payloads.
func (m *Manifest) normalize() {
	ensure := func(kind string, e *scene.Element) {
		if e.ID == "" {
			e.ID = scene.Hash(struct{ Scene, Kind, Name string }{m.Name, kind, e.Name})[:16]
		}
	}
	for _, t := range m.Textures {
		ensure("texture", &t.Element)
	}
	for _, f := range m.MaterialFunctions {
		ensure("function", &f.Element)
	}
	for _, mat := range m.Materials {
		ensure("material", &mat.Element)
	}
	for _, mesh := range m.Meshes {
		ensure("mesh", &mesh.Element)
		if p, ok := m.Payloads[mesh.Name]; ok && mesh.FileHash == "" {
			mesh.FileHash = scene.Hash(p)
		}
	}
	m.WalkActors(func(a, _ *scene.Actor) bool {
		ensure("actor", &a.Element)
		return true
	})
	for _, s := range m.Sequences {
		ensure("sequence", &s.Element)
	}
	for _, v := range m.VariantSets {
		ensure("variants", &v.Element)
	}
}

// Translator serves the inline payloads of a manifest.
type Translator struct {
	payloads map[string]*scene.MeshPayload
	parallel bool
}

// NewTranslator creates a translator over m. Parallel load is advertised for
// meshes when parallel is true.
func NewTranslator(m *Manifest, parallel bool) *Translator {
	return &Translator{payloads: m.Payloads, parallel: parallel}
}

// SupportsParallelLoad reports whether payloads of kind may be loaded
// concurrently.
func (t *Translator) SupportsParallelLoad(kind string) bool {
	return t.parallel && kind == "mesh"
}

// LoadMeshPayload returns the geometry of mesh.
func (t *Translator) LoadMeshPayload(ctx context.Context, mesh *scene.Mesh) (*scene.MeshPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := t.payloads[mesh.Name]
	if !ok {
		return nil, fmt.Errorf("mesh %s: no payload", mesh.Name)
	}
	if len(p.Positions)%3 != 0 || len(p.Indices)%3 != 0 {
		return nil, fmt.Errorf("mesh %s: malformed payload", mesh.Name)
	}
	for _, i := range p.Indices {
		if i < 0 || int(i) >= p.VertexCount() {
			return nil, fmt.Errorf("mesh %s: index %d out of range", mesh.Name, i)
		}
	}
	return p, nil
}
