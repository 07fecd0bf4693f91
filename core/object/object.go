package object

import (
	"errors"
	"path"
	"strings"
)

var (
	// ErrNotFound is returned when an object or path does not exist in the store.
	ErrNotFound = errors.New("object not found")
	// ErrExists is returned when a path is already taken by another object.
	ErrExists = errors.New("object already exists")
)

// ID is the identity of an object. It survives renames and re-imports.
type ID string

// Path is a slash separated location of an object inside a namespace,
// e.g. "/Game/Scene/Textures/T_Wood".
type Path string

// Join appends name to the directory p.
func (p Path) Join(name string) Path {
	return Path(path.Join(string(p), name))
}

// Dir returns the directory part of p.
func (p Path) Dir() Path {
	return Path(path.Dir(string(p)))
}

// Base returns the last element of p.
func (p Path) Base() string {
	return path.Base(string(p))
}

// HasPrefix reports whether p equals dir or lives below it.
func (p Path) HasPrefix(dir Path) bool {
	if p == dir {
		return true
	}
	return strings.HasPrefix(string(p), strings.TrimSuffix(string(dir), "/")+"/")
}

// Rebase moves p from the from directory to the to directory.
// Paths outside from are returned unchanged.
func (p Path) Rebase(from, to Path) Path {
	if !p.HasPrefix(from) {
		return p
	}
	rel := strings.TrimPrefix(string(p), string(from))
	return Path(strings.TrimSuffix(string(to), "/") + rel)
}

// ImportData is the change-detection record attached to a published object.
type ImportData struct {
	// SourceFile is the file the element was read from.
	SourceFile string `json:"source_file,omitempty"`
	// Hash is the content hash of the element at publish time.
	Hash string `json:"hash,omitempty"`
}

// Object is one node of the object graph.
//
// Top-level objects live at Dir/Name. Subobjects are owned by their Outer and
// are addressed as OuterPath:Name; they are deleted and duplicated together
// with their owner.
type Object struct {
	ID   ID     `json:"id"`
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
	Dir  Path   `json:"dir,omitempty"`

	// Outer is the owner of a subobject. It defines placement, not data.
	Outer ID `json:"outer,omitempty"`
	// Archetype is the prototype the object was created from.
	Archetype ID `json:"archetype,omitempty"`

	// StableID is the discoverable stable element ID tag.
	StableID string `json:"stable_id,omitempty"`
	// Metadata is free-form key/value data copied from the source element.
	Metadata map[string]string `json:"metadata,omitempty"`

	Props      Props `json:"props,omitempty"`
	Subobjects []ID  `json:"subobjects,omitempty"`

	// Baseline is the template stored by the last import, used as the diff
	// baseline for the next one.
	Baseline Props      `json:"baseline,omitempty"`
	Import   ImportData `json:"import,omitempty"`

	// Registered is the runtime registration state of components.
	Registered bool `json:"registered,omitempty"`

	// Managed maps stable IDs to the actors an anchor manages.
	Managed map[string]Ref `json:"managed,omitempty"`

	// Payload carries transient bulk data such as decoded texture bytes.
	Payload []byte `json:"-"`

	pendingKill bool
}

// Path returns the full path of the object. Subobjects are only addressable
// through their outer and report their name alone.
func (o *Object) Path() Path {
	if o.Dir == "" {
		return Path(o.Name)
	}
	return o.Dir.Join(o.Name)
}

// Get returns the named property.
func (o *Object) Get(name string) (Value, bool) {
	v, ok := o.Props[name]
	return v, ok
}

// Set writes the named property.
func (o *Object) Set(name string, v Value) {
	if o.Props == nil {
		o.Props = make(Props)
	}
	o.Props[name] = v
}

// Str returns a string property or "".
func (o *Object) Str(name string) string {
	return o.Props[name].Str
}

// RefOf returns the reference held by a property.
func (o *Object) RefOf(name string) (Ref, bool) {
	v, ok := o.Props[name]
	if !ok || v.Type != TypeRef {
		return Ref{}, false
	}
	return v.Ref, true
}

// IsPendingKill reports whether the object was deleted while still referenced.
func (o *Object) IsPendingKill() bool { return o.pendingKill }

// MarkPendingKill flags the object as deleted. Only stores should call it.
func (o *Object) MarkPendingKill() { o.pendingKill = true }

// IsSubobject reports whether the object is owned by another object.
func (o *Object) IsSubobject() bool { return o.Outer != "" }
