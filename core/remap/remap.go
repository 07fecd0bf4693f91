// Package remap rewrites references from staged objects to their published
// counterparts.
//
// Strong references are rewritten eagerly through a Table as soon as the
// referenced kind is published. Soft references are path based and are
// rewritten later, in one sweep over a Renames table.
package remap

import (
	"scene-publisher/core/object"
)

// maxChain bounds transitive lookups so that a malformed cycle cannot hang a pass.
const maxChain = 64

// Table maps staged identities to final identities. Entries are only ever
// added within a pass.
type Table struct {
	m map[object.ID]object.ID
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{m: make(map[object.ID]object.ID)}
}

// Add records that from was published as to. Self mappings are ignored.
func (t *Table) Add(from, to object.ID) {
	if from == "" || to == "" || from == to {
		return
	}
	t.m[from] = to
}

// Lookup follows the chain starting at id and returns the last identity.
// The boolean is false when id has no entry.
func (t *Table) Lookup(id object.ID) (object.ID, bool) {
	to, ok := t.m[id]
	if !ok {
		return id, false
	}
	for i := 0; i < maxChain; i++ {
		next, ok := t.m[to]
		if !ok || next == id {
			break
		}
		to = next
	}
	return to, true
}

// Has reports whether id has an entry.
func (t *Table) Has(id object.ID) bool {
	_, ok := t.m[id]
	return ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.m)
}

// Stats reports the outcome of a rewrite.
type Stats struct {
	// Rewritten counts the references that were replaced.
	Rewritten int
	// Missed lists strong reference targets that had no entry. They are
	// left untouched.
	Missed []object.ID
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Rewritten += o.Rewritten
	s.Missed = append(s.Missed, o.Missed...)
}

// RewriteReferences replaces every strong reference held by o and by the
// subobjects it owns whose target has an entry in t. Outer and archetype
// links are structural and never followed nor rewritten.
func RewriteReferences(s object.Store, o *object.Object, t *Table) Stats {
	var st Stats
	rewrite(s, o, t, &st, 0)
	return st
}

func rewrite(s object.Store, o *object.Object, t *Table, st *Stats, depth int) {
	for name, v := range o.Props {
		if v.Type != object.TypeRef || v.Ref.Kind != object.Strong || v.Ref.Target == "" {
			continue
		}
		to, ok := t.Lookup(v.Ref.Target)
		if !ok {
			st.Missed = append(st.Missed, v.Ref.Target)
			continue
		}
		v.Ref.Target = to
		o.Props[name] = v
		st.Rewritten++
	}
	// baselines live in final identity space too
	for name, v := range o.Baseline {
		if v.Type != object.TypeRef || v.Ref.Kind != object.Strong {
			continue
		}
		if to, ok := t.Lookup(v.Ref.Target); ok {
			v.Ref.Target = to
			o.Baseline[name] = v
		}
	}
	if depth >= maxChain {
		return
	}
	for _, sub := range object.Subobjects(s, o) {
		rewrite(s, sub, t, st, depth+1)
	}
}

// Renames maps old object paths to new ones for soft references.
type Renames struct {
	m map[object.Path]object.Path
}

// NewRenames creates an empty rename table.
func NewRenames() *Renames {
	return &Renames{m: make(map[object.Path]object.Path)}
}

// Add records that from now lives at to.
func (r *Renames) Add(from, to object.Path) {
	if from == "" || to == "" || from == to {
		return
	}
	r.m[from] = to
}

// Lookup follows renames starting at p.
func (r *Renames) Lookup(p object.Path) (object.Path, bool) {
	to, ok := r.m[p]
	if !ok {
		return p, false
	}
	for i := 0; i < maxChain; i++ {
		next, ok := r.m[to]
		if !ok || next == p {
			break
		}
		to = next
	}
	return to, true
}

// Len returns the number of renames.
func (r *Renames) Len() int {
	return len(r.m)
}

// SweepSoft rewrites the soft references held by objs and their subobjects
// through renames, baselines included. It returns the number of property
// references rewritten.
func SweepSoft(s object.Store, objs []*object.Object, renames *Renames) int {
	n := 0
	var walk func(o *object.Object, depth int)
	walk = func(o *object.Object, depth int) {
		n += sweep(o.Props, renames)
		sweep(o.Baseline, renames)
		if depth >= maxChain {
			return
		}
		for _, sub := range object.Subobjects(s, o) {
			walk(sub, depth+1)
		}
	}
	for _, o := range objs {
		walk(o, 0)
	}
	return n
}

func sweep(props object.Props, renames *Renames) int {
	n := 0
	for name, v := range props {
		if v.Type != object.TypeRef || v.Ref.Kind != object.Soft {
			continue
		}
		if to, ok := renames.Lookup(v.Ref.Path); ok {
			v.Ref.Path = to
			props[name] = v
			n++
		}
	}
	return n
}
