package importer

import (
	"fmt"
	"iter"
	"slices"

	"scene-publisher/core/object"
)

// ElementMap maps stable element IDs to objects in insertion order. It is
// injective: an object is mapped from at most one element.
type ElementMap struct {
	keys  []string
	m     map[string]*object.Object
	owner map[object.ID]string
}

// NewElementMap creates an empty map.
func NewElementMap() *ElementMap {
	return &ElementMap{
		m:     make(map[string]*object.Object),
		owner: make(map[object.ID]string),
	}
}

// Set maps stableID to o, replacing any previous object for that ID.
func (e *ElementMap) Set(stableID string, o *object.Object) error {
	if other, ok := e.owner[o.ID]; ok && other != stableID {
		return fmt.Errorf("object %s already mapped from element %s", o.ID, other)
	}
	if prev, ok := e.m[stableID]; ok {
		delete(e.owner, prev.ID)
	} else {
		e.keys = append(e.keys, stableID)
	}
	e.m[stableID] = o
	e.owner[o.ID] = stableID
	return nil
}

// Get returns the object mapped from stableID.
func (e *ElementMap) Get(stableID string) (*object.Object, bool) {
	o, ok := e.m[stableID]
	return o, ok
}

// Delete removes stableID.
func (e *ElementMap) Delete(stableID string) {
	o, ok := e.m[stableID]
	if !ok {
		return
	}
	delete(e.owner, o.ID)
	delete(e.m, stableID)
	e.keys = slices.DeleteFunc(e.keys, func(k string) bool { return k == stableID })
}

// Len returns the number of entries.
func (e *ElementMap) Len() int {
	return len(e.keys)
}

// Keys returns the stable IDs in insertion order.
func (e *ElementMap) Keys() []string {
	return slices.Clone(e.keys)
}

// All iterates entries in insertion order.
func (e *ElementMap) All() iter.Seq2[string, *object.Object] {
	return func(yield func(string, *object.Object) bool) {
		for _, k := range e.keys {
			if !yield(k, e.m[k]) {
				return
			}
		}
	}
}

// Objects returns the mapped objects in insertion order.
func (e *ElementMap) Objects() []*object.Object {
	out := make([]*object.Object, 0, len(e.keys))
	for _, k := range e.keys {
		out = append(out, e.m[k])
	}
	return out
}
