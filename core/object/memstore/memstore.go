// Package memstore is an in-memory object.Store: an arena of objects indexed
// by identity and by path.
package memstore

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"scene-publisher/core/object"

	"github.com/google/uuid"
)

// Store keeps every object in memory. It is not safe for concurrent use.
type Store struct {
	objects map[object.ID]*object.Object
	paths   map[object.Path]object.ID
	newID   func() object.ID
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc overrides identity allocation, mostly for deterministic tests.
func WithIDFunc(f func() object.ID) Option {
	return func(s *Store) { s.newID = f }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		objects: make(map[object.ID]*object.Object),
		paths:   make(map[object.Path]object.ID),
		newID:   func() object.ID { return object.ID(uuid.NewString()) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ object.Store = (*Store)(nil)

// NewID allocates a fresh identity.
func (s *Store) NewID() object.ID {
	return s.newID()
}

// Create inserts o into the arena.
func (s *Store) Create(o *object.Object) (*object.Object, error) {
	if o.ID == "" {
		o.ID = s.newID()
	}
	if _, ok := s.objects[o.ID]; ok {
		return nil, fmt.Errorf("create %s: %w", o.ID, object.ErrExists)
	}
	if o.Outer != "" {
		owner, ok := s.objects[o.Outer]
		if !ok {
			return nil, fmt.Errorf("create %s: outer %s: %w", o.Name, o.Outer, object.ErrNotFound)
		}
		o.Dir = ""
		if !slices.Contains(owner.Subobjects, o.ID) {
			owner.Subobjects = append(owner.Subobjects, o.ID)
		}
	} else {
		p := o.Path()
		if _, taken := s.paths[p]; taken {
			return nil, fmt.Errorf("create %s: %w", p, object.ErrExists)
		}
		s.paths[p] = o.ID
	}
	s.objects[o.ID] = o
	return o, nil
}

// Get returns the live object for id.
func (s *Store) Get(id object.ID) (*object.Object, bool) {
	o, ok := s.objects[id]
	return o, ok
}

// FindByPath returns the top-level object at p.
func (s *Store) FindByPath(p object.Path) (*object.Object, bool) {
	id, ok := s.paths[p]
	if !ok {
		return nil, false
	}
	return s.Get(id)
}

// FindByStableID returns the first top-level object below dir with the given
// kind and stable ID tag. An empty kind matches any kind.
func (s *Store) FindByStableID(dir object.Path, kind object.Kind, stableID string) (*object.Object, bool) {
	if stableID == "" {
		return nil, false
	}
	for _, o := range s.List(dir, kind) {
		if o.StableID == stableID {
			return o, true
		}
	}
	return nil, false
}

// Duplicate deep-copies src and its subobjects to dir/name. Over an existing
// object, subobjects matching an existing one by kind and name keep its
// identity.
func (s *Store) Duplicate(src object.ID, dir object.Path, name string, existing object.ID) (*object.Object, error) {
	orig, ok := s.objects[src]
	if !ok {
		return nil, fmt.Errorf("duplicate %s: %w", src, object.ErrNotFound)
	}
	target := dir.Join(name)
	if holder, taken := s.paths[target]; taken && holder != existing {
		return nil, fmt.Errorf("duplicate to %s: %w", target, object.ErrExists)
	}

	ids := make(map[object.ID]object.ID)
	s.collectIDs(orig, ids)
	if existing != "" {
		ex, ok := s.objects[existing]
		if !ok {
			return nil, fmt.Errorf("duplicate over %s: %w", existing, object.ErrNotFound)
		}
		s.reuseIDs(orig, ex, ids)
		for _, sub := range ex.Subobjects {
			s.deleteTree(sub)
		}
		delete(s.paths, ex.Path())
		ids[src] = existing
	}

	clones := make([]*object.Object, 0, len(ids))
	for from, to := range ids {
		c := cloneObject(s.objects[from])
		c.ID = to
		if c.Outer != "" {
			c.Outer = ids[c.Outer]
		}
		for i, sub := range c.Subobjects {
			c.Subobjects[i] = ids[sub]
		}
		remapInternal(c.Props, ids)
		clones = append(clones, c)
	}

	var root *object.Object
	for _, c := range clones {
		if c.ID != ids[src] {
			s.objects[c.ID] = c
			continue
		}
		c.Outer = ""
		c.Dir = dir
		c.Name = name
		if ex, ok := s.objects[c.ID]; ok {
			// Keep pointer identity for callers holding the replaced object.
			*ex = *c
			c = ex
		} else {
			s.objects[c.ID] = c
		}
		root = c
	}
	s.paths[target] = root.ID
	return root, nil
}

// Move relocates a top-level object keeping its identity.
func (s *Store) Move(id object.ID, dir object.Path, name string) error {
	o, ok := s.objects[id]
	if !ok {
		return fmt.Errorf("move %s: %w", id, object.ErrNotFound)
	}
	if o.Outer != "" {
		return fmt.Errorf("move %s: subobjects cannot be moved", id)
	}
	target := dir.Join(name)
	if holder, taken := s.paths[target]; taken && holder != id {
		return fmt.Errorf("move to %s: %w", target, object.ErrExists)
	}
	delete(s.paths, o.Path())
	o.Dir = dir
	o.Name = name
	s.paths[target] = id
	return nil
}

// Delete removes an object and its subobjects. Holders of the removed
// objects observe them as pending kill.
func (s *Store) Delete(id object.ID) error {
	o, ok := s.objects[id]
	if !ok {
		return fmt.Errorf("delete %s: %w", id, object.ErrNotFound)
	}
	if o.Outer != "" {
		if owner, ok := s.objects[o.Outer]; ok {
			owner.Subobjects = slices.DeleteFunc(owner.Subobjects, func(sub object.ID) bool { return sub == id })
		}
	} else {
		delete(s.paths, o.Path())
	}
	s.deleteTree(id)
	return nil
}

// List returns the top-level objects below prefix sorted by path.
func (s *Store) List(prefix object.Path, kind object.Kind) []*object.Object {
	var out []*object.Object
	for p, id := range s.paths {
		if !p.HasPrefix(prefix) {
			continue
		}
		o := s.objects[id]
		if kind != "" && o.Kind != kind {
			continue
		}
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b *object.Object) int {
		return strings.Compare(string(a.Path()), string(b.Path()))
	})
	return out
}

// Len returns the number of live objects, subobjects included.
func (s *Store) Len() int {
	return len(s.objects)
}

// Export returns a deep copy of every object sorted by identity.
func (s *Store) Export() []object.Object {
	ids := slices.Sorted(maps.Keys(s.objects))
	out := make([]object.Object, 0, len(ids))
	for _, id := range ids {
		out = append(out, *cloneObject(s.objects[id]))
	}
	return out
}

// Load replaces the store content with objs.
func (s *Store) Load(objs []object.Object) error {
	s.objects = make(map[object.ID]*object.Object, len(objs))
	s.paths = make(map[object.Path]object.ID)
	for i := range objs {
		o := cloneObject(&objs[i])
		if _, dup := s.objects[o.ID]; dup {
			return fmt.Errorf("load %s: %w", o.ID, object.ErrExists)
		}
		s.objects[o.ID] = o
		if o.Outer == "" {
			s.paths[o.Path()] = o.ID
		}
	}
	return nil
}

func (s *Store) collectIDs(o *object.Object, ids map[object.ID]object.ID) {
	ids[o.ID] = s.newID()
	for _, sub := range o.Subobjects {
		if so, ok := s.objects[sub]; ok {
			s.collectIDs(so, ids)
		}
	}
}

// reuseIDs maps the subobjects of src onto the subobjects of ex that have
// the same kind and name, so a duplicate over ex keeps their identities.
func (s *Store) reuseIDs(src, ex *object.Object, ids map[object.ID]object.ID) {
	for _, sub := range src.Subobjects {
		so, ok := s.objects[sub]
		if !ok {
			continue
		}
		for _, other := range ex.Subobjects {
			eo, ok := s.objects[other]
			if ok && eo.Kind == so.Kind && eo.Name == so.Name {
				ids[so.ID] = eo.ID
				s.reuseIDs(so, eo, ids)
				break
			}
		}
	}
}

func (s *Store) deleteTree(id object.ID) {
	o, ok := s.objects[id]
	if !ok {
		return
	}
	for _, sub := range o.Subobjects {
		s.deleteTree(sub)
	}
	o.MarkPendingKill()
	delete(s.objects, id)
}

func remapInternal(props object.Props, ids map[object.ID]object.ID) {
	for name, v := range props {
		if v.Type != object.TypeRef || v.Ref.Kind == object.Soft {
			continue
		}
		if to, ok := ids[v.Ref.Target]; ok {
			v.Ref.Target = to
			props[name] = v
		}
	}
}

func cloneObject(o *object.Object) *object.Object {
	c := *o
	c.Props = o.Props.Clone()
	c.Baseline = o.Baseline.Clone()
	c.Subobjects = slices.Clone(o.Subobjects)
	c.Metadata = maps.Clone(o.Metadata)
	c.Managed = maps.Clone(o.Managed)
	c.Payload = slices.Clone(o.Payload)
	return &c
}
