package object

// Store is the destination object runtime. Objects returned by a Store are
// live: callers mutate them in place. Implementations are not required to be
// safe for concurrent use; a single goroutine owns all mutations.
type Store interface {
	// NewID allocates a fresh identity.
	NewID() ID
	// Create inserts o. An empty ID is allocated. Top-level objects must have
	// a free path; objects with an Outer are appended to its subobjects.
	Create(o *Object) (*Object, error)
	// Get returns the live object for id. Deleted objects are not returned.
	Get(id ID) (*Object, bool)
	// FindByPath returns the top-level object at p.
	FindByPath(p Path) (*Object, bool)
	// FindByStableID returns the first top-level object of kind below dir
	// tagged with stableID.
	FindByStableID(dir Path, kind Kind, stableID string) (*Object, bool)
	// Duplicate deep-copies src and its subobjects to dir/name. When existing
	// is set, the copy replaces that object and keeps its identity; otherwise
	// the copy gets a new identity.
	Duplicate(src ID, dir Path, name string, existing ID) (*Object, error)
	// Move relocates a top-level object to dir/name keeping its identity.
	Move(id ID, dir Path, name string) error
	// Delete removes an object and every subobject it owns.
	Delete(id ID) error
	// List returns the top-level objects below prefix, optionally filtered by
	// kind, sorted by path.
	List(prefix Path, kind Kind) []*Object
}

// Resolve returns the live target of a strong or weak reference.
func Resolve(s Store, r Ref) (*Object, bool) {
	switch r.Kind {
	case Strong, Weak:
		if r.Target == "" {
			return nil, false
		}
		o, ok := s.Get(r.Target)
		if !ok || o.IsPendingKill() {
			return nil, false
		}
		return o, true
	case Soft:
		return s.FindByPath(r.Path)
	}
	return nil, false
}

// Subobjects returns the live subobjects owned by o.
func Subobjects(s Store, o *Object) []*Object {
	out := make([]*Object, 0, len(o.Subobjects))
	for _, id := range o.Subobjects {
		if sub, ok := s.Get(id); ok {
			out = append(out, sub)
		}
	}
	return out
}
