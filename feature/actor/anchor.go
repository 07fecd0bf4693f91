package actor

import (
	"iter"
	"maps"
	"slices"

	"scene-publisher/core/object"
)

// FindAnchor returns the anchor of scene in world. Anchors of other scenes
// share the world but are never touched.
func FindAnchor(s object.Store, world object.Path, sceneName string) (*object.Object, bool) {
	for _, o := range s.List(world, object.KindSceneAnchor) {
		if o.Str("Scene") == sceneName {
			return o, true
		}
	}
	return nil, false
}

// Anchors returns every anchor below prefix.
func Anchors(s object.Store, prefix object.Path) []*object.Object {
	return s.List(prefix, object.KindSceneAnchor)
}

// ManagedActors returns the live actors anchor manages, by stable ID order.
func ManagedActors(s object.Store, anchor *object.Object) []*object.Object {
	var out []*object.Object
	for _, ref := range sortedManaged(anchor) {
		if o, ok := trackedActor(s, ref, true); ok {
			out = append(out, o)
		}
	}
	return out
}

func sortedManaged(anchor *object.Object) iter.Seq2[string, object.Ref] {
	return func(yield func(string, object.Ref) bool) {
		for _, id := range slices.Sorted(maps.Keys(anchor.Managed)) {
			if !yield(id, anchor.Managed[id]) {
				return
			}
		}
	}
}
