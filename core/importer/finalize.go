package importer

import (
	"context"
	"fmt"

	"scene-publisher/core/object"
	"scene-publisher/core/remap"
	"scene-publisher/core/template"

	"go.uber.org/zap"
)

// FinalizeAsset publishes one staged asset of area.
//
// When a published asset with the same stable ID exists, its covered
// properties are diffed against the fresh template before the staged object
// is duplicated over it, and the diff is re-applied afterwards so user edits
// survive. Otherwise the staged object is moved into the destination. The
// fresh template becomes the next baseline, strong references are rewritten
// through the remap table and the staged identity is mapped to the final
// one.
func (ic *Context) FinalizeAsset(stage string, a Area, staged *object.Object) (*object.Object, error) {
	existing, hasExisting := ic.Store.FindByStableID(ic.FinalDir(a), staged.Kind, staged.StableID)
	stagedPath := staged.Path()

	if hasExisting && ic.Options.ConflictFor(staged.Kind) == Ignore {
		ic.Remap.Add(staged.ID, existing.ID)
		ic.Renames.Add(stagedPath, existing.Path())
		ic.Logger.Debug("kept existing asset",
			zap.String("stage", stage),
			zap.String("path", string(existing.Path())),
		)
		return existing, nil
	}

	// the fresh template must hold final identities so it can serve as the
	// next baseline
	ic.RewriteStaged(stage, staged)
	fresh := template.Capture(staged)

	var final *object.Object
	if hasExisting {
		applied := fresh
		if ic.Options.ConflictFor(staged.Kind) != Overwrite {
			applied = template.Diff(existing, fresh)
		}
		// the duplicate replaces the owned subobjects, so their current
		// state is read first
		previous := make(map[string]*object.Object)
		ic.snapshotSubobjects(existing, "", previous)
		dup, err := ic.Store.Duplicate(staged.ID, existing.Dir, existing.Name, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("publish %s over %s: %w", staged.Name, existing.Path(), err)
		}
		template.Apply(applied, dup, true)
		final = dup
		ic.migrateSubobjects(final, "", previous, ic.Options.ConflictFor(staged.Kind) == Overwrite)
	} else {
		if err := ic.Store.Move(staged.ID, ic.FinalDir(a), staged.Name); err != nil {
			return nil, fmt.Errorf("publish %s: %w", staged.Name, err)
		}
		final = staged
		ic.migrateSubobjects(final, "", nil, true)
	}
	template.Store(fresh, final)

	ic.Remap.Add(staged.ID, final.ID)
	ic.Renames.Add(stagedPath, final.Path())
	remap.RewriteReferences(ic.Store, final, ic.Remap)
	ic.CheckPersistence(stage, final.Name, final.Path())

	ic.Logger.Debug("published asset",
		zap.String("stage", stage),
		zap.String("element", final.StableID),
		zap.String("path", string(final.Path())),
		zap.Bool("reimport", hasExisting),
	)
	return final, nil
}

// subobjectKey identifies a subobject below its asset by the kinds and names
// along the ownership chain, the same way a duplicate matches them.
func subobjectKey(prefix string, o *object.Object) string {
	return prefix + string(o.Kind) + ":" + o.Name + "/"
}

// snapshotSubobjects copies the covered state of every subobject owned by o
// into out.
func (ic *Context) snapshotSubobjects(o *object.Object, prefix string, out map[string]*object.Object) {
	for _, sub := range object.Subobjects(ic.Store, o) {
		key := subobjectKey(prefix, sub)
		if _, seen := out[key]; seen {
			continue
		}
		out[key] = &object.Object{Kind: sub.Kind, Props: sub.Props.Clone(), Baseline: sub.Baseline.Clone()}
		ic.snapshotSubobjects(sub, key, out)
	}
}

// migrateSubobjects runs template migration on every subobject owned by o.
// Each subobject holds the staged values on entry. Where previous has the
// state it replaced, user edits are re-applied unless overwrite is set; the
// staged values become the next baseline either way.
func (ic *Context) migrateSubobjects(o *object.Object, prefix string, previous map[string]*object.Object, overwrite bool) {
	for _, sub := range object.Subobjects(ic.Store, o) {
		key := subobjectKey(prefix, sub)
		fresh := template.Capture(sub)
		if old, ok := previous[key]; ok && !overwrite {
			template.Apply(template.Diff(old, fresh), sub, true)
		}
		template.Store(fresh, sub)
		ic.migrateSubobjects(sub, key, previous, overwrite)
	}
}

// RewriteStaged rewrites the strong references of o through the remap table
// and warns about references still pointing into the staging namespace.
// Such a miss means a referenced kind was not finalized first.
func (ic *Context) RewriteStaged(stage string, o *object.Object) remap.Stats {
	st := remap.RewriteReferences(ic.Store, o, ic.Remap)
	for _, id := range st.Missed {
		if ic.IsStaged(id) {
			ic.Log.Warn(stage, o.Name, "reference to staged object %s has no published counterpart", id)
		}
	}
	return st
}

// Subset restricts a finalize pass to the listed stable IDs. An empty subset
// allows everything.
type Subset map[string]bool

// NewSubset builds a subset from stable IDs.
func NewSubset(ids ...string) Subset {
	s := make(Subset, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// Allows reports whether stableID takes part in the pass.
func (s Subset) Allows(stableID string) bool {
	return len(s) == 0 || s[stableID]
}

// FinalizeMap publishes every staged object of m allowed by valid, in
// insertion order. The cancellation signal is polled between items. after,
// when set, runs on each published object; an error from it is logged as a
// warning and does not undo the publish. Failed items are removed from m,
// published ones are remapped to their final object.
func (ic *Context) FinalizeMap(ctx context.Context, stage string, a Area, m *ElementMap, valid Subset, after func(staged, final *object.Object) error) []*object.Object {
	keys := m.Keys()
	ic.Reporter.Stage(stage, len(keys))

	var out []*object.Object
	for i, id := range keys {
		if ic.Cancelled(ctx) {
			ic.Log.Info(stage, "", "cancelled after %d of %d items", i, len(keys))
			break
		}
		staged, ok := m.Get(id)
		if !ok || !valid.Allows(id) {
			continue
		}
		ic.Attempted++
		payload := staged.Payload
		final, err := ic.FinalizeAsset(stage, a, staged)
		if err != nil {
			ic.Log.Error(stage, staged.Name, "%v", err)
			m.Delete(id)
			continue
		}
		if final.Payload == nil {
			final.Payload = payload
		}
		if after != nil {
			if err := after(staged, final); err != nil {
				ic.Log.Warn(stage, final.Name, "%v", err)
			}
		}
		if err := m.Set(id, final); err != nil {
			ic.Log.Error(stage, final.Name, "%v", err)
			continue
		}
		ic.Succeeded++
		out = append(out, final)
		ic.Reporter.Step(stage, final.Name, i+1, len(keys))
	}
	return out
}
