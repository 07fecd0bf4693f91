// Package template captures, diffs and applies the importer-controlled
// property subset of objects.
//
// A template holds one value per covered property of a kind, as described by
// the kind's object.Descriptor. After every import the fresh template is
// stored on the published object as its baseline; the next import compares
// the object's current values against that baseline to tell user edits apart
// from values the importer wrote.
package template

import (
	"scene-publisher/core/object"
)

// Scope selects the properties a template holds.
type Scope func(object.PropertyDescriptor) bool

var (
	// Covered selects every importer-controlled property.
	Covered Scope = func(p object.PropertyDescriptor) bool {
		return p.Has(object.Covered)
	}
	// Editable selects the covered properties exposed for editing, leaving
	// out owning references and transient state. Actors use it; the rest of
	// their properties go through a bulk copy.
	Editable Scope = func(p object.PropertyDescriptor) bool {
		return p.Has(object.Covered|object.Editable) && !p.Has(object.Owning) && !p.Has(object.Transient)
	}
)

// Template is a standalone snapshot of an object's covered properties.
// Absent properties are recorded by omission.
type Template struct {
	Kind   object.Kind
	Values object.Props
	// Scope defaults to Covered.
	Scope Scope
}

func (t *Template) scope() Scope {
	if t.Scope == nil {
		return Covered
	}
	return t.Scope
}

// Capture reads the covered properties of o.
func Capture(o *object.Object) *Template {
	return CaptureScope(o, Covered)
}

// CaptureScope reads the properties of o selected by scope.
func CaptureScope(o *object.Object, scope Scope) *Template {
	t := &Template{Kind: o.Kind, Values: make(object.Props), Scope: scope}
	for _, f := range object.Describe(o.Kind).Fields(scope, o) {
		if v, ok := f.Get(o); ok && !v.IsZero() {
			t.Values[f.Name] = v.Clone()
		}
	}
	return t
}

// Baseline returns the template stored by the previous import, or nil when o
// was never published with one.
func Baseline(o *object.Object) *Template {
	if o.Baseline == nil {
		return nil
	}
	return &Template{Kind: o.Kind, Values: o.Baseline.Clone()}
}

// Store records t as the diff baseline of o for the next import.
func Store(t *Template, o *object.Object) {
	o.Baseline = t.Values.Clone()
	if o.Baseline == nil {
		o.Baseline = make(object.Props)
	}
}

// Equal compares two templates structurally.
func (t *Template) Equal(o *Template) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.Kind == o.Kind && t.Values.Equal(o.Values)
}

// Get returns the value recorded for name.
func (t *Template) Get(name string) (object.Value, bool) {
	v, ok := t.Values[name]
	return v, ok
}

// Diff computes the template to re-apply on existing after it is overwritten
// with fresh content. For each covered property, a current value that
// departs from the stored baseline is a user edit and is kept; any other
// property takes the fresh value. Without a baseline every property comes
// from fresh.
func Diff(existing *object.Object, fresh *Template) *Template {
	out := &Template{Kind: fresh.Kind, Values: make(object.Props), Scope: fresh.Scope}
	base := existing.Baseline
	for _, f := range fields(fresh.Kind, fresh.scope(), fresh.Values, existing.Props, base) {
		want := fresh.Values[f.Name]
		if base != nil {
			cur := existing.Props[f.Name]
			if !cur.Equal(base[f.Name]) {
				want = cur
			}
		}
		if !want.IsZero() {
			out.Values[f.Name] = want.Clone()
		}
	}
	return out
}

// Apply writes the template onto target. Without force, a property is only
// written when the target still holds its baseline value, so user edits
// survive.
func Apply(t *Template, target *object.Object, force bool) {
	base := target.Baseline
	for _, f := range fields(t.Kind, t.scope(), t.Values, target.Props) {
		if !force && base != nil {
			cur := target.Props[f.Name]
			if !cur.Equal(base[f.Name]) {
				continue
			}
		}
		f.Set(target, t.Values[f.Name])
	}
}

// Changes lists the covered properties whose value differs between a and b.
func Changes(a, b *Template) []string {
	var out []string
	for _, f := range fields(a.Kind, a.scope(), a.Values, b.Values) {
		if !a.Values[f.Name].Equal(b.Values[f.Name]) {
			out = append(out, f.Name)
		}
	}
	return out
}

func fields(kind object.Kind, scope Scope, bags ...object.Props) []object.Field {
	objs := make([]*object.Object, 0, len(bags))
	for _, b := range bags {
		objs = append(objs, &object.Object{Kind: kind, Props: b})
	}
	return object.Describe(kind).Fields(scope, objs...)
}
