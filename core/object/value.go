package object

import (
	"fmt"
	"math"
	"slices"
)

// ValueType identifies the concrete type held by a Value.
type ValueType uint8

const (
	TypeNone ValueType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeVector
	TypeStrings
	TypeRef
)

// String returns the lowercase name of the type.
func (t ValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeVector:
		return "vector"
	case TypeStrings:
		return "strings"
	case TypeRef:
		return "ref"
	default:
		return "none"
	}
}

// RefKind distinguishes the three reference flavours.
type RefKind uint8

const (
	// Strong is a hard pointer that participates in eager remapping.
	Strong RefKind = iota + 1
	// Weak is an observational pointer, never remapped.
	Weak
	// Soft is a path based reference, rewritten by the soft sweep.
	Soft
)

func (k RefKind) String() string {
	switch k {
	case Strong:
		return "strong"
	case Weak:
		return "weak"
	case Soft:
		return "soft"
	default:
		return "invalid"
	}
}

// Ref is a reference to another object.
// Strong and Weak refs use Target; Soft refs use Path.
type Ref struct {
	Kind   RefKind `json:"kind"`
	Target ID      `json:"target,omitempty"`
	Path   Path    `json:"path,omitempty"`
}

// StrongRef returns a strong reference to id.
func StrongRef(id ID) Ref { return Ref{Kind: Strong, Target: id} }

// WeakRef returns a weak reference to id.
func WeakRef(id ID) Ref { return Ref{Kind: Weak, Target: id} }

// SoftRef returns a soft reference to path.
func SoftRef(p Path) Ref { return Ref{Kind: Soft, Path: p} }

// IsZero reports whether r references nothing.
func (r Ref) IsZero() bool {
	return r.Target == "" && r.Path == ""
}

// Value is a tagged union holding one property value.
type Value struct {
	Type  ValueType `json:"t"`
	Bool  bool      `json:"b,omitempty"`
	Int   int64     `json:"i,omitempty"`
	Float float64   `json:"f,omitempty"`
	Str   string    `json:"s,omitempty"`
	Vec   []float64 `json:"v,omitempty"`
	List  []string  `json:"l,omitempty"`
	Ref   Ref       `json:"r,omitempty"`
}

func Bool(b bool) Value { return Value{Type: TypeBool, Bool: b} }
func Int(i int64) Value { return Value{Type: TypeInt, Int: i} }
func Float(f float64) Value { return Value{Type: TypeFloat, Float: f} }
func String(s string) Value { return Value{Type: TypeString, Str: s} }
func Vector(v ...float64) Value { return Value{Type: TypeVector, Vec: slices.Clone(v)} }
func Strings(l ...string) Value { return Value{Type: TypeStrings, List: slices.Clone(l)} }
func Reference(r Ref) Value { return Value{Type: TypeRef, Ref: r} }
func StrongValue(id ID) Value { return Reference(StrongRef(id)) }
func SoftValue(p Path) Value { return Reference(SoftRef(p)) }

// IsZero reports whether v holds no value.
func (v Value) IsZero() bool { return v.Type == TypeNone }

// Equal compares two values structurally. Floats compare with a small
// tolerance so that values surviving a JSON round trip stay equal.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeNone:
		return true
	case TypeBool:
		return v.Bool == o.Bool
	case TypeInt:
		return v.Int == o.Int
	case TypeFloat:
		return floatEqual(v.Float, o.Float)
	case TypeString:
		return v.Str == o.Str
	case TypeVector:
		return slices.EqualFunc(v.Vec, o.Vec, floatEqual)
	case TypeStrings:
		return slices.Equal(v.List, o.List)
	case TypeRef:
		return v.Ref == o.Ref
	}
	return false
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	c := v
	c.Vec = slices.Clone(v.Vec)
	c.List = slices.Clone(v.List)
	return c
}

func (v Value) String() string {
	switch v.Type {
	case TypeBool:
		return fmt.Sprintf("%t", v.Bool)
	case TypeInt:
		return fmt.Sprintf("%d", v.Int)
	case TypeFloat:
		return fmt.Sprintf("%g", v.Float)
	case TypeString:
		return v.Str
	case TypeVector:
		return fmt.Sprintf("%v", v.Vec)
	case TypeStrings:
		return fmt.Sprintf("%v", v.List)
	case TypeRef:
		if v.Ref.Kind == Soft {
			return fmt.Sprintf("%s(%s)", v.Ref.Kind, v.Ref.Path)
		}
		return fmt.Sprintf("%s(%s)", v.Ref.Kind, v.Ref.Target)
	}
	return "<none>"
}

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// Props is an object's property bag keyed by property name.
type Props map[string]Value

// Clone returns a deep copy of p.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	c := make(Props, len(p))
	for k, v := range p {
		c[k] = v.Clone()
	}
	return c
}

// Equal compares two property bags structurally.
func (p Props) Equal(o Props) bool {
	if len(p) != len(o) {
		return false
	}
	for k, v := range p {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
