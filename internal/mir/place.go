package mir

import (
	"fmt"
	"strings"
)

// Local identifies a local variable of a body. Local 0 is the return place,
// locals 1..=ArgCount are the arguments.
type Local int

// ReturnPlace is the local holding a procedure's result.
const ReturnPlace Local = 0

// String returns the debug name, e.g. "_3".
func (l Local) String() string { return fmt.Sprintf("_%d", int(l)) }

// ProjectionKind discriminates projection steps.
type ProjectionKind int

const (
	ProjField ProjectionKind = iota
	ProjDeref
	ProjIndex
	ProjDowncast
)

// String returns the kind name.
func (k ProjectionKind) String() string {
	switch k {
	case ProjField:
		return "field"
	case ProjDeref:
		return "deref"
	case ProjIndex:
		return "index"
	case ProjDowncast:
		return "downcast"
	default:
		return fmt.Sprintf("ProjectionKind(%d)", int(k))
	}
}

// ProjectionElem is one step of a place's projection path.
type ProjectionElem struct {
	Kind ProjectionKind

	// Field is the field index of a ProjField step.
	Field int

	// Ty is the declared type of the field selected by a ProjField step.
	Ty Ty

	// Index is the index local of a ProjIndex step.
	Index Local

	// Variant is the variant index of a ProjDowncast step.
	Variant int
}

// Place is a storage location: a base local and a projection path.
type Place struct {
	Local      Local
	Projection []ProjectionElem
}

// PlaceOf returns the place denoting the whole of local l.
func PlaceOf(l Local) Place { return Place{Local: l} }

// Field returns the place of field i (declared type ty) of p. The receiver's
// projection slice is never shared with the result.
func (p Place) Field(i int, ty Ty) Place {
	proj := make([]ProjectionElem, len(p.Projection), len(p.Projection)+1)
	copy(proj, p.Projection)
	proj = append(proj, ProjectionElem{Kind: ProjField, Field: i, Ty: ty})
	return Place{Local: p.Local, Projection: proj}
}

// Deref returns the place *p.
func (p Place) Deref() Place {
	proj := make([]ProjectionElem, len(p.Projection), len(p.Projection)+1)
	copy(proj, p.Projection)
	proj = append(proj, ProjectionElem{Kind: ProjDeref})
	return Place{Local: p.Local, Projection: proj}
}

// IsLocal reports whether p has no projection.
func (p Place) IsLocal() bool { return len(p.Projection) == 0 }

// String renders the debug form: "_1", "_1.0", "(*_2).1", "_3[_4]".
func (p Place) String() string {
	s := p.Local.String()
	for _, elem := range p.Projection {
		switch elem.Kind {
		case ProjField:
			s = fmt.Sprintf("%s.%d", s, elem.Field)
		case ProjDeref:
			s = "(*" + s + ")"
		case ProjIndex:
			s = fmt.Sprintf("%s[%s]", s, elem.Index)
		case ProjDowncast:
			s = fmt.Sprintf("(%s as variant#%d)", s, elem.Variant)
		}
	}
	return s
}

// Equal reports whether p and o denote the same location.
func (p Place) Equal(o Place) bool {
	if p.Local != o.Local || len(p.Projection) != len(o.Projection) {
		return false
	}
	for i := range p.Projection {
		a, b := p.Projection[i], o.Projection[i]
		if a.Kind != b.Kind || a.Field != b.Field || a.Index != b.Index || a.Variant != b.Variant {
			return false
		}
	}
	return true
}

func joinOperands(ops []Operand) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, ", ")
}
