package typeenc

import (
	"fmt"

	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/vir"
)

// Descriptor is the reference output of encoding a type.
type Descriptor struct {
	Ty   mir.Ty
	Name string

	Snapshot     vir.Type
	RefToPred    vir.PredicateIdent
	RefToSnap    vir.FunctionIdent
	MethodAssign vir.MethodIdent

	// Exactly one of Prim and Struct is set.
	Prim   *PrimDescriptor
	Struct *StructDescriptor
}

// PrimDescriptor converts between snapshots and Int/Bool primitives.
type PrimDescriptor struct {
	Prim       vir.Type
	SnapToPrim vir.FunctionIdent
	PrimToSnap vir.FunctionIdent
}

// StructDescriptor describes a tuple or struct.
type StructDescriptor struct {
	Fields           []FieldDescriptor
	FieldSnapsToSnap vir.FunctionIdent
}

// FieldDescriptor describes one field of a tuple or struct.
type FieldDescriptor struct {
	Ty          mir.Ty
	ProjectionP vir.FunctionIdent
	Read        vir.FunctionIdent
}

// ExpectPrim returns the primitive part of d or an error naming the type.
func (d *Descriptor) ExpectPrim() (*PrimDescriptor, error) {
	if d.Prim == nil {
		return nil, fmt.Errorf("type %s is not primitive", d.Ty)
	}
	return d.Prim, nil
}

// ExpectStructlike returns the structured part of d or an error naming the
// type.
func (d *Descriptor) ExpectStructlike() (*StructDescriptor, error) {
	if d.Struct == nil {
		return nil, fmt.Errorf("type %s is not structlike", d.Ty)
	}
	return d.Struct, nil
}

// ExprFromBits encodes a discriminant value, given as the raw bits of a
// value of d's type, as a snapshot literal.
func (d *Descriptor) ExprFromBits(vcx *vir.Ctx, bits uint64) (vir.Expr, error) {
	prim, err := d.ExpectPrim()
	if err != nil {
		return nil, err
	}
	w := d.Ty.BitWidth()
	var lit vir.Expr
	switch d.Ty.Kind {
	case mir.TyBool:
		if bits > 1 {
			return nil, fmt.Errorf("value %d out of range for bool", bits)
		}
		lit = vcx.MkBool(bits == 1)
	case mir.TyUint:
		if w < 64 && bits>>uint(w) != 0 {
			return nil, fmt.Errorf("value %d out of range for %s", bits, d.Ty)
		}
		lit = vcx.MkUint(bits)
	case mir.TyInt:
		if w < 64 && bits>>uint(w) != 0 {
			return nil, fmt.Errorf("value %d out of range for %s", bits, d.Ty)
		}
		shift := uint(64 - w)
		lit = vcx.MkInt(int64(bits<<shift) >> shift)
	default:
		return nil, fmt.Errorf("type %s has no literals", d.Ty)
	}
	return prim.PrimToSnap.Apply(vcx, lit), nil
}
