package encoder

import (
	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/typeenc"
	"github.com/xldenis/prusti-dev/internal/vir"
)

// operandSnap encodes op as a snapshot. A move reads the place into a fresh
// temporary and then gives up the place's predicate.
func (p *procEncoder) operandSnap(op mir.Operand) (vir.Expr, *typeenc.Descriptor, error) {
	vcx := p.s.vcx
	switch op := op.(type) {
	case *mir.Move:
		ref, ty, err := p.projectPlace(op.Place)
		if err != nil {
			return nil, nil, err
		}
		tmp := p.newTmp(ty.Snapshot)
		p.emit(vcx.MkPureAssign(tmp, ty.RefToSnap.Apply(vcx, ref)))
		p.emit(vcx.MkExhale(ty.RefToPred.Apply(vcx, ref)))
		return tmp, ty, nil
	case *mir.Copy:
		ref, ty, err := p.projectPlace(op.Place)
		if err != nil {
			return nil, nil, err
		}
		return ty.RefToSnap.Apply(vcx, ref), ty, nil
	case *mir.Constant:
		return p.constant(op)
	default:
		return nil, nil, malformed(CodeMalformedType, "unrecognised operand %T", op)
	}
}

// operandRef encodes op as a reference. A move reuses the place itself;
// copies and constants are stored into a fresh reference.
func (p *procEncoder) operandRef(op mir.Operand) (vir.Expr, error) {
	if mv, ok := op.(*mir.Move); ok {
		ref, _, err := p.projectPlace(mv.Place)
		return ref, err
	}
	snap, ty, err := p.operandSnap(op)
	if err != nil {
		return nil, err
	}
	tmp := p.newTmp(vir.TypeRef)
	p.emit(ty.MethodAssign.Apply(p.s.vcx, tmp, snap))
	return tmp, nil
}

func (p *procEncoder) constant(c *mir.Constant) (vir.Expr, *typeenc.Descriptor, error) {
	switch c.Value.Kind {
	case mir.ConstUnit, mir.ConstBool, mir.ConstInt, mir.ConstUint:
	default:
		return nil, nil, unsupported(CodeUnsupportedConstant, "%s literal %s", c.Value.Kind, c)
	}
	ty, err := p.s.types.Require(p.deps, c.Ty)
	if err != nil {
		return nil, nil, classify(err, "constant type")
	}
	mismatch := malformed(CodeMalformedType, "%s literal of type %s", c.Value.Kind, c.Ty)

	vcx := p.s.vcx
	switch c.Value.Kind {
	case mir.ConstUnit:
		if !c.Ty.IsUnit() {
			return nil, nil, mismatch
		}
		return ty.Struct.FieldSnapsToSnap.Apply(vcx), ty, nil
	case mir.ConstBool:
		if c.Ty.Kind != mir.TyBool {
			return nil, nil, mismatch
		}
		return ty.Prim.PrimToSnap.Apply(vcx, vcx.MkBool(c.Value.Bool)), ty, nil
	case mir.ConstInt:
		if c.Ty.Kind != mir.TyInt {
			return nil, nil, mismatch
		}
		return ty.Prim.PrimToSnap.Apply(vcx, vcx.MkInt(c.Value.Int)), ty, nil
	default:
		if c.Ty.Kind != mir.TyUint {
			return nil, nil, mismatch
		}
		return ty.Prim.PrimToSnap.Apply(vcx, vcx.MkUint(c.Value.Uint)), ty, nil
	}
}
