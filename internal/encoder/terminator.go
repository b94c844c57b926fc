package encoder

import (
	"errors"

	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/vir"
)

func (p *procEncoder) encodeTerminator(loc mir.Location, t mir.Terminator) (vir.Terminator, error) {
	p.comment(t.String())
	if err := p.repacks(loc); err != nil {
		return nil, err
	}

	vcx := p.s.vcx
	switch t := t.(type) {
	case *mir.Goto:
		return p.jump(t.Target)
	case *mir.FalseUnwind:
		return p.jump(t.RealTarget)
	case *mir.Return:
		return vcx.MkGoto(vcx.MkLabel(vir.LabelEnd, 0)), nil
	case *mir.SwitchInt:
		return p.switchInt(t)
	case *mir.Call:
		return p.call(t)
	case *mir.Assert:
		return p.assert(t)
	default:
		return vcx.MkDummy("terminator " + t.String()), nil
	}
}

func (p *procEncoder) jump(bb mir.BasicBlock) (vir.Terminator, error) {
	l, err := p.label(bb)
	if err != nil {
		return nil, err
	}
	return p.s.vcx.MkGoto(l), nil
}

// switchInt compares the discriminant snapshot against each value in order.
func (p *procEncoder) switchInt(t *mir.SwitchInt) (vir.Terminator, error) {
	vcx := p.s.vcx
	ty, err := p.operandTy(t.Discr)
	if err != nil {
		return nil, err
	}
	d, err := p.s.types.Require(p.deps, ty)
	if err != nil {
		return nil, classify(err, "discriminant type")
	}
	targets := make([]vir.GotoIfTarget, len(t.Targets))
	for i, tgt := range t.Targets {
		v, err := d.ExprFromBits(vcx, tgt.Value)
		if err != nil {
			return nil, &Error{Class: ClassMalformed, Code: CodeMalformedType, Message: "switch value", Err: err}
		}
		l, err := p.label(tgt.Target)
		if err != nil {
			return nil, err
		}
		targets[i] = vir.GotoIfTarget{Value: v, Target: l}
	}
	otherwise, err := p.label(t.Otherwise)
	if err != nil {
		return nil, err
	}
	discr, _, err := p.operandSnap(t.Discr)
	if err != nil {
		return nil, err
	}
	return vcx.MkGotoIf(discr, targets, otherwise), nil
}

// call emits a call of the callee's method. Only the callee's signature is
// required, so calls into procedures still being encoded succeed.
func (p *procEncoder) call(t *mir.Call) (vir.Terminator, error) {
	vcx := p.s.vcx
	c, ok := t.Func.(*mir.Constant)
	if !ok || c.Value.Kind != mir.ConstFn {
		return nil, unsupported(CodeUnsupportedCallee, "callee %s is not a function definition", t.Func)
	}
	callee := mir.DefID(c.Value.Text)
	ref, err := p.s.methods.RequireRef(p.deps, callee)
	if err != nil {
		var inner *Error
		errors.As(classify(err, "signature of "+string(callee)), &inner)
		return nil, &Error{Class: inner.Class, Code: inner.Code, Message: "call to " + string(callee), Err: inner}
	}
	if len(t.Args) != ref.ArgCount {
		return nil, malformed(CodeMalformedCall, "call to %s passes %d arguments, expected %d", callee, len(t.Args), ref.ArgCount)
	}

	dest, _, err := p.projectPlace(t.Destination)
	if err != nil {
		return nil, err
	}
	args := make([]vir.Expr, 0, len(t.Args)+1)
	args = append(args, dest)
	for _, a := range t.Args {
		r, err := p.operandRef(a)
		if err != nil {
			return nil, err
		}
		args = append(args, r)
	}
	p.emit(ref.Method.Apply(vcx, args...))

	if t.Target == nil {
		return vcx.MkDummy("call without return target"), nil
	}
	return p.jump(*t.Target)
}

// assert exhales cond == expected and continues at the target, or at the
// cleanup block otherwise.
func (p *procEncoder) assert(t *mir.Assert) (vir.Terminator, error) {
	vcx := p.s.vcx
	if t.Unwind.Kind != mir.UnwindCleanup {
		return nil, unsupported(CodeUnsupportedUnwind, "assert with unwind action %s", t.Unwind)
	}
	target, err := p.label(t.Target)
	if err != nil {
		return nil, err
	}
	otherwise, err := p.label(t.Unwind.Block)
	if err != nil {
		return nil, err
	}

	snap, ty, err := p.operandSnap(t.Cond)
	if err != nil {
		return nil, err
	}
	if ty.Ty.Kind != mir.TyBool {
		return nil, malformed(CodeMalformedType, "assert condition of type %s", ty.Ty)
	}
	cond := ty.Prim.SnapToPrim.Apply(vcx, snap)
	expected := vcx.MkBool(t.Expected)
	p.emit(vcx.MkExhale(vcx.MkEq(cond, expected)))
	return vcx.MkGotoIf(cond, []vir.GotoIfTarget{{Value: expected, Target: target}}, otherwise), nil
}
