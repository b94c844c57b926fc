package encoder

import (
	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/vir"
)

// encodeStatement applies the repacks of loc and then encodes st.
// Lifetime markers only apply their repacks.
func (p *procEncoder) encodeStatement(loc mir.Location, st mir.Statement) error {
	switch st.(type) {
	case *mir.StorageLive, *mir.StorageDead:
		return p.repacks(loc)
	}

	p.comment(st.String())
	if err := p.repacks(loc); err != nil {
		return err
	}

	switch st := st.(type) {
	case *mir.Assign:
		return p.assign(loc, st)
	case *mir.FakeRead,
		*mir.Retag,
		*mir.PlaceMention,
		*mir.AscribeUserType,
		*mir.Coverage,
		*mir.ConstEvalCounter,
		*mir.Nop:
		return nil
	default:
		return unsupported(CodeUnsupportedStatement, "unsupported statement %s", mir.StatementKind(st))
	}
}

// assign stores the value of st's rvalue into its destination through the
// destination type's assignment method.
func (p *procEncoder) assign(loc mir.Location, st *mir.Assign) error {
	vcx := p.s.vcx
	dest, destTy, err := p.projectPlace(st.Place)
	if err != nil {
		return err
	}

	var val vir.Expr
	switch rv := st.Rvalue.(type) {
	case *mir.Use:
		val, _, err = p.operandSnap(rv.Operand)
	case *mir.BinaryOp:
		val, err = p.binaryOp(rv.Op, false, destTy.Ty, rv.LHS, rv.RHS)
	case *mir.CheckedBinaryOp:
		val, err = p.binaryOp(rv.Op, true, destTy.Ty, rv.LHS, rv.RHS)
	case *mir.UnaryOp:
		val, err = p.unaryOp(rv, destTy.Ty)
	case *mir.Aggregate:
		if rv.Kind != mir.AggregateTuple && rv.Kind != mir.AggregateAdt {
			val, err = p.placeholder(loc, rv)
			break
		}
		val, err = p.aggregate(rv, destTy.Ty)
	default:
		val, err = p.placeholder(loc, rv)
	}
	if err != nil {
		return err
	}

	p.emit(destTy.MethodAssign.Apply(vcx, dest, val))
	return nil
}

func (p *procEncoder) operandTy(op mir.Operand) (mir.Ty, error) {
	ty, err := p.body.OperandTy(op)
	if err != nil {
		return mir.Ty{}, &Error{Class: ClassMalformed, Code: CodeMalformedType, Message: "operand " + op.String(), Err: err}
	}
	return ty, nil
}

func (p *procEncoder) binaryOp(op mir.BinOp, checked bool, result mir.Ty, lhs, rhs mir.Operand) (vir.Expr, error) {
	lty, err := p.operandTy(lhs)
	if err != nil {
		return nil, err
	}
	rty, err := p.operandTy(rhs)
	if err != nil {
		return nil, err
	}
	resolve := p.s.ops.BinOp
	if checked {
		resolve = p.s.ops.CheckedBinOp
	}
	fn, err := resolve(p.deps, op, result, lty, rty)
	if err != nil {
		return nil, classify(err, "operator "+op.String())
	}
	l, _, err := p.operandSnap(lhs)
	if err != nil {
		return nil, err
	}
	r, _, err := p.operandSnap(rhs)
	if err != nil {
		return nil, err
	}
	return fn.Apply(p.s.vcx, l, r), nil
}

func (p *procEncoder) unaryOp(rv *mir.UnaryOp, result mir.Ty) (vir.Expr, error) {
	ty, err := p.operandTy(rv.Operand)
	if err != nil {
		return nil, err
	}
	fn, err := p.s.ops.UnOp(p.deps, rv.Op, result, ty)
	if err != nil {
		return nil, classify(err, "operator "+rv.Op.String())
	}
	v, _, err := p.operandSnap(rv.Operand)
	if err != nil {
		return nil, err
	}
	return fn.Apply(p.s.vcx, v), nil
}

// aggregate builds the destination snapshot from its field snapshots.
func (p *procEncoder) aggregate(rv *mir.Aggregate, dest mir.Ty) (vir.Expr, error) {
	d, err := p.s.types.Require(p.deps, dest)
	if err != nil {
		return nil, classify(err, "aggregate type")
	}
	sd, err := d.ExpectStructlike()
	if err != nil {
		return nil, &Error{Class: ClassMalformed, Code: CodeMalformedType, Message: "aggregate " + rv.String(), Err: err}
	}
	if rv.Kind == mir.AggregateAdt && (dest.Kind != mir.TyAdt || dest.Name != rv.Name) {
		return nil, malformed(CodeMalformedType, "aggregate %s assigned to %s", rv.Name, dest)
	}
	if rv.Kind == mir.AggregateTuple && dest.Kind != mir.TyTuple {
		return nil, malformed(CodeMalformedType, "tuple aggregate assigned to %s", dest)
	}
	if len(rv.Fields) != len(sd.Fields) {
		return nil, malformed(CodeMalformedType, "aggregate of %d fields assigned to %s", len(rv.Fields), dest)
	}
	args := make([]vir.Expr, len(rv.Fields))
	for i, f := range rv.Fields {
		args[i], _, err = p.operandSnap(f)
		if err != nil {
			return nil, err
		}
	}
	return sd.FieldSnapsToSnap.Apply(p.s.vcx, args...), nil
}

// placeholder stands in for an rvalue with no encoding, unless the session
// requires every rvalue to be encoded.
func (p *procEncoder) placeholder(loc mir.Location, rv mir.Rvalue) (vir.Expr, error) {
	if p.s.totalRvalues {
		return nil, unsupported(CodeUnsupportedRvalue, "unsupported rvalue %s", rv)
	}
	p.s.log.Error("unsupported rvalue",
		"def", p.proc.Def,
		"location", loc.String(),
		"rvalue", rv.String(),
	)
	return p.s.vcx.MkTodo("rvalue " + rv.String()), nil
}
