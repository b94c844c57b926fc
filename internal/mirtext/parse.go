package mirtext

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/xldenis/prusti-dev/internal/fpcs"
	"github.com/xldenis/prusti-dev/internal/mir"
)

// Context resolves the names a textual form refers to. The zero value
// knows no struct types and no locals.
type Context struct {
	// Types maps struct names to their types.
	Types map[string]mir.Ty

	// Locals holds the declared type of each local, indexed by local number.
	Locals []mir.Ty
}

// ParseType parses a type such as "i32", "(bool, u8)", "Point" or "fn inc".
func (c *Context) ParseType(src string) (mir.Ty, error) {
	expr, err := typeParser.ParseString("", src)
	if err != nil {
		return mir.Ty{}, syntaxError(src, err)
	}
	return c.resolver(src).typ(expr)
}

// ParsePlace parses a place such as "_1.0" or "(*_2).1".
func (c *Context) ParsePlace(src string) (mir.Place, error) {
	expr, err := placeParser.ParseString("", src)
	if err != nil {
		return mir.Place{}, syntaxError(src, err)
	}
	return c.resolver(src).place(expr)
}

// ParseStatement parses one statement.
func (c *Context) ParseStatement(src string) (mir.Statement, error) {
	expr, err := statementParser.ParseString("", src)
	if err != nil {
		return nil, syntaxError(src, err)
	}
	return c.resolver(src).statement(expr)
}

// ParseTerminator parses one terminator.
func (c *Context) ParseTerminator(src string) (mir.Terminator, error) {
	expr, err := terminatorParser.ParseString("", src)
	if err != nil {
		return nil, syntaxError(src, err)
	}
	return c.resolver(src).terminator(expr)
}

// ParseRepack parses one repack operation. Capability invariants are not
// checked here; see fpcs.RepackOp.Validate.
func (c *Context) ParseRepack(src string) (fpcs.RepackOp, error) {
	expr, err := repackParser.ParseString("", src)
	if err != nil {
		return fpcs.RepackOp{}, syntaxError(src, err)
	}
	r := c.resolver(src)
	place, err := r.place(expr.Place)
	if err != nil {
		return fpcs.RepackOp{}, err
	}
	caps := make([]fpcs.CapabilityKind, len(expr.Caps))
	for i, name := range expr.Caps {
		if caps[i], err = fpcs.ParseCapability(name); err != nil {
			return fpcs.RepackOp{}, errorf(src, expr.Pos, "%v", err)
		}
	}
	want := 1
	if expr.Kind == "weaken" {
		want = 2
	}
	if len(caps) != want {
		return fpcs.RepackOp{}, errorf(src, expr.Pos, "%s takes %d capabilities, got %d", expr.Kind, want, len(caps))
	}
	switch expr.Kind {
	case "expand":
		return fpcs.ExpandOp(place, caps[0]), nil
	case "collapse":
		return fpcs.CollapseOp(place, caps[0]), nil
	default:
		return fpcs.WeakenOp(place, caps[0], caps[1]), nil
	}
}

type resolver struct {
	*Context
	src string
}

func (c *Context) resolver(src string) resolver { return resolver{Context: c, src: src} }

func (r resolver) typ(e *TypeExpr) (mir.Ty, error) {
	switch {
	case e.Tuple != nil:
		elems := make([]mir.Ty, len(e.Tuple.Elems))
		for i, el := range e.Tuple.Elems {
			ty, err := r.typ(el)
			if err != nil {
				return mir.Ty{}, err
			}
			elems[i] = ty
		}
		return mir.Tuple(elems...), nil
	case e.Fn != nil:
		return mir.FnDef(e.Fn.def()), nil
	case e.Never:
		return mir.Ty{Kind: mir.TyNever}, nil
	}
	if ty, ok := mir.ParsePrimitive(e.Name); ok {
		return ty, nil
	}
	if ty, ok := r.Types[e.Name]; ok {
		return ty, nil
	}
	return mir.Ty{}, errorf(r.src, e.Pos, "unknown type %q", e.Name)
}

func (p *PathExpr) def() mir.DefID { return mir.DefID(strings.Join(p.Segments, "::")) }

func (r resolver) local(pos lexer.Position, name string) (mir.Local, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(name, "_"))
	if err != nil {
		return 0, errorf(r.src, pos, "bad local %q", name)
	}
	return mir.Local(n), nil
}

func (r resolver) block(pos lexer.Position, name string) (mir.BasicBlock, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(name, "bb"))
	if err != nil {
		return 0, errorf(r.src, pos, "bad block %q", name)
	}
	return mir.BasicBlock(n), nil
}

func (r resolver) place(e *PlaceExpr) (mir.Place, error) {
	var (
		p   mir.Place
		err error
	)
	switch {
	case e.Paren != nil && e.Paren.Deref != nil:
		if p, err = r.place(e.Paren.Deref); err != nil {
			return mir.Place{}, err
		}
		p = p.Deref()
	case e.Paren != nil:
		if p, err = r.place(e.Paren.Downcast.Base); err != nil {
			return mir.Place{}, err
		}
		v, err := strconv.Atoi(e.Paren.Downcast.Variant)
		if err != nil {
			return mir.Place{}, errorf(r.src, e.Pos, "bad variant %q", e.Paren.Downcast.Variant)
		}
		p = extend(p, mir.ProjectionElem{Kind: mir.ProjDowncast, Variant: v})
	default:
		l, err := r.local(e.Pos, e.Local)
		if err != nil {
			return mir.Place{}, err
		}
		p = mir.PlaceOf(l)
	}
	for _, proj := range e.Projs {
		if proj.Index != "" {
			idx, err := r.local(proj.Pos, proj.Index)
			if err != nil {
				return mir.Place{}, err
			}
			p = extend(p, mir.ProjectionElem{Kind: mir.ProjIndex, Index: idx})
			continue
		}
		i, err := strconv.Atoi(proj.Field)
		if err != nil {
			return mir.Place{}, errorf(r.src, proj.Pos, "bad field %q", proj.Field)
		}
		ty, err := r.fieldTy(proj.Pos, p, i)
		if err != nil {
			return mir.Place{}, err
		}
		p = p.Field(i, ty)
	}
	return p, nil
}

// fieldTy returns the type of field i of p. Fields of places whose type is
// unknown (behind a dereference, index or downcast) are left untyped.
func (r resolver) fieldTy(pos lexer.Position, p mir.Place, i int) (mir.Ty, error) {
	if int(p.Local) >= len(r.Locals) {
		return mir.Ty{}, errorf(r.src, pos, "unknown local %s", p.Local)
	}
	base := r.Locals[p.Local]
	for _, elem := range p.Projection {
		if elem.Kind != mir.ProjField {
			return mir.Ty{}, nil
		}
		base = elem.Ty
	}
	if !base.IsStructlike() {
		return mir.Ty{}, errorf(r.src, pos, "%s of type %s has no fields", p, base)
	}
	ty, ok := base.Field(i)
	if !ok {
		return mir.Ty{}, errorf(r.src, pos, "field %d out of range for %s", i, base)
	}
	return ty, nil
}

func extend(p mir.Place, elem mir.ProjectionElem) mir.Place {
	proj := make([]mir.ProjectionElem, len(p.Projection), len(p.Projection)+1)
	copy(proj, p.Projection)
	return mir.Place{Local: p.Local, Projection: append(proj, elem)}
}

func (r resolver) operand(e *OperandExpr) (mir.Operand, error) {
	switch {
	case e.Move != nil:
		p, err := r.place(e.Move)
		if err != nil {
			return nil, err
		}
		return &mir.Move{Place: p}, nil
	case e.Copy != nil:
		p, err := r.place(e.Copy)
		if err != nil {
			return nil, err
		}
		return &mir.Copy{Place: p}, nil
	}
	return r.constant(e.Const)
}

func (r resolver) constant(e *ConstExpr) (*mir.Constant, error) {
	switch {
	case e.Unit:
		return mir.UnitConst(), nil
	case e.Bool != "":
		return mir.BoolConst(e.Bool == "true"), nil
	case e.Fn != nil:
		return mir.FnConst(e.Fn.def()), nil
	case e.Str != "":
		s, err := strconv.Unquote(e.Str)
		if err != nil {
			return nil, errorf(r.src, e.Pos, "bad string literal %s", e.Str)
		}
		return &mir.Constant{Ty: mir.Ty{Kind: mir.TyStr}, Value: mir.ConstValue{Kind: mir.ConstStr, Text: s}}, nil
	case e.Float != "":
		i := strings.LastIndexByte(e.Float, '_')
		ty, _ := mir.ParsePrimitive(e.Float[i+1:])
		return &mir.Constant{Ty: ty, Value: mir.ConstValue{Kind: mir.ConstFloat, Text: e.Float[:i]}}, nil
	}
	return r.integer(e.Int)
}

func (r resolver) integer(e *IntExpr) (*mir.Constant, error) {
	suffix := strings.TrimPrefix(e.Suffix, "_")
	ty, ok := mir.ParsePrimitive(suffix)
	if !ok || (ty.Kind != mir.TyInt && ty.Kind != mir.TyUint) {
		return nil, errorf(r.src, e.Pos, "bad integer suffix %q", e.Suffix)
	}
	if ty.Kind == mir.TyUint {
		if e.Neg {
			return nil, errorf(r.src, e.Pos, "negative %s literal", ty)
		}
		v, err := strconv.ParseUint(e.Value, 10, min(ty.BitWidth(), 64))
		if err != nil {
			return nil, errorf(r.src, e.Pos, "%s literal out of range: %s", ty, e.Value)
		}
		return mir.UintConst(v, ty), nil
	}
	text := e.Value
	if e.Neg {
		text = "-" + text
	}
	v, err := strconv.ParseInt(text, 10, min(ty.BitWidth(), 64))
	if err != nil {
		return nil, errorf(r.src, e.Pos, "%s literal out of range: %s", ty, text)
	}
	return mir.IntConst(v, ty), nil
}

func (r resolver) operands(es []*OperandExpr) ([]mir.Operand, error) {
	ops := make([]mir.Operand, len(es))
	for i, e := range es {
		op, err := r.operand(e)
		if err != nil {
			return nil, err
		}
		ops[i] = op
	}
	return ops, nil
}

func (r resolver) rvalue(e *RvalueExpr) (mir.Rvalue, error) {
	switch {
	case e.Use != nil:
		return r.use(e.Use)
	case e.Ref != nil:
		p, err := r.place(e.Ref.Place)
		if err != nil {
			return nil, err
		}
		return &mir.Ref{Place: p, Mutable: e.Ref.Mutable}, nil
	case e.Apply != nil:
		return r.apply(e.Apply)
	case e.Adt != nil:
		fields, err := r.operands(e.Adt.Fields)
		if err != nil {
			return nil, err
		}
		return &mir.Aggregate{Kind: mir.AggregateAdt, Name: e.Adt.Name, Fields: fields}, nil
	case e.Array != nil:
		elems, err := r.operands(e.Array.Elems)
		if err != nil {
			return nil, err
		}
		return &mir.Aggregate{Kind: mir.AggregateArray, Fields: elems}, nil
	case e.Tuple != nil:
		fields, err := r.operands(e.Tuple.Fields)
		if err != nil {
			return nil, err
		}
		return &mir.Aggregate{Kind: mir.AggregateTuple, Fields: fields}, nil
	}
	return nil, errorf(r.src, lexer.Position{}, "empty rvalue")
}

func (r resolver) use(e *UseExpr) (mir.Rvalue, error) {
	op, err := r.operand(e.Operand)
	if err != nil {
		return nil, err
	}
	if e.Cast == nil {
		return &mir.Use{Operand: op}, nil
	}
	ty, err := r.typ(e.Cast)
	if err != nil {
		return nil, err
	}
	return &mir.Cast{Operand: op, Ty: ty}, nil
}

func (r resolver) apply(e *ApplyExpr) (mir.Rvalue, error) {
	switch e.Name {
	case "Len", "discriminant":
		if len(e.Args) != 1 || e.Args[0].Place == nil {
			return nil, errorf(r.src, e.Pos, "%s takes one place", e.Name)
		}
		p, err := r.place(e.Args[0].Place)
		if err != nil {
			return nil, err
		}
		if e.Name == "Len" {
			return &mir.Len{Place: p}, nil
		}
		return &mir.Discriminant{Place: p}, nil
	}

	ops := make([]mir.Operand, len(e.Args))
	for i, arg := range e.Args {
		if arg.Operand == nil {
			return nil, errorf(r.src, e.Pos, "%s takes operands", e.Name)
		}
		op, err := r.operand(arg.Operand)
		if err != nil {
			return nil, err
		}
		ops[i] = op
	}
	if e.Name == "closure" {
		return &mir.Aggregate{Kind: mir.AggregateClosure, Fields: ops}, nil
	}
	if op, ok := mir.ParseUnOp(e.Name); ok {
		if len(ops) != 1 {
			return nil, errorf(r.src, e.Pos, "%s takes one operand, got %d", e.Name, len(ops))
		}
		return &mir.UnaryOp{Op: op, Operand: ops[0]}, nil
	}
	name, checked := strings.CutPrefix(e.Name, "Checked")
	op, ok := mir.ParseBinOp(name)
	if !ok {
		return nil, errorf(r.src, e.Pos, "unknown operator %q", e.Name)
	}
	if len(ops) != 2 {
		return nil, errorf(r.src, e.Pos, "%s takes two operands, got %d", e.Name, len(ops))
	}
	if checked {
		return &mir.CheckedBinaryOp{Op: op, LHS: ops[0], RHS: ops[1]}, nil
	}
	return &mir.BinaryOp{Op: op, LHS: ops[0], RHS: ops[1]}, nil
}

func (r resolver) statement(e *StatementExpr) (mir.Statement, error) {
	placeStmt := func(pe *PlaceExpr, build func(mir.Place) mir.Statement) (mir.Statement, error) {
		p, err := r.place(pe)
		if err != nil {
			return nil, err
		}
		return build(p), nil
	}
	switch {
	case e.StorageLive != "":
		l, err := r.local(e.Pos, e.StorageLive)
		if err != nil {
			return nil, err
		}
		return &mir.StorageLive{Local: l}, nil
	case e.StorageDead != "":
		l, err := r.local(e.Pos, e.StorageDead)
		if err != nil {
			return nil, err
		}
		return &mir.StorageDead{Local: l}, nil
	case e.FakeRead != nil:
		return placeStmt(e.FakeRead, func(p mir.Place) mir.Statement { return &mir.FakeRead{Place: p} })
	case e.Retag != nil:
		return placeStmt(e.Retag, func(p mir.Place) mir.Statement { return &mir.Retag{Place: p} })
	case e.PlaceMention != nil:
		return placeStmt(e.PlaceMention, func(p mir.Place) mir.Statement { return &mir.PlaceMention{Place: p} })
	case e.AscribeUserType != nil:
		return placeStmt(e.AscribeUserType, func(p mir.Place) mir.Statement { return &mir.AscribeUserType{Place: p} })
	case e.Deinit != nil:
		return placeStmt(e.Deinit, func(p mir.Place) mir.Statement { return &mir.Deinit{Place: p} })
	case e.SetDiscriminant != nil:
		v, err := strconv.Atoi(e.SetDiscriminant.Variant)
		if err != nil {
			return nil, errorf(r.src, e.Pos, "bad variant %q", e.SetDiscriminant.Variant)
		}
		return placeStmt(e.SetDiscriminant.Place, func(p mir.Place) mir.Statement {
			return &mir.SetDiscriminant{Place: p, Variant: v}
		})
	case e.Intrinsic != "":
		return &mir.Intrinsic{Name: e.Intrinsic}, nil
	case e.Coverage:
		return &mir.Coverage{}, nil
	case e.ConstEvalCounter:
		return &mir.ConstEvalCounter{}, nil
	case e.Nop:
		return &mir.Nop{}, nil
	}
	p, err := r.place(e.Assign.Place)
	if err != nil {
		return nil, err
	}
	rv, err := r.rvalue(e.Assign.Rvalue)
	if err != nil {
		return nil, err
	}
	return &mir.Assign{Place: p, Rvalue: rv}, nil
}

func (r resolver) unwind(pos lexer.Position, e *UnwindExpr) (mir.UnwindAction, error) {
	if e == nil {
		return mir.UnwindAction{}, nil
	}
	switch e.Action {
	case "continue":
		return mir.UnwindAction{Kind: mir.UnwindContinue}, nil
	case "unreachable":
		return mir.UnwindAction{Kind: mir.UnwindUnreachable}, nil
	case "terminate":
		return mir.UnwindAction{Kind: mir.UnwindTerminate}, nil
	}
	bb, err := r.block(pos, e.Action)
	if err != nil {
		return mir.UnwindAction{}, err
	}
	return mir.Cleanup(bb), nil
}

func (r resolver) terminator(e *TerminatorExpr) (mir.Terminator, error) {
	switch {
	case e.Goto != "":
		bb, err := r.block(e.Pos, e.Goto)
		if err != nil {
			return nil, err
		}
		return &mir.Goto{Target: bb}, nil
	case e.Switch != nil:
		return r.switchInt(e.Pos, e.Switch)
	case e.Return:
		return &mir.Return{}, nil
	case e.Unreachable:
		return &mir.Unreachable{}, nil
	case e.Resume:
		return &mir.UnwindResume{}, nil
	case e.Assert != nil:
		cond, err := r.operand(e.Assert.Cond)
		if err != nil {
			return nil, err
		}
		target, err := r.block(e.Pos, e.Assert.Target)
		if err != nil {
			return nil, err
		}
		unwind, err := r.unwind(e.Pos, e.Assert.Unwind)
		if err != nil {
			return nil, err
		}
		return &mir.Assert{Cond: cond, Expected: !e.Assert.Negated, Target: target, Unwind: unwind}, nil
	case e.FalseUnwind != nil:
		target, err := r.block(e.Pos, e.FalseUnwind.Target)
		if err != nil {
			return nil, err
		}
		unwind, err := r.unwind(e.Pos, e.FalseUnwind.Unwind)
		if err != nil {
			return nil, err
		}
		return &mir.FalseUnwind{RealTarget: target, Unwind: unwind}, nil
	case e.FalseEdge != nil:
		target, err := r.block(e.Pos, e.FalseEdge.Real)
		if err != nil {
			return nil, err
		}
		imaginary, err := r.block(e.Pos, e.FalseEdge.Imaginary)
		if err != nil {
			return nil, err
		}
		return &mir.FalseEdge{RealTarget: target, ImaginaryTarget: imaginary}, nil
	case e.Drop != nil:
		p, err := r.place(e.Drop.Place)
		if err != nil {
			return nil, err
		}
		target, err := r.block(e.Pos, e.Drop.Target)
		if err != nil {
			return nil, err
		}
		unwind, err := r.unwind(e.Pos, e.Drop.Unwind)
		if err != nil {
			return nil, err
		}
		return &mir.Drop{Place: p, Target: target, Unwind: unwind}, nil
	}
	return r.call(e.Pos, e.Call)
}

func (r resolver) switchInt(pos lexer.Position, e *SwitchExpr) (mir.Terminator, error) {
	discr, err := r.operand(e.Discr)
	if err != nil {
		return nil, err
	}
	t := &mir.SwitchInt{Discr: discr}
	for _, tgt := range e.Targets {
		v, err := strconv.ParseUint(tgt.Value, 10, 64)
		if err != nil {
			return nil, errorf(r.src, tgt.Pos, "bad switch value %q", tgt.Value)
		}
		bb, err := r.block(tgt.Pos, tgt.Target)
		if err != nil {
			return nil, err
		}
		t.Targets = append(t.Targets, mir.SwitchTarget{Value: v, Target: bb})
	}
	if t.Otherwise, err = r.block(pos, e.Otherwise); err != nil {
		return nil, err
	}
	return t, nil
}

func (r resolver) call(pos lexer.Position, e *CallExpr) (mir.Terminator, error) {
	dest, err := r.place(e.Dest)
	if err != nil {
		return nil, err
	}
	fn, err := r.operand(e.Func)
	if err != nil {
		return nil, err
	}
	args, err := r.operands(e.Args)
	if err != nil {
		return nil, err
	}
	t := &mir.Call{Func: fn, Args: args, Destination: dest}
	if e.Target != "" {
		bb, err := r.block(pos, e.Target)
		if err != nil {
			return nil, err
		}
		t.Target = &bb
	}
	if t.Unwind, err = r.unwind(pos, e.Unwind); err != nil {
		return nil, err
	}
	return t, nil
}
