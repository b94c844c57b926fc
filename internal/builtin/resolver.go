package builtin

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/taskenc"
	"github.com/xldenis/prusti-dev/internal/typeenc"
	"github.com/xldenis/prusti-dev/internal/vir"
)

var (
	// ErrUnsupportedOperator marks a well-typed operator application with no
	// encoding.
	ErrUnsupportedOperator = errors.New("unsupported operator/type combination")

	// ErrMalformedOperator marks an ill-typed operator application.
	ErrMalformedOperator = errors.New("malformed operator application")
)

// OpKind discriminates operator families.
type OpKind int

const (
	OpBinary OpKind = iota
	OpChecked
	OpUnary
)

func (k OpKind) prefix() string {
	switch k {
	case OpChecked:
		return "mir_checkedbinop"
	case OpUnary:
		return "mir_unop"
	default:
		return "mir_binop"
	}
}

// Signature identifies one operator application by structural types.
type Signature struct {
	Kind     OpKind
	Op       string
	Result   string
	Operands string
}

type request struct {
	op       string
	result   mir.Ty
	operands []mir.Ty
}

// Resolver maps operator applications to IVL functions through the shared
// dependency cache.
type Resolver struct {
	vcx   *vir.Ctx
	types *typeenc.Encoder
	cache *taskenc.Cache[Signature, vir.FunctionIdent, []vir.Decl]

	mu   sync.Mutex
	reqs map[Signature]request
}

// New creates a resolver registered with reg.
func New(reg *taskenc.Registry, vcx *vir.Ctx, types *typeenc.Encoder) *Resolver {
	r := &Resolver{vcx: vcx, types: types, reqs: make(map[Signature]request)}
	r.cache = taskenc.NewCache[Signature, vir.FunctionIdent, []vir.Decl](reg, "builtin", r.encode)
	return r
}

// BinOp resolves a binary operator.
func (r *Resolver) BinOp(deps *taskenc.Deps, op mir.BinOp, result, lhs, rhs mir.Ty) (vir.FunctionIdent, error) {
	if err := checkBinOp(op, result, lhs, rhs); err != nil {
		return vir.FunctionIdent{}, err
	}
	return r.require(deps, OpBinary, op.String(), result, lhs, rhs)
}

// CheckedBinOp resolves an overflow-checked binary operator, whose result is
// the pair (value, overflowed).
func (r *Resolver) CheckedBinOp(deps *taskenc.Deps, op mir.BinOp, result, lhs, rhs mir.Ty) (vir.FunctionIdent, error) {
	switch op {
	case mir.BinAdd, mir.BinSub, mir.BinMul, mir.BinShl, mir.BinShr:
	default:
		return vir.FunctionIdent{}, fmt.Errorf("%w: Checked%s", ErrUnsupportedOperator, op)
	}
	if !isInt(lhs) {
		return vir.FunctionIdent{}, unsupportedOrMalformed("Checked"+op.String(), lhs)
	}
	if !result.Equal(mir.Tuple(lhs, mir.Bool())) {
		return vir.FunctionIdent{}, fmt.Errorf("%w: Checked%s on %s must yield (%s, bool), not %s",
			ErrMalformedOperator, op, lhs, lhs, result)
	}
	if err := checkOperandPair(op, lhs, rhs); err != nil {
		return vir.FunctionIdent{}, err
	}
	return r.require(deps, OpChecked, op.String(), result, lhs, rhs)
}

// UnOp resolves a unary operator.
func (r *Resolver) UnOp(deps *taskenc.Deps, op mir.UnOp, result, operand mir.Ty) (vir.FunctionIdent, error) {
	switch {
	case op == mir.UnNot && (operand.Kind == mir.TyBool || isInt(operand)):
	case op == mir.UnNeg && operand.Kind == mir.TyInt:
	case op == mir.UnNeg && operand.Kind == mir.TyUint:
		return vir.FunctionIdent{}, fmt.Errorf("%w: Neg on unsigned %s", ErrMalformedOperator, operand)
	default:
		return vir.FunctionIdent{}, unsupportedOrMalformed(op.String(), operand)
	}
	if !result.Equal(operand) {
		return vir.FunctionIdent{}, fmt.Errorf("%w: %s on %s yields %s", ErrMalformedOperator, op, operand, result)
	}
	return r.require(deps, OpUnary, op.String(), result, operand)
}

// Decls returns the declarations of every resolved operator.
func (r *Resolver) Decls() []vir.Decl {
	var out []vir.Decl
	for _, sig := range r.cache.Completed() {
		decls, _ := r.cache.Lookup(sig)
		out = append(out, decls...)
	}
	return out
}

func isInt(ty mir.Ty) bool { return ty.Kind == mir.TyInt || ty.Kind == mir.TyUint }

func unsupportedOrMalformed(op string, ty mir.Ty) error {
	switch ty.Kind {
	case mir.TyFloat, mir.TyStr:
		return fmt.Errorf("%w: %s on %s", ErrUnsupportedOperator, op, ty)
	default:
		return fmt.Errorf("%w: %s on %s", ErrMalformedOperator, op, ty)
	}
}

func checkOperandPair(op mir.BinOp, lhs, rhs mir.Ty) error {
	if op == mir.BinShl || op == mir.BinShr {
		if !isInt(rhs) {
			return fmt.Errorf("%w: shift amount of type %s", ErrMalformedOperator, rhs)
		}
		return nil
	}
	if !lhs.Equal(rhs) {
		return fmt.Errorf("%w: %s on mismatched operands %s and %s", ErrMalformedOperator, op, lhs, rhs)
	}
	return nil
}

func checkBinOp(op mir.BinOp, result, lhs, rhs mir.Ty) error {
	if op == mir.BinOffset {
		return fmt.Errorf("%w: %s", ErrUnsupportedOperator, op)
	}
	switch {
	case isInt(lhs):
	case lhs.Kind == mir.TyBool:
		switch op {
		case mir.BinAdd, mir.BinSub, mir.BinMul, mir.BinDiv, mir.BinRem, mir.BinShl, mir.BinShr:
			return fmt.Errorf("%w: %s on bool", ErrMalformedOperator, op)
		}
	default:
		return unsupportedOrMalformed(op.String(), lhs)
	}
	if err := checkOperandPair(op, lhs, rhs); err != nil {
		return err
	}
	want := lhs
	if op.IsComparison() {
		want = mir.Bool()
	}
	if !result.Equal(want) {
		return fmt.Errorf("%w: %s on %s yields %s, not %s", ErrMalformedOperator, op, lhs, want, result)
	}
	return nil
}

func (r *Resolver) require(deps *taskenc.Deps, kind OpKind, op string, result mir.Ty, operands ...mir.Ty) (vir.FunctionIdent, error) {
	keys := make([]string, len(operands))
	for i, o := range operands {
		keys[i] = o.Key()
	}
	sig := Signature{Kind: kind, Op: op, Result: result.Key(), Operands: strings.Join(keys, ";")}
	r.mu.Lock()
	if _, ok := r.reqs[sig]; !ok {
		r.reqs[sig] = request{op: op, result: result, operands: operands}
	}
	r.mu.Unlock()
	return r.cache.RequireRef(deps, sig)
}

func (r *Resolver) encode(deps *taskenc.Deps, sig Signature) ([]vir.Decl, error) {
	r.mu.Lock()
	req := r.reqs[sig]
	r.mu.Unlock()

	resDesc, err := r.types.Require(deps, req.result)
	if err != nil {
		return nil, err
	}
	name := sig.Kind.prefix() + "_" + req.op
	params := make([]vir.Type, len(req.operands))
	descs := make([]*typeenc.Descriptor, len(req.operands))
	for i, o := range req.operands {
		d, err := r.types.Require(deps, o)
		if err != nil {
			return nil, err
		}
		descs[i] = d
		params[i] = d.Snapshot
		name += "_" + d.Name
	}
	ident := vir.NewFunctionIdent(name, resDesc.Snapshot, params...)
	if err := r.cache.EmitRef(deps, sig, ident); err != nil {
		return nil, err
	}

	vcx := r.vcx
	args := make([]*vir.Local, len(params))
	for i, p := range params {
		args[i] = vcx.MkLocal(fmt.Sprintf("arg%d", i), p)
	}
	fn := vir.Function{Name: name, Args: args, Ret: resDesc.Snapshot}
	if post := r.postcondition(sig.Kind, req.op, resDesc, descs, args); post != nil {
		fn.Posts = []vir.Expr{post}
	}
	return []vir.Decl{vcx.MkFunction(fn)}, nil
}

var primOps = map[string]vir.BinOpKind{
	"Add": vir.OpAdd,
	"Sub": vir.OpSub,
	"Mul": vir.OpMul,
	"Eq":  vir.CmpEq,
	"Ne":  vir.CmpNe,
	"Lt":  vir.CmpLt,
	"Le":  vir.CmpLe,
	"Gt":  vir.CmpGt,
	"Ge":  vir.CmpGe,
}

// postcondition relates the result to the operands for operators with a
// direct Viper counterpart over primitives. Other operators stay
// uninterpreted.
func (r *Resolver) postcondition(kind OpKind, op string, res *typeenc.Descriptor, operands []*typeenc.Descriptor, args []*vir.Local) vir.Expr {
	if kind != OpBinary || res.Prim == nil {
		return nil
	}
	vk, ok := primOps[op]
	if !ok {
		if operands[0].Ty.Kind != mir.TyBool {
			return nil
		}
		switch op {
		case "BitAnd":
			vk = vir.OpAnd
		case "BitOr":
			vk = vir.OpOr
		default:
			return nil
		}
	}
	vcx := r.vcx
	val := func(d *typeenc.Descriptor, l *vir.Local) vir.Expr {
		return d.Prim.SnapToPrim.Apply(vcx, vcx.MkLocalEx(l))
	}
	result := vcx.MkLocal("result", res.Snapshot)
	return vcx.MkEq(
		val(res, result),
		vcx.MkBinOp(vk, val(operands[0], args[0]), val(operands[1], args[1])),
	)
}
