package vir

import "math/big"

// Expr is a side-effect free IVL expression.
type Expr interface {
	isExpr()
}

// Local is a declared variable.
type Local struct {
	Name string
	Ty   Type
}

// LocalEx reads a local.
type LocalEx struct {
	Local *Local
}

// ConstKind discriminates constants.
type ConstKind int

const (
	ConstBool ConstKind = iota
	ConstInt
	ConstNull
)

// Const is a literal.
type Const struct {
	Kind ConstKind
	Bool bool
	Int  *big.Int
}

// FuncApp applies a pure function.
type FuncApp struct {
	Target string
	Args   []Expr
	Result Type
}

// PredicateApp is a predicate instance, used as an assertion and as the
// operand of fold/unfold.
type PredicateApp struct {
	Target string
	Args   []Expr
}

// BinOpKind discriminates binary operators.
type BinOpKind int

const (
	CmpEq BinOpKind = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
	OpAnd
	OpOr
	OpImplies
	OpAdd
	OpSub
	OpMul
)

var binOpSymbols = [...]string{
	CmpEq:     "==",
	CmpNe:     "!=",
	CmpLt:     "<",
	CmpLe:     "<=",
	CmpGt:     ">",
	CmpGe:     ">=",
	OpAnd:     "&&",
	OpOr:      "||",
	OpImplies: "==>",
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
}

// String returns the Viper symbol.
func (k BinOpKind) String() string { return binOpSymbols[k] }

// BinOp is a binary operation.
type BinOp struct {
	Kind     BinOpKind
	LHS, RHS Expr
}

// Todo is a placeholder for a value the encoder could not translate. The
// text says what was skipped.
type Todo struct {
	Text string
}

// Raw is an assertion that was elaborated elsewhere and is carried verbatim.
type Raw struct {
	Text string
}

func (*LocalEx) isExpr()      {}
func (*Const) isExpr()        {}
func (*FuncApp) isExpr()      {}
func (*PredicateApp) isExpr() {}
func (*BinOp) isExpr()        {}
func (*Todo) isExpr()         {}
func (*Raw) isExpr()          {}

// MkLocal declares a variable.
func (c *Ctx) MkLocal(name string, ty Type) *Local {
	return alloc(c, &c.locals, Local{Name: name, Ty: ty})
}

// MkLocalEx reads l.
func (c *Ctx) MkLocalEx(l *Local) *LocalEx {
	return alloc(c, &c.localExs, LocalEx{Local: l})
}

// MkBool builds a boolean literal.
func (c *Ctx) MkBool(b bool) *Const {
	return alloc(c, &c.consts, Const{Kind: ConstBool, Bool: b})
}

// MkInt builds a signed integer literal.
func (c *Ctx) MkInt(v int64) *Const {
	return alloc(c, &c.consts, Const{Kind: ConstInt, Int: big.NewInt(v)})
}

// MkUint builds an unsigned integer literal.
func (c *Ctx) MkUint(v uint64) *Const {
	return alloc(c, &c.consts, Const{Kind: ConstInt, Int: new(big.Int).SetUint64(v)})
}

// MkFuncApp applies function target. Prefer FunctionIdent.Apply, which
// checks the arity.
func (c *Ctx) MkFuncApp(target string, args []Expr, result Type) *FuncApp {
	return alloc(c, &c.funcApps, FuncApp{Target: target, Args: args, Result: result})
}

// MkPredicateApp builds an instance of predicate target. Prefer
// PredicateIdent.Apply, which checks the arity.
func (c *Ctx) MkPredicateApp(target string, args []Expr) *PredicateApp {
	return alloc(c, &c.predApps, PredicateApp{Target: target, Args: args})
}

// MkBinOp builds lhs op rhs.
func (c *Ctx) MkBinOp(kind BinOpKind, lhs, rhs Expr) *BinOp {
	return alloc(c, &c.binOps, BinOp{Kind: kind, LHS: lhs, RHS: rhs})
}

// MkEq builds lhs == rhs.
func (c *Ctx) MkEq(lhs, rhs Expr) *BinOp { return c.MkBinOp(CmpEq, lhs, rhs) }

// MkTodo builds a placeholder tagged with text.
func (c *Ctx) MkTodo(text string) *Todo {
	return alloc(c, &c.todos, Todo{Text: text})
}

// MkRaw wraps an already elaborated assertion.
func (c *Ctx) MkRaw(text string) *Raw {
	return alloc(c, &c.raws, Raw{Text: text})
}
