package vir

import "fmt"

func checkArity(kind, name string, want, got int) {
	if want != got {
		panic(fmt.Sprintf("vir: %s %s takes %d arguments, got %d", kind, name, want, got))
	}
}

// FunctionIdent identifies a pure function with its signature.
type FunctionIdent struct {
	Name   string
	Params []Type
	Result Type
}

// NewFunctionIdent builds a function identifier.
func NewFunctionIdent(name string, result Type, params ...Type) FunctionIdent {
	return FunctionIdent{Name: name, Params: params, Result: result}
}

// Arity returns the number of parameters.
func (f FunctionIdent) Arity() int { return len(f.Params) }

// Apply builds a call of f. It panics when len(args) differs from the arity.
func (f FunctionIdent) Apply(c *Ctx, args ...Expr) *FuncApp {
	checkArity("function", f.Name, len(f.Params), len(args))
	return c.MkFuncApp(f.Name, args, f.Result)
}

// PredicateIdent identifies a predicate with its parameter types.
type PredicateIdent struct {
	Name   string
	Params []Type
}

// NewPredicateIdent builds a predicate identifier.
func NewPredicateIdent(name string, params ...Type) PredicateIdent {
	return PredicateIdent{Name: name, Params: params}
}

// Arity returns the number of parameters.
func (p PredicateIdent) Arity() int { return len(p.Params) }

// Apply builds an instance of p. It panics when len(args) differs from the
// arity.
func (p PredicateIdent) Apply(c *Ctx, args ...Expr) *PredicateApp {
	checkArity("predicate", p.Name, len(p.Params), len(args))
	return c.MkPredicateApp(p.Name, args)
}

// MethodIdent identifies an impure method with its parameter types.
type MethodIdent struct {
	Name   string
	Params []Type
}

// NewMethodIdent builds a method identifier.
func NewMethodIdent(name string, params ...Type) MethodIdent {
	return MethodIdent{Name: name, Params: params}
}

// Arity returns the number of parameters.
func (m MethodIdent) Arity() int { return len(m.Params) }

// Apply builds a call of m. It panics when len(args) differs from the arity.
func (m MethodIdent) Apply(c *Ctx, args ...Expr) *MethodCall {
	checkArity("method", m.Name, len(m.Params), len(args))
	return c.MkMethodCall(m.Name, args)
}
