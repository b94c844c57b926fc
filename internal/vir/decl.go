package vir

import "sort"

// Decl is a top-level program declaration.
type Decl interface {
	DeclName() string
}

// Method is an impure procedure. Blocks is nil for a bodiless method, which
// still exposes a callable signature.
type Method struct {
	Name   string
	Args   []*Local
	Rets   []*Local
	Pres   []Expr
	Posts  []Expr
	Blocks []*CfgBlock
}

// Predicate is an abstract points-to predicate.
type Predicate struct {
	Name string
	Args []*Local
	Body Expr
}

// Function is a heap-dependent pure function.
type Function struct {
	Name  string
	Args  []*Local
	Ret   Type
	Pres  []Expr
	Posts []Expr
	Body  Expr
}

// DomainFunction is an uninterpreted function of a domain.
type DomainFunction struct {
	Name   string
	Params []Type
	Ret    Type
}

// Domain declares a value type and its uninterpreted functions.
type Domain struct {
	Name      string
	Functions []DomainFunction
}

func (m *Method) DeclName() string    { return m.Name }
func (p *Predicate) DeclName() string { return p.Name }
func (f *Function) DeclName() string  { return f.Name }
func (d *Domain) DeclName() string    { return d.Name }

// HasBody reports whether the method has blocks.
func (m *Method) HasBody() bool { return m.Blocks != nil }

// MkMethod allocates a method.
func (c *Ctx) MkMethod(m Method) *Method {
	return alloc(c, &c.methods, m)
}

// MkPredicate allocates a predicate.
func (c *Ctx) MkPredicate(p Predicate) *Predicate {
	return alloc(c, &c.predicates, p)
}

// MkFunction allocates a function.
func (c *Ctx) MkFunction(f Function) *Function {
	return alloc(c, &c.functions, f)
}

// MkDomain allocates a domain.
func (c *Ctx) MkDomain(d Domain) *Domain {
	return alloc(c, &c.domains, d)
}

// Program is a complete IVL program.
type Program struct {
	Domains    []*Domain
	Predicates []*Predicate
	Functions  []*Function
	Methods    []*Method
}

// Add files d under its kind. Duplicate names are ignored, keeping the
// first declaration.
func (p *Program) Add(decls ...Decl) {
	for _, d := range decls {
		if p.has(d) {
			continue
		}
		switch d := d.(type) {
		case *Domain:
			p.Domains = append(p.Domains, d)
		case *Predicate:
			p.Predicates = append(p.Predicates, d)
		case *Function:
			p.Functions = append(p.Functions, d)
		case *Method:
			p.Methods = append(p.Methods, d)
		}
	}
}

func (p *Program) has(d Decl) bool {
	name := d.DeclName()
	switch d.(type) {
	case *Domain:
		for _, x := range p.Domains {
			if x.Name == name {
				return true
			}
		}
	case *Predicate:
		for _, x := range p.Predicates {
			if x.Name == name {
				return true
			}
		}
	case *Function:
		for _, x := range p.Functions {
			if x.Name == name {
				return true
			}
		}
	case *Method:
		for _, x := range p.Methods {
			if x.Name == name {
				return true
			}
		}
	}
	return false
}

// SortSupport orders every declaration added so far by name. Call it before
// adding the procedure methods, which keep their insertion order.
func (p *Program) SortSupport() {
	sort.SliceStable(p.Domains, func(i, j int) bool { return p.Domains[i].Name < p.Domains[j].Name })
	sort.SliceStable(p.Predicates, func(i, j int) bool { return p.Predicates[i].Name < p.Predicates[j].Name })
	sort.SliceStable(p.Functions, func(i, j int) bool { return p.Functions[i].Name < p.Functions[j].Name })
	sort.SliceStable(p.Methods, func(i, j int) bool { return p.Methods[i].Name < p.Methods[j].Name })
}

// Method returns the method named name.
func (p *Program) Method(name string) (*Method, bool) {
	for _, m := range p.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}
