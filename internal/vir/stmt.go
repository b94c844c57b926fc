package vir

// Stmt is an IVL statement.
type Stmt interface {
	isStmt()
}

// LocalDecl declares a local, optionally initialized.
type LocalDecl struct {
	Local *Local
	Init  Expr
}

// PureAssign assigns a pure value to a local.
type PureAssign struct {
	LHS Expr
	RHS Expr
}

// Exhale gives up the permissions and asserts the facts of Expr.
type Exhale struct {
	Expr Expr
}

// Inhale assumes Expr and gains its permissions.
type Inhale struct {
	Expr Expr
}

// Unfold replaces a predicate instance by its body.
type Unfold struct {
	Predicate *PredicateApp
}

// Fold replaces a predicate body by the predicate instance.
type Fold struct {
	Predicate *PredicateApp
}

// MethodCall calls an impure method.
type MethodCall struct {
	Target string
	Args   []Expr
}

// Comment is a source annotation.
type Comment struct {
	Text string
}

func (*LocalDecl) isStmt()  {}
func (*PureAssign) isStmt() {}
func (*Exhale) isStmt()     {}
func (*Inhale) isStmt()     {}
func (*Unfold) isStmt()     {}
func (*Fold) isStmt()       {}
func (*MethodCall) isStmt() {}
func (*Comment) isStmt()    {}

// MkLocalDecl declares l, with init optional.
func (c *Ctx) MkLocalDecl(l *Local, init Expr) *LocalDecl {
	return alloc(c, &c.localDecls, LocalDecl{Local: l, Init: init})
}

// MkPureAssign builds lhs := rhs.
func (c *Ctx) MkPureAssign(lhs, rhs Expr) *PureAssign {
	return alloc(c, &c.pureAssigns, PureAssign{LHS: lhs, RHS: rhs})
}

// MkExhale builds exhale e.
func (c *Ctx) MkExhale(e Expr) *Exhale {
	return alloc(c, &c.exhales, Exhale{Expr: e})
}

// MkInhale builds inhale e.
func (c *Ctx) MkInhale(e Expr) *Inhale {
	return alloc(c, &c.inhales, Inhale{Expr: e})
}

// MkUnfold builds unfold p.
func (c *Ctx) MkUnfold(p *PredicateApp) *Unfold {
	return alloc(c, &c.unfolds, Unfold{Predicate: p})
}

// MkFold builds fold p.
func (c *Ctx) MkFold(p *PredicateApp) *Fold {
	return alloc(c, &c.folds, Fold{Predicate: p})
}

// MkMethodCall calls target. Prefer MethodIdent.Apply, which checks the
// arity.
func (c *Ctx) MkMethodCall(target string, args []Expr) *MethodCall {
	return alloc(c, &c.calls, MethodCall{Target: target, Args: args})
}

// MkComment builds a comment.
func (c *Ctx) MkComment(text string) *Comment {
	return alloc(c, &c.comments, Comment{Text: text})
}
