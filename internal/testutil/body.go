package testutil

import (
	"github.com/xldenis/prusti-dev/internal/crate"
	"github.com/xldenis/prusti-dev/internal/fpcs"
	"github.com/xldenis/prusti-dev/internal/mir"
)

// BodyBuilder assembles a procedure body and its permission schedule.
//
//	b := testutil.NewBody("add", mir.Int(32), mir.Int(32), mir.Int(32))
//	b.Block(testutil.Stmts(testutil.Assign(mir.PlaceOf(0), rv)), &mir.Return{})
//	proc := b.Procedure()
type BodyBuilder struct {
	body  *mir.Body
	table *fpcs.Table
	spec  crate.Spec
	ext   bool
}

// NewBody starts a body named name returning ret with the given argument
// types.
func NewBody(name string, ret mir.Ty, args ...mir.Ty) *BodyBuilder {
	locals := []mir.LocalDecl{{Ty: ret}}
	for _, a := range args {
		locals = append(locals, mir.LocalDecl{Ty: a})
	}
	return &BodyBuilder{
		body: &mir.Body{
			Def:      mir.DefID(name),
			Name:     name,
			ArgCount: len(args),
			Locals:   locals,
		},
		table: fpcs.NewTable(),
	}
}

// Local declares a non-argument local.
func (b *BodyBuilder) Local(ty mir.Ty) mir.Local {
	b.body.Locals = append(b.body.Locals, mir.LocalDecl{Ty: ty})
	return mir.Local(len(b.body.Locals) - 1)
}

// Block appends a block and returns its index.
func (b *BodyBuilder) Block(stmts []mir.Statement, term mir.Terminator) mir.BasicBlock {
	b.body.Blocks = append(b.body.Blocks, mir.BasicBlockData{Statements: stmts, Terminator: term})
	return mir.BasicBlock(len(b.body.Blocks) - 1)
}

// Repack schedules ops at loc.
func (b *BodyBuilder) Repack(loc mir.Location, phase fpcs.Phase, ops ...fpcs.RepackOp) *BodyBuilder {
	b.table.Append(loc, phase, ops...)
	return b
}

// Requires adds already-elaborated preconditions.
func (b *BodyBuilder) Requires(pres ...string) *BodyBuilder {
	b.spec.Pres = append(b.spec.Pres, pres...)
	return b
}

// Ensures adds already-elaborated postconditions.
func (b *BodyBuilder) Ensures(posts ...string) *BodyBuilder {
	b.spec.Posts = append(b.spec.Posts, posts...)
	return b
}

// Trusted marks the procedure as trusted.
func (b *BodyBuilder) Trusted() *BodyBuilder {
	b.spec.Trusted = true
	return b
}

// External marks the procedure as having no body in the crate.
func (b *BodyBuilder) External() *BodyBuilder {
	b.ext = true
	return b
}

// Body returns the body built so far.
func (b *BodyBuilder) Body() *mir.Body { return b.body }

// Procedure finishes the procedure. The schedule covers every location, so
// locations without explicit repacks have none.
func (b *BodyBuilder) Procedure() *crate.Procedure {
	b.table.Cover(b.body)
	return &crate.Procedure{
		Def:      b.body.Def,
		Body:     b.body,
		Schedule: b.table,
		Spec:     b.spec,
		External: b.ext,
	}
}

// Crate bundles procedures into a crate named "test". It panics on
// duplicate procedures.
func Crate(procs ...*crate.Procedure) *crate.Crate {
	c := crate.New("test")
	for _, p := range procs {
		if err := c.Add(p); err != nil {
			panic(err)
		}
	}
	return c
}

// Stmts is shorthand for a statement list.
func Stmts(s ...mir.Statement) []mir.Statement { return s }

// Assign builds place = rv.
func Assign(place mir.Place, rv mir.Rvalue) *mir.Assign {
	return &mir.Assign{Place: place, Rvalue: rv}
}

// Move builds move of local l.
func Move(l mir.Local) *mir.Move { return &mir.Move{Place: mir.PlaceOf(l)} }

// Copy builds copy of local l.
func Copy(l mir.Local) *mir.Copy { return &mir.Copy{Place: mir.PlaceOf(l)} }

// Target returns a pointer to bb, for call targets.
func Target(bb mir.BasicBlock) *mir.BasicBlock { return &bb }

// Loc builds a location.
func Loc(bb, stmt int) mir.Location {
	return mir.Location{Block: mir.BasicBlock(bb), Statement: stmt}
}
