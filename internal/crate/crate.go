// Package crate holds a loaded set of procedures together with the named
// struct types they use.
package crate

import (
	"fmt"
	"sort"

	"github.com/xldenis/prusti-dev/internal/fpcs"
	"github.com/xldenis/prusti-dev/internal/mir"
)

// Spec is the already-elaborated specification of a procedure.
type Spec struct {
	Trusted bool
	Pres    []string
	Posts   []string
}

// Procedure is one source procedure.
type Procedure struct {
	Def      mir.DefID
	Body     *mir.Body
	Schedule fpcs.Schedule
	Spec     Spec

	// External procedures have a signature but no body in this crate.
	External bool
}

// Crate is the unit of encoding.
type Crate struct {
	Name       string
	Types      map[string]mir.Ty
	Procedures map[mir.DefID]*Procedure

	// Order is the declaration order of Procedures.
	Order []mir.DefID
}

// New returns an empty crate.
func New(name string) *Crate {
	return &Crate{
		Name:       name,
		Types:      make(map[string]mir.Ty),
		Procedures: make(map[mir.DefID]*Procedure),
	}
}

// Add registers p, keeping declaration order. Adding the same def twice is
// an error.
func (c *Crate) Add(p *Procedure) error {
	if _, ok := c.Procedures[p.Def]; ok {
		return fmt.Errorf("procedure %s declared twice", p.Def)
	}
	c.Procedures[p.Def] = p
	c.Order = append(c.Order, p.Def)
	return nil
}

// Procedure looks up def.
func (c *Crate) Procedure(def mir.DefID) (*Procedure, bool) {
	p, ok := c.Procedures[def]
	return p, ok
}

// Defs returns the procedures in declaration order.
func (c *Crate) Defs() []mir.DefID {
	return append([]mir.DefID(nil), c.Order...)
}

// TypeNames returns the declared struct names in sorted order.
func (c *Crate) TypeNames() []string {
	names := make([]string, 0, len(c.Types))
	for n := range c.Types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Callees returns the distinct procedures called from p's body, in first-call
// order.
func (p *Procedure) Callees() []mir.DefID {
	if p.Body == nil {
		return nil
	}
	var out []mir.DefID
	seen := make(map[mir.DefID]bool)
	for _, bb := range p.Body.Blocks {
		call, ok := bb.Terminator.(*mir.Call)
		if !ok {
			continue
		}
		c, ok := call.Func.(*mir.Constant)
		if !ok || c.Value.Kind != mir.ConstFn {
			continue
		}
		def := mir.DefID(c.Value.Text)
		if !seen[def] {
			seen[def] = true
			out = append(out, def)
		}
	}
	return out
}
