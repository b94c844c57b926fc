package compiler

import (
	"fmt"
	"sort"

	"github.com/xldenis/prusti-dev/internal/crate"
	"github.com/xldenis/prusti-dev/internal/fpcs"
	"github.com/xldenis/prusti-dev/internal/mir"
)

// Validation error codes (E400-E499)
const (
	ErrArgCount          = "E401" // argument count does not fit the locals
	ErrBlockOutOfRange   = "E402" // terminator targets a missing block
	ErrLocalOutOfRange   = "E403" // place names a missing local
	ErrRepackLocation    = "E404" // repacks scheduled at a location outside the body
	ErrRepackCapability  = "E405" // repack violates capability narrowing
	ErrMissingTerminator = "E406" // block without a terminator
	ErrUnknownCallee     = "E407" // call to a procedure the crate does not declare
	ErrMissingBody       = "E408" // procedure without a body
)

// ValidationError represents a structural problem in a compiled crate.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks every procedure of c for structural problems the encoder
// would otherwise report one at a time. It returns all errors found.
func Validate(c *crate.Crate) []ValidationError {
	var errs []ValidationError
	for _, def := range c.Defs() {
		proc, _ := c.Procedure(def)
		errs = append(errs, validateProcedure(c, proc)...)
	}
	return errs
}

func validateProcedure(c *crate.Crate, proc *crate.Procedure) []ValidationError {
	field := "procedures." + string(proc.Def)
	body := proc.Body
	if body == nil {
		return []ValidationError{{Field: field, Message: "procedure has no body", Code: ErrMissingBody}}
	}

	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	if body.ArgCount < 0 || body.ArgCount >= len(body.Locals) {
		add(field+".args", ErrArgCount, "%d arguments but only %d locals besides the return place",
			body.ArgCount, max(len(body.Locals)-1, 0))
	}

	checkPlace := func(field string, p mir.Place) {
		if int(p.Local) >= len(body.Locals) {
			add(field, ErrLocalOutOfRange, "%s is not declared (%d locals)", p.Local, len(body.Locals))
		}
		for _, elem := range p.Projection {
			if elem.Kind == mir.ProjIndex && int(elem.Index) >= len(body.Locals) {
				add(field, ErrLocalOutOfRange, "index %s is not declared", elem.Index)
			}
		}
	}

	for i, bb := range body.Blocks {
		bfield := fmt.Sprintf("%s.blocks[%d]", field, i)
		for j, stmt := range bb.Statements {
			sfield := fmt.Sprintf("%s.statements[%d]", bfield, j)
			for _, p := range statementPlaces(stmt) {
				checkPlace(sfield, p)
			}
		}
		if bb.Terminator == nil {
			add(bfield+".terminator", ErrMissingTerminator, "block has no terminator")
			continue
		}
		tfield := bfield + ".terminator"
		for _, succ := range mir.Successors(bb.Terminator) {
			if int(succ) < 0 || int(succ) >= len(body.Blocks) {
				add(tfield, ErrBlockOutOfRange, "%s targets missing %s", bb.Terminator, succ)
			}
		}
		for _, p := range terminatorPlaces(bb.Terminator) {
			checkPlace(tfield, p)
		}
		if call, ok := bb.Terminator.(*mir.Call); ok {
			if fn, ok := call.Func.(*mir.Constant); ok && fn.Value.Kind == mir.ConstFn {
				if _, ok := c.Procedure(mir.DefID(fn.Value.Text)); !ok {
					add(tfield, ErrUnknownCallee, "calls undeclared procedure %s", fn.Value.Text)
				}
			}
		}
	}

	if table, ok := proc.Schedule.(*fpcs.Table); ok {
		errs = append(errs, validateSchedule(field+".repacks", body, table)...)
	}
	return errs
}

func validateSchedule(field string, body *mir.Body, table *fpcs.Table) []ValidationError {
	var errs []ValidationError
	for _, loc := range sortedLocations(table.Locations()) {
		lfield := fmt.Sprintf("%s.%q", field, loc)
		if int(loc.Block) >= len(body.Blocks) || loc.Statement > len(body.Blocks[loc.Block].Statements) {
			errs = append(errs, ValidationError{Field: lfield, Message: fmt.Sprintf("%s is not a location of the body", loc), Code: ErrRepackLocation})
			continue
		}
		for _, phase := range []fpcs.Phase{fpcs.PhaseStart, fpcs.PhaseMiddle} {
			ops, _ := table.Repacks(loc, phase)
			for _, op := range ops {
				if err := op.Validate(); err != nil {
					errs = append(errs, ValidationError{Field: lfield + "." + phase.String(), Message: err.Error(), Code: ErrRepackCapability})
				}
			}
		}
	}
	return errs
}

func sortedLocations(locs []mir.Location) []mir.Location {
	out := append([]mir.Location(nil), locs...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Block != out[j].Block {
			return out[i].Block < out[j].Block
		}
		return out[i].Statement < out[j].Statement
	})
	return out
}

func statementPlaces(s mir.Statement) []mir.Place {
	switch s := s.(type) {
	case *mir.Assign:
		return append([]mir.Place{s.Place}, rvaluePlaces(s.Rvalue)...)
	case *mir.StorageLive:
		return []mir.Place{mir.PlaceOf(s.Local)}
	case *mir.StorageDead:
		return []mir.Place{mir.PlaceOf(s.Local)}
	case *mir.FakeRead:
		return []mir.Place{s.Place}
	case *mir.Retag:
		return []mir.Place{s.Place}
	case *mir.PlaceMention:
		return []mir.Place{s.Place}
	case *mir.AscribeUserType:
		return []mir.Place{s.Place}
	case *mir.SetDiscriminant:
		return []mir.Place{s.Place}
	case *mir.Deinit:
		return []mir.Place{s.Place}
	}
	return nil
}

func rvaluePlaces(rv mir.Rvalue) []mir.Place {
	switch rv := rv.(type) {
	case *mir.Use:
		return operandPlaces(rv.Operand)
	case *mir.BinaryOp:
		return operandPlaces(rv.LHS, rv.RHS)
	case *mir.CheckedBinaryOp:
		return operandPlaces(rv.LHS, rv.RHS)
	case *mir.UnaryOp:
		return operandPlaces(rv.Operand)
	case *mir.Aggregate:
		return operandPlaces(rv.Fields...)
	case *mir.Cast:
		return operandPlaces(rv.Operand)
	case *mir.Ref:
		return []mir.Place{rv.Place}
	case *mir.Len:
		return []mir.Place{rv.Place}
	case *mir.Discriminant:
		return []mir.Place{rv.Place}
	}
	return nil
}

func operandPlaces(ops ...mir.Operand) []mir.Place {
	var out []mir.Place
	for _, op := range ops {
		switch op := op.(type) {
		case *mir.Move:
			out = append(out, op.Place)
		case *mir.Copy:
			out = append(out, op.Place)
		}
	}
	return out
}

func terminatorPlaces(t mir.Terminator) []mir.Place {
	switch t := t.(type) {
	case *mir.SwitchInt:
		return operandPlaces(t.Discr)
	case *mir.Call:
		return append([]mir.Place{t.Destination}, operandPlaces(append([]mir.Operand{t.Func}, t.Args...)...)...)
	case *mir.Assert:
		return operandPlaces(t.Cond)
	case *mir.Drop:
		return []mir.Place{t.Place}
	}
	return nil
}
