package mir

import (
	"fmt"

	"github.com/xldenis/prusti-dev/internal/canon"
)

// DefID identifies a procedure within a crate.
type DefID string

// LocalDecl declares the type of a local.
type LocalDecl struct {
	Ty Ty
}

// BasicBlockData is a block: its statements in order and one terminator.
type BasicBlockData struct {
	Statements []Statement
	Terminator Terminator
	IsCleanup  bool
}

// Body is the typed control-flow graph of one procedure.
//
// Locals[0] is the return place and Locals[1..=ArgCount] are the arguments.
// A body without blocks describes a procedure whose implementation is not
// available (only its signature is).
type Body struct {
	Def      DefID
	Name     string
	ArgCount int
	Locals   []LocalDecl
	Blocks   []BasicBlockData
}

// Location is a program point: statement index Statement of block Block.
// The terminator of a block sits at index len(Statements).
type Location struct {
	Block     BasicBlock
	Statement int
}

// String returns the debug form, e.g. "bb0[2]".
func (l Location) String() string { return fmt.Sprintf("%s[%d]", l.Block, l.Statement) }

// ParseLocation parses the debug form of a location.
func ParseLocation(s string) (Location, error) {
	var bb, idx int
	var rest string
	n, _ := fmt.Sscanf(s, "bb%d[%d]%s", &bb, &idx, &rest)
	if n != 2 || bb < 0 || idx < 0 || s != fmt.Sprintf("bb%d[%d]", bb, idx) {
		return Location{}, fmt.Errorf("invalid location %q (want bbN[M])", s)
	}
	return Location{Block: BasicBlock(bb), Statement: idx}, nil
}

// HasBlocks reports whether the body's implementation is available.
func (b *Body) HasBlocks() bool { return len(b.Blocks) > 0 }

// TerminatorLocation returns the location of bb's terminator.
func (b *Body) TerminatorLocation(bb BasicBlock) Location {
	return Location{Block: bb, Statement: len(b.Blocks[bb].Statements)}
}

// LocalTy returns the declared type of l.
func (b *Body) LocalTy(l Local) (Ty, error) {
	if int(l) < 0 || int(l) >= len(b.Locals) {
		return Ty{}, fmt.Errorf("local %s out of range (body has %d locals)", l, len(b.Locals))
	}
	return b.Locals[l].Ty, nil
}

// ReturnTy returns the type of the return place.
func (b *Body) ReturnTy() (Ty, error) { return b.LocalTy(ReturnPlace) }

// ArgTys returns the argument types in order.
func (b *Body) ArgTys() []Ty {
	out := make([]Ty, 0, b.ArgCount)
	for i := 1; i <= b.ArgCount && i < len(b.Locals); i++ {
		out = append(out, b.Locals[i].Ty)
	}
	return out
}

// PlaceTy returns the type of a place. Only field projections can be typed;
// a field projection's type is the type recorded on the projection step.
func (b *Body) PlaceTy(p Place) (Ty, error) {
	ty, err := b.LocalTy(p.Local)
	if err != nil {
		return Ty{}, err
	}
	for _, elem := range p.Projection {
		if elem.Kind != ProjField {
			return Ty{}, fmt.Errorf("cannot type %s projection of %s", elem.Kind, p)
		}
		ty = elem.Ty
	}
	return ty, nil
}

// OperandTy returns the type of the value an operand yields.
func (b *Body) OperandTy(op Operand) (Ty, error) {
	switch op := op.(type) {
	case *Move:
		return b.PlaceTy(op.Place)
	case *Copy:
		return b.PlaceTy(op.Place)
	case *Constant:
		return op.Ty, nil
	default:
		return Ty{}, fmt.Errorf("unknown operand %T", op)
	}
}

// RvalueTy returns the type of the value an rvalue yields, for the rvalue
// kinds whose type follows from their operands.
func (b *Body) RvalueTy(rv Rvalue) (Ty, error) {
	switch rv := rv.(type) {
	case *Use:
		return b.OperandTy(rv.Operand)
	case *BinaryOp:
		if rv.Op.IsComparison() {
			return Bool(), nil
		}
		return b.OperandTy(rv.LHS)
	case *CheckedBinaryOp:
		lhs, err := b.OperandTy(rv.LHS)
		if err != nil {
			return Ty{}, err
		}
		return Tuple(lhs, Bool()), nil
	case *UnaryOp:
		return b.OperandTy(rv.Operand)
	case *Cast:
		return rv.Ty, nil
	case *Aggregate:
		if rv.Kind != AggregateTuple {
			return Ty{}, fmt.Errorf("cannot type %s without a type registry", rv)
		}
		elems := make([]Ty, len(rv.Fields))
		for i, f := range rv.Fields {
			ty, err := b.OperandTy(f)
			if err != nil {
				return Ty{}, err
			}
			elems[i] = ty
		}
		return Tuple(elems...), nil
	case *Len:
		return Uint(0), nil
	default:
		return Ty{}, fmt.Errorf("cannot type rvalue %s", rv)
	}
}

// Canonical returns the canonical-JSON-ready form of the body, built from
// the debug forms of its locals, statements and terminators.
func (b *Body) Canonical() map[string]any {
	locals := make([]string, len(b.Locals))
	for i, l := range b.Locals {
		locals[i] = l.Ty.Key()
	}
	blocks := make([]any, len(b.Blocks))
	for i, bb := range b.Blocks {
		stmts := make([]string, len(bb.Statements))
		for j, s := range bb.Statements {
			stmts[j] = s.String()
		}
		term := ""
		if bb.Terminator != nil {
			term = bb.Terminator.String()
		}
		blocks[i] = map[string]any{
			"statements": stmts,
			"terminator": term,
			"cleanup":    bb.IsCleanup,
		}
	}
	return map[string]any{
		"def":       string(b.Def),
		"name":      b.Name,
		"arg_count": b.ArgCount,
		"locals":    locals,
		"blocks":    blocks,
	}
}

// Hash returns the content hash of the body.
func (b *Body) Hash() (string, error) {
	return canon.Hash(canon.DomainBody, b.Canonical())
}
