package mir

import "fmt"

// BinOp is a binary operator.
type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinBitXor
	BinBitAnd
	BinBitOr
	BinShl
	BinShr
	BinEq
	BinLt
	BinLe
	BinNe
	BinGe
	BinGt
	BinOffset
)

var binOpNames = [...]string{
	BinAdd:    "Add",
	BinSub:    "Sub",
	BinMul:    "Mul",
	BinDiv:    "Div",
	BinRem:    "Rem",
	BinBitXor: "BitXor",
	BinBitAnd: "BitAnd",
	BinBitOr:  "BitOr",
	BinShl:    "Shl",
	BinShr:    "Shr",
	BinEq:     "Eq",
	BinLt:     "Lt",
	BinLe:     "Le",
	BinNe:     "Ne",
	BinGe:     "Ge",
	BinGt:     "Gt",
	BinOffset: "Offset",
}

// String returns the operator name, e.g. "Add".
func (op BinOp) String() string {
	if int(op) >= 0 && int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return fmt.Sprintf("BinOp(%d)", int(op))
}

// IsComparison reports whether op yields a boolean.
func (op BinOp) IsComparison() bool {
	switch op {
	case BinEq, BinLt, BinLe, BinNe, BinGe, BinGt:
		return true
	}
	return false
}

// ParseBinOp resolves an operator name.
func ParseBinOp(name string) (BinOp, bool) {
	for i, n := range binOpNames {
		if n == name {
			return BinOp(i), true
		}
	}
	return 0, false
}

// UnOp is a unary operator.
type UnOp int

const (
	UnNot UnOp = iota
	UnNeg
)

// String returns the operator name.
func (op UnOp) String() string {
	switch op {
	case UnNot:
		return "Not"
	case UnNeg:
		return "Neg"
	default:
		return fmt.Sprintf("UnOp(%d)", int(op))
	}
}

// ParseUnOp resolves an operator name.
func ParseUnOp(name string) (UnOp, bool) {
	switch name {
	case "Not":
		return UnNot, true
	case "Neg":
		return UnNeg, true
	}
	return 0, false
}

// Rvalue is the right-hand side of an assignment.
type Rvalue interface {
	rvalue()
	String() string
}

// Use reads an operand.
type Use struct {
	Operand Operand
}

// BinaryOp applies a binary operator.
type BinaryOp struct {
	Op       BinOp
	LHS, RHS Operand
}

// CheckedBinaryOp applies a binary operator and yields (result, overflowed).
type CheckedBinaryOp struct {
	Op       BinOp
	LHS, RHS Operand
}

// UnaryOp applies a unary operator.
type UnaryOp struct {
	Op      UnOp
	Operand Operand
}

// AggregateKind discriminates aggregate constructions.
type AggregateKind int

const (
	AggregateTuple AggregateKind = iota
	AggregateAdt
	AggregateArray
	AggregateClosure
)

// Aggregate builds a tuple, struct, array or closure from field operands.
type Aggregate struct {
	Kind AggregateKind

	// Name is the struct name of an AggregateAdt.
	Name   string
	Fields []Operand
}

// Ref borrows a place.
type Ref struct {
	Place   Place
	Mutable bool
}

// Cast converts an operand to another type.
type Cast struct {
	Operand Operand
	Ty      Ty
}

// Len reads the length of an array or slice place.
type Len struct {
	Place Place
}

// Discriminant reads the discriminant of an enum place.
type Discriminant struct {
	Place Place
}

func (*Use) rvalue()             {}
func (*BinaryOp) rvalue()        {}
func (*CheckedBinaryOp) rvalue() {}
func (*UnaryOp) rvalue()         {}
func (*Aggregate) rvalue()       {}
func (*Ref) rvalue()             {}
func (*Cast) rvalue()            {}
func (*Len) rvalue()             {}
func (*Discriminant) rvalue()    {}

func (r *Use) String() string { return r.Operand.String() }

func (r *BinaryOp) String() string {
	return fmt.Sprintf("%s(%s, %s)", r.Op, r.LHS, r.RHS)
}

func (r *CheckedBinaryOp) String() string {
	return fmt.Sprintf("Checked%s(%s, %s)", r.Op, r.LHS, r.RHS)
}

func (r *UnaryOp) String() string {
	return fmt.Sprintf("%s(%s)", r.Op, r.Operand)
}

func (r *Aggregate) String() string {
	switch r.Kind {
	case AggregateAdt:
		return fmt.Sprintf("%s { %s }", r.Name, joinOperands(r.Fields))
	case AggregateArray:
		return "[" + joinOperands(r.Fields) + "]"
	case AggregateClosure:
		return "closure(" + joinOperands(r.Fields) + ")"
	default:
		if len(r.Fields) == 1 {
			return "(" + r.Fields[0].String() + ",)"
		}
		return "(" + joinOperands(r.Fields) + ")"
	}
}

func (r *Ref) String() string {
	if r.Mutable {
		return "&mut " + r.Place.String()
	}
	return "&" + r.Place.String()
}

func (r *Cast) String() string { return fmt.Sprintf("%s as %s", r.Operand, r.Ty) }

func (r *Len) String() string { return fmt.Sprintf("Len(%s)", r.Place) }

func (r *Discriminant) String() string { return fmt.Sprintf("discriminant(%s)", r.Place) }
