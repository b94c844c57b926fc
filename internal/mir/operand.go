package mir

import "fmt"

// Operand is a value read by a statement or terminator: Move, Copy or
// Constant.
type Operand interface {
	operand()
	String() string
}

// Move reads the value of a place and relinquishes the permission to it.
type Move struct {
	Place Place
}

// Copy reads the value of a place without relinquishing permission.
type Copy struct {
	Place Place
}

// Constant is an embedded literal of a given type.
type Constant struct {
	Ty    Ty
	Value ConstValue
}

func (*Move) operand()     {}
func (*Copy) operand()     {}
func (*Constant) operand() {}

func (o *Move) String() string { return "move " + o.Place.String() }
func (o *Copy) String() string { return "copy " + o.Place.String() }

func (o *Constant) String() string {
	switch o.Value.Kind {
	case ConstUnit:
		return "const ()"
	case ConstBool:
		return fmt.Sprintf("const %t", o.Value.Bool)
	case ConstInt:
		return fmt.Sprintf("const %d_%s", o.Value.Int, o.Ty)
	case ConstUint:
		return fmt.Sprintf("const %d_%s", o.Value.Uint, o.Ty)
	case ConstFn:
		return "const fn " + o.Value.Text
	case ConstStr:
		return fmt.Sprintf("const %q", o.Value.Text)
	default:
		return "const " + o.Value.Text + "_" + o.Ty.String()
	}
}

// ConstKind discriminates literal kinds.
type ConstKind int

const (
	ConstUnit ConstKind = iota
	ConstBool
	ConstInt
	ConstUint
	ConstFn
	ConstFloat
	ConstStr
)

// String returns the kind name.
func (k ConstKind) String() string {
	switch k {
	case ConstUnit:
		return "unit"
	case ConstBool:
		return "bool"
	case ConstInt:
		return "int"
	case ConstUint:
		return "uint"
	case ConstFn:
		return "fn"
	case ConstFloat:
		return "float"
	case ConstStr:
		return "str"
	default:
		return fmt.Sprintf("ConstKind(%d)", int(k))
	}
}

// ConstValue is the payload of a Constant.
type ConstValue struct {
	Kind ConstKind
	Bool bool
	Int  int64
	Uint uint64

	// Text holds a callee name, a string literal or a float literal.
	Text string
}

// UnitConst returns the constant ().
func UnitConst() *Constant {
	return &Constant{Ty: Unit(), Value: ConstValue{Kind: ConstUnit}}
}

// BoolConst returns a boolean constant.
func BoolConst(b bool) *Constant {
	return &Constant{Ty: Bool(), Value: ConstValue{Kind: ConstBool, Bool: b}}
}

// IntConst returns a signed integer constant of type ty.
func IntConst(v int64, ty Ty) *Constant {
	return &Constant{Ty: ty, Value: ConstValue{Kind: ConstInt, Int: v}}
}

// UintConst returns an unsigned integer constant of type ty.
func UintConst(v uint64, ty Ty) *Constant {
	return &Constant{Ty: ty, Value: ConstValue{Kind: ConstUint, Uint: v}}
}

// FnConst returns the zero-sized constant naming procedure def.
func FnConst(def DefID) *Constant {
	return &Constant{Ty: FnDef(def), Value: ConstValue{Kind: ConstFn, Text: string(def)}}
}
