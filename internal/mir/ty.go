package mir

import (
	"fmt"
	"strconv"
	"strings"
)

// TyKind discriminates the source types the encoder knows about.
type TyKind int

const (
	TyBool TyKind = iota
	TyInt
	TyUint
	TyTuple
	TyAdt
	TyFnDef
	TyFloat
	TyStr
	TyNever
)

// String returns the kind name.
func (k TyKind) String() string {
	switch k {
	case TyBool:
		return "bool"
	case TyInt:
		return "int"
	case TyUint:
		return "uint"
	case TyTuple:
		return "tuple"
	case TyAdt:
		return "adt"
	case TyFnDef:
		return "fndef"
	case TyFloat:
		return "float"
	case TyStr:
		return "str"
	case TyNever:
		return "never"
	default:
		return fmt.Sprintf("TyKind(%d)", int(k))
	}
}

// Ty is a structural source type. Two types are the same type exactly when
// their keys are equal.
type Ty struct {
	Kind TyKind

	// Width is the bit width of Int, Uint and Float types. Zero denotes the
	// pointer-sized isize/usize.
	Width int

	// Name is the struct name of an Adt or the callee of a FnDef.
	Name string

	// Fields are the element types of a Tuple or the field types of an Adt.
	Fields []Ty
}

// Bool returns the boolean type.
func Bool() Ty { return Ty{Kind: TyBool} }

// Int returns the signed integer type of the given width (0 for isize).
func Int(width int) Ty { return Ty{Kind: TyInt, Width: width} }

// Uint returns the unsigned integer type of the given width (0 for usize).
func Uint(width int) Ty { return Ty{Kind: TyUint, Width: width} }

// Unit returns the empty tuple type.
func Unit() Ty { return Ty{Kind: TyTuple} }

// Tuple returns a tuple type over elems.
func Tuple(elems ...Ty) Ty { return Ty{Kind: TyTuple, Fields: elems} }

// Adt returns a named struct type with the given field types.
func Adt(name string, fields ...Ty) Ty { return Ty{Kind: TyAdt, Name: name, Fields: fields} }

// FnDef returns the zero-sized type of a reference to the procedure def.
func FnDef(def DefID) Ty { return Ty{Kind: TyFnDef, Name: string(def)} }

// Float returns the floating point type of the given width.
func Float(width int) Ty { return Ty{Kind: TyFloat, Width: width} }

// IsUnit reports whether t is the empty tuple.
func (t Ty) IsUnit() bool { return t.Kind == TyTuple && len(t.Fields) == 0 }

// IsStructlike reports whether values of t are built from fields.
func (t Ty) IsStructlike() bool { return t.Kind == TyTuple || t.Kind == TyAdt }

// Equal reports structural type identity.
func (t Ty) Equal(o Ty) bool { return t.Key() == o.Key() }

// Field returns the type of field i of a tuple or struct type.
func (t Ty) Field(i int) (Ty, bool) {
	if !t.IsStructlike() || i < 0 || i >= len(t.Fields) {
		return Ty{}, false
	}
	return t.Fields[i], true
}

// Key returns the structural identity of t. Struct keys include the field
// types so that two differently shaped structs of the same name never alias.
func (t Ty) Key() string {
	switch t.Kind {
	case TyTuple:
		return "(" + joinKeys(t.Fields) + ")"
	case TyAdt:
		return t.Name + "{" + joinKeys(t.Fields) + "}"
	default:
		return t.String()
	}
}

func joinKeys(tys []Ty) string {
	keys := make([]string, len(tys))
	for i, ty := range tys {
		keys[i] = ty.Key()
	}
	return strings.Join(keys, ",")
}

// String renders t the way it is written in crate files.
func (t Ty) String() string {
	switch t.Kind {
	case TyBool:
		return "bool"
	case TyInt:
		if t.Width == 0 {
			return "isize"
		}
		return fmt.Sprintf("i%d", t.Width)
	case TyUint:
		if t.Width == 0 {
			return "usize"
		}
		return fmt.Sprintf("u%d", t.Width)
	case TyFloat:
		return fmt.Sprintf("f%d", t.Width)
	case TyStr:
		return "str"
	case TyNever:
		return "!"
	case TyFnDef:
		return "fn " + t.Name
	case TyAdt:
		return t.Name
	case TyTuple:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.String()
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return t.Kind.String()
	}
}

// BitWidth returns the width used for literal truncation. Pointer-sized
// integers are treated as 64 bits wide.
func (t Ty) BitWidth() int {
	if t.Width == 0 {
		return 64
	}
	return t.Width
}

// ParsePrimitive resolves a primitive type name such as "i32", "usize" or
// "bool". It reports false for anything else.
func ParsePrimitive(name string) (Ty, bool) {
	switch name {
	case "bool":
		return Bool(), true
	case "isize":
		return Int(0), true
	case "usize":
		return Uint(0), true
	case "str":
		return Ty{Kind: TyStr}, true
	case "f32":
		return Float(32), true
	case "f64":
		return Float(64), true
	case "i8", "i16", "i32", "i64", "i128":
		w, _ := strconv.Atoi(name[1:])
		return Int(w), true
	case "u8", "u16", "u32", "u64", "u128":
		w, _ := strconv.Atoi(name[1:])
		return Uint(w), true
	}
	return Ty{}, false
}
