package mirtext

import "github.com/alecthomas/participle/v2/lexer"

// TypeExpr is a type: a primitive or struct name, a tuple, a function
// definition type or the never type.
type TypeExpr struct {
	Pos lexer.Position

	Tuple *TupleTypeExpr `  @@`
	Fn    *PathExpr      `| "fn" @@`
	Never bool           `| @"!"`
	Name  string         `| @Ident`
}

type TupleTypeExpr struct {
	Elems []*TypeExpr `"(" ( @@ ( "," @@ )* ","? )? ")"`
}

// PathExpr is a procedure path such as "inc" or "num::inc".
type PathExpr struct {
	Segments []string `@( Ident | Local ) ( ":" ":" @( Ident | Local ) )*`
}

// PlaceExpr is a local followed by projections. Dereferences and downcasts
// wrap their base in parentheses.
type PlaceExpr struct {
	Pos lexer.Position

	Paren *ParenPlaceExpr `(   "(" @@ ")"`
	Local string          `  | @Local )`
	Projs []*ProjExpr     `@@*`
}

type ParenPlaceExpr struct {
	Deref    *PlaceExpr    `  "*" @@`
	Downcast *DowncastExpr `| @@`
}

type DowncastExpr struct {
	Base    *PlaceExpr `@@`
	Variant string     `"as" "variant" "#" @Int`
}

type ProjExpr struct {
	Pos lexer.Position

	Field string `  "." @Int`
	Index string `| "[" @Local "]"`
}

// OperandExpr is "move <place>", "copy <place>" or "const <literal>".
type OperandExpr struct {
	Move  *PlaceExpr `  "move" @@`
	Copy  *PlaceExpr `| "copy" @@`
	Const *ConstExpr `| "const" @@`
}

type ConstExpr struct {
	Pos lexer.Position

	Unit  bool      `  @( "(" ")" )`
	Bool  string    `| @( "true" | "false" )`
	Fn    *PathExpr `| "fn" @@`
	Str   string    `| @String`
	Float string    `| @Float`
	Int   *IntExpr  `| @@`
}

// IntExpr is an integer literal with its type suffix, e.g. "-1_i32".
type IntExpr struct {
	Pos lexer.Position

	Neg    bool   `@"-"?`
	Value  string `@Int`
	Suffix string `@Ident`
}

// RvalueExpr is the right-hand side of an assignment.
type RvalueExpr struct {
	Use   *UseExpr   `  @@`
	Ref   *RefExpr   `| @@`
	Apply *ApplyExpr `| @@`
	Adt   *AdtExpr   `| @@`
	Array *ArrayExpr `| @@`
	Tuple *TupleExpr `| @@`
}

type RefExpr struct {
	Mutable bool       `"&" @"mut"?`
	Place   *PlaceExpr `@@`
}

// ApplyExpr is an operator or intrinsic applied to arguments, e.g.
// "Add(copy _1, copy _2)" or "Len(_3)".
type ApplyExpr struct {
	Pos lexer.Position

	Name string     `@Ident "("`
	Args []*ArgExpr `( @@ ( "," @@ )* )? ")"`
}

type ArgExpr struct {
	Operand *OperandExpr `  @@`
	Place   *PlaceExpr   `| @@`
}

type AdtExpr struct {
	Name   string         `@Ident "{"`
	Fields []*OperandExpr `( @@ ( "," @@ )* )? "}"`
}

type ArrayExpr struct {
	Elems []*OperandExpr `"[" ( @@ ( "," @@ )* )? "]"`
}

type TupleExpr struct {
	Fields []*OperandExpr `"(" ( @@ ( "," @@ )* ","? )? ")"`
}

type UseExpr struct {
	Operand *OperandExpr `@@`
	Cast    *TypeExpr    `( "as" @@ )?`
}

// StatementExpr is one statement.
type StatementExpr struct {
	Pos lexer.Position

	StorageLive      string               `  "StorageLive" "(" @Local ")"`
	StorageDead      string               `| "StorageDead" "(" @Local ")"`
	FakeRead         *PlaceExpr           `| "FakeRead" "(" @@ ")"`
	Retag            *PlaceExpr           `| "Retag" "(" @@ ")"`
	PlaceMention     *PlaceExpr           `| "PlaceMention" "(" @@ ")"`
	AscribeUserType  *PlaceExpr           `| "AscribeUserType" "(" @@ ")"`
	Deinit           *PlaceExpr           `| "Deinit" "(" @@ ")"`
	SetDiscriminant  *SetDiscriminantExpr `| "SetDiscriminant" "(" @@ ")"`
	Intrinsic        string               `| "Intrinsic" "(" @Ident ")"`
	Coverage         bool                 `| @"Coverage"`
	ConstEvalCounter bool                 `| @"ConstEvalCounter"`
	Nop              bool                 `| @"nop"`
	Assign           *AssignExpr          `| @@`
}

type SetDiscriminantExpr struct {
	Place   *PlaceExpr `@@ ","`
	Variant string     `@Int`
}

type AssignExpr struct {
	Place  *PlaceExpr  `@@ "="`
	Rvalue *RvalueExpr `@@`
}

// TerminatorExpr is one block terminator.
type TerminatorExpr struct {
	Pos lexer.Position

	Goto        string           `  "goto" "->" @Block`
	Switch      *SwitchExpr      `| @@`
	Return      bool             `| @"return"`
	Unreachable bool             `| @"unreachable"`
	Resume      bool             `| @"resume"`
	Assert      *AssertExpr      `| @@`
	FalseUnwind *FalseUnwindExpr `| @@`
	FalseEdge   *FalseEdgeExpr   `| @@`
	Drop        *DropExpr        `| @@`
	Call        *CallExpr        `| @@`
}

type SwitchExpr struct {
	Discr     *OperandExpr        `"switchInt" "(" @@ ")" "->" "["`
	Targets   []*SwitchTargetExpr `@@*`
	Otherwise string              `"otherwise" ":" @Block "]"`
}

type SwitchTargetExpr struct {
	Pos lexer.Position

	Value  string `@Int ":"`
	Target string `@Block ","`
}

type UnwindExpr struct {
	Action string `"unwind" @( "continue" | "unreachable" | "terminate" | Block )`
}

type AssertExpr struct {
	Negated bool         `"assert" "(" @"!"?`
	Cond    *OperandExpr `@@ ")" "->"`
	Target  string       `@Block`
	Unwind  *UnwindExpr  `@@?`
}

type FalseUnwindExpr struct {
	Target string      `"falseUnwind" "->" @Block`
	Unwind *UnwindExpr `@@?`
}

type FalseEdgeExpr struct {
	Real      string `"falseEdge" "->" "[" "real" ":" @Block ","`
	Imaginary string `"imaginary" ":" @Block "]"`
}

type DropExpr struct {
	Place  *PlaceExpr  `"drop" "(" @@ ")" "->"`
	Target string      `@Block`
	Unwind *UnwindExpr `@@?`
}

type CallExpr struct {
	Dest   *PlaceExpr     `@@ "=" "call"`
	Func   *OperandExpr   `@@`
	Args   []*OperandExpr `"(" ( @@ ( "," @@ )* )? ")"`
	Target string         `( "->" @Block )?`
	Unwind *UnwindExpr    `@@?`
}

// RepackExpr is "expand|collapse <place> <capability>" or
// "weaken <place> <from> <to>".
type RepackExpr struct {
	Pos lexer.Position

	Kind  string     `@( "expand" | "collapse" | "weaken" )`
	Place *PlaceExpr `@@`
	Caps  []string   `@Ident+`
}
