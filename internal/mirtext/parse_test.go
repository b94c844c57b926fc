package mirtext

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xldenis/prusti-dev/internal/fpcs"
	"github.com/xldenis/prusti-dev/internal/mir"
)

func testContext() *Context {
	point := mir.Adt("Point", mir.Int(32), mir.Int(32))
	return &Context{
		Types: map[string]mir.Ty{"Point": point},
		Locals: []mir.Ty{
			mir.Int(32),
			mir.Tuple(mir.Int(32), mir.Bool()),
			point,
			mir.Bool(),
			mir.Uint(8),
		},
	}
}

// =============================================================================
// Types
// =============================================================================

func TestParseType(t *testing.T) {
	ctx := testContext()
	tests := []struct {
		src  string
		want mir.Ty
	}{
		{"i32", mir.Int(32)},
		{"usize", mir.Uint(0)},
		{"bool", mir.Bool()},
		{"()", mir.Unit()},
		{"(u8,)", mir.Tuple(mir.Uint(8))},
		{"(i32, (bool, u8))", mir.Tuple(mir.Int(32), mir.Tuple(mir.Bool(), mir.Uint(8)))},
		{"Point", mir.Adt("Point", mir.Int(32), mir.Int(32))},
		{"fn num::inc", mir.FnDef("num::inc")},
		{"!", mir.Ty{Kind: mir.TyNever}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ctx.ParseType(tt.src)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseType_Unknown(t *testing.T) {
	_, err := testContext().ParseType("(i32, Line)")
	require.Error(t, err)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 7, pe.Column)
	assert.Contains(t, pe.Message, `unknown type "Line"`)
}

// =============================================================================
// Places
// =============================================================================

func TestParsePlace_FieldTypes(t *testing.T) {
	ctx := testContext()

	p, err := ctx.ParsePlace("_1.1")
	require.NoError(t, err)
	require.Len(t, p.Projection, 1)
	assert.Equal(t, mir.Local(1), p.Local)
	assert.Equal(t, 1, p.Projection[0].Field)
	assert.True(t, mir.Bool().Equal(p.Projection[0].Ty))

	p, err = ctx.ParsePlace("_2.0")
	require.NoError(t, err)
	assert.True(t, mir.Int(32).Equal(p.Projection[0].Ty))
}

func TestParsePlace_Projections(t *testing.T) {
	ctx := testContext()
	for _, src := range []string{"_0", "(*_1).0", "_1[_4]", "(_2 as variant#1).0", "((*_2) as variant#0)"} {
		t.Run(src, func(t *testing.T) {
			p, err := ctx.ParsePlace(src)
			require.NoError(t, err)
			assert.Equal(t, src, p.String())
		})
	}

	p, err := ctx.ParsePlace("(*_1).0")
	require.NoError(t, err)
	assert.Equal(t, mir.ProjDeref, p.Projection[0].Kind)
	assert.Equal(t, mir.Ty{}, p.Projection[1].Ty, "fields behind a deref are untyped")
}

func TestParsePlace_Errors(t *testing.T) {
	ctx := testContext()
	tests := []struct {
		src     string
		message string
	}{
		{"_1.2", "field 2 out of range"},
		{"_3.0", "has no fields"},
		{"_9.0", "unknown local _9"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := ctx.ParsePlace(tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

// =============================================================================
// Statements
// =============================================================================

func TestParseStatement_RoundTrip(t *testing.T) {
	ctx := testContext()
	for _, src := range []string{
		"_0 = Add(copy _1.0, const 1_i32)",
		"_1 = CheckedMul(move _0, const -3_i32)",
		"_3 = Not(copy _3)",
		"_0 = Neg(copy _0)",
		"_3 = Lt(copy _2.0, copy _2.1)",
		"_2 = Point { copy _1.0, const 2_i32 }",
		"_1 = (copy _0, const true)",
		"_1 = (copy _0,)",
		"_0 = move _4 as i32",
		"_0 = copy (*_1).1",
		"_4 = Len(_1)",
		"_4 = discriminant(_2)",
		"_3 = &mut _2.0",
		"_3 = &_2",
		"_0 = [const 1_i32, const 2_i32]",
		"_0 = closure(copy _1)",
		"_0 = const ()",
		"_0 = const 1.5_f64",
		`_0 = const "hi"`,
		"_0 = const fn inc",
		"_4 = const 255_u8",
		"StorageLive(_3)",
		"StorageDead(_3)",
		"FakeRead(_1)",
		"Retag(_2)",
		"PlaceMention(_1.1)",
		"AscribeUserType(_2)",
		"Deinit(_2)",
		"SetDiscriminant(_2, 1)",
		"Intrinsic(assume)",
		"Coverage",
		"ConstEvalCounter",
		"nop",
	} {
		t.Run(src, func(t *testing.T) {
			stmt, err := ctx.ParseStatement(src)
			require.NoError(t, err)
			assert.Equal(t, src, stmt.String())
		})
	}
}

func TestParseStatement_Structure(t *testing.T) {
	stmt, err := testContext().ParseStatement("_0 = Add(copy _1.0, const 1_i32)")
	require.NoError(t, err)

	assign, ok := stmt.(*mir.Assign)
	require.True(t, ok)
	assert.True(t, assign.Place.IsLocal())

	bin, ok := assign.Rvalue.(*mir.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, mir.BinAdd, bin.Op)

	lhs, ok := bin.LHS.(*mir.Copy)
	require.True(t, ok)
	assert.True(t, mir.Int(32).Equal(lhs.Place.Projection[0].Ty))

	rhs, ok := bin.RHS.(*mir.Constant)
	require.True(t, ok)
	assert.Equal(t, mir.ConstInt, rhs.Value.Kind)
	assert.Equal(t, int64(1), rhs.Value.Int)
}

func TestParseStatement_Constants(t *testing.T) {
	ctx := testContext()

	stmt, err := ctx.ParseStatement("_4 = const 7_u8")
	require.NoError(t, err)
	c := stmt.(*mir.Assign).Rvalue.(*mir.Use).Operand.(*mir.Constant)
	assert.Equal(t, mir.ConstUint, c.Value.Kind)
	assert.Equal(t, uint64(7), c.Value.Uint)
	assert.True(t, mir.Uint(8).Equal(c.Ty))

	stmt, err = ctx.ParseStatement("_0 = const fn num::inc")
	require.NoError(t, err)
	c = stmt.(*mir.Assign).Rvalue.(*mir.Use).Operand.(*mir.Constant)
	assert.Equal(t, mir.ConstFn, c.Value.Kind)
	assert.Equal(t, "num::inc", c.Value.Text)
}

func TestParseStatement_Errors(t *testing.T) {
	ctx := testContext()
	tests := []struct {
		src     string
		message string
	}{
		{"_4 = const 300_u8", "u8 literal out of range"},
		{"_4 = const -1_u8", "negative u8 literal"},
		{"_0 = const 1_bool", "bad integer suffix"},
		{"_0 = Foo(copy _1)", `unknown operator "Foo"`},
		{"_3 = Not(copy _3, copy _3)", "Not takes one operand"},
		{"_0 = Add(copy _1)", "Add takes two operands"},
		{"_4 = Len(copy _1)", "Len takes one place"},
		{"_0 = Add(copy _1.0, _2)", "Add takes operands"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := ctx.ParseStatement(tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseStatement_SyntaxError(t *testing.T) {
	_, err := testContext().ParseStatement("_0 = Add(copy _1,")
	require.Error(t, err)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "_0 = Add(copy _1,", pe.Input)
	assert.Positive(t, pe.Column)
}

// =============================================================================
// Terminators
// =============================================================================

func TestParseTerminator_RoundTrip(t *testing.T) {
	ctx := testContext()
	for _, src := range []string{
		"goto -> bb1",
		"switchInt(copy _3) -> [0: bb1, 1: bb2, otherwise: bb3]",
		"switchInt(copy _4) -> [otherwise: bb3]",
		"return",
		"unreachable",
		"resume",
		"assert(!copy _3) -> bb1 unwind bb4",
		"assert(copy _1.1) -> bb1",
		"falseUnwind -> bb2 unwind unreachable",
		"falseUnwind -> bb2",
		"falseEdge -> [real: bb1, imaginary: bb2]",
		"drop(_2) -> bb1 unwind terminate",
		"_0 = call const fn inc(move _1.0, const 1_i32) -> bb1",
		"_0 = call const fn num::inc() unwind bb3",
		"_0 = call copy _4(copy _0) -> bb1",
	} {
		t.Run(src, func(t *testing.T) {
			term, err := ctx.ParseTerminator(src)
			require.NoError(t, err)
			assert.Equal(t, src, term.String())
		})
	}
}

func TestParseTerminator_Structure(t *testing.T) {
	ctx := testContext()

	term, err := ctx.ParseTerminator("switchInt(copy _3) -> [0: bb1, 1: bb2, otherwise: bb3]")
	require.NoError(t, err)
	sw := term.(*mir.SwitchInt)
	assert.Equal(t, []mir.SwitchTarget{{Value: 0, Target: 1}, {Value: 1, Target: 2}}, sw.Targets)
	assert.Equal(t, mir.BasicBlock(3), sw.Otherwise)

	term, err = ctx.ParseTerminator("_0 = call const fn inc(move _1.0) unwind bb3")
	require.NoError(t, err)
	call := term.(*mir.Call)
	assert.Nil(t, call.Target)
	assert.Equal(t, mir.Cleanup(3), call.Unwind)

	term, err = ctx.ParseTerminator("assert(!copy _3) -> bb1")
	require.NoError(t, err)
	assert.False(t, term.(*mir.Assert).Expected)
	assert.Equal(t, mir.UnwindContinue, term.(*mir.Assert).Unwind.Kind)
}

func TestParseTerminator_SyntaxError(t *testing.T) {
	_, err := testContext().ParseTerminator("goto bb1")
	require.Error(t, err)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 6, pe.Column)
}

// =============================================================================
// Repacks
// =============================================================================

func TestParseRepack(t *testing.T) {
	ctx := testContext()
	tests := []struct {
		src  string
		want fpcs.RepackOp
	}{
		{"expand _1 exclusive", fpcs.ExpandOp(mir.PlaceOf(1), fpcs.Exclusive)},
		{"collapse _2 write", fpcs.CollapseOp(mir.PlaceOf(2), fpcs.Write)},
		{"weaken _3 exclusive write", fpcs.WeakenOp(mir.PlaceOf(3), fpcs.Exclusive, fpcs.Write)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ctx.ParseRepack(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.src, got.String())
		})
	}

	op, err := ctx.ParseRepack("weaken _2.0 e w")
	require.NoError(t, err)
	assert.Equal(t, "weaken _2.0 exclusive write", op.String())
	assert.True(t, mir.Int(32).Equal(op.Place.Projection[0].Ty))
}

func TestParseRepack_Errors(t *testing.T) {
	ctx := testContext()
	tests := []struct {
		src     string
		message string
	}{
		{"expand _1 exclusive write", "expand takes 1 capabilities, got 2"},
		{"weaken _1 exclusive", "weaken takes 2 capabilities, got 1"},
		{"expand _1 shared", `unknown capability "shared"`},
		{"split _1 exclusive", "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := ctx.ParseRepack(tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

// =============================================================================
// Reporting
// =============================================================================

func TestReport(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	Report(&buf, &Error{Input: "goto bb1", Column: 6, Message: `unexpected token "bb1"`})
	assert.Equal(t, "syntax error at column 6:\ngoto bb1\n     ^\n-> unexpected token \"bb1\"\n", buf.String())

	buf.Reset()
	Report(&buf, assert.AnError)
	assert.Contains(t, buf.String(), "syntax error: ")
}

func TestError_Caret(t *testing.T) {
	e := &Error{Input: "expand _1", Column: 8, Message: "x"}
	assert.Equal(t, "expand _1\n       ^", e.Caret())
	assert.Equal(t, `"expand _1":8: x`, e.Error())
}
