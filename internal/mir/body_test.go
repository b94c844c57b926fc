package mir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addBody() *Body {
	i32 := Int(32)
	return &Body{
		Def:      "add",
		Name:     "add",
		ArgCount: 2,
		Locals:   []LocalDecl{{Ty: i32}, {Ty: i32}, {Ty: i32}},
		Blocks: []BasicBlockData{{
			Statements: []Statement{
				&Assign{
					Place: PlaceOf(0),
					Rvalue: &BinaryOp{
						Op:  BinAdd,
						LHS: &Copy{Place: PlaceOf(1)},
						RHS: &Copy{Place: PlaceOf(2)},
					},
				},
			},
			Terminator: &Return{},
		}},
	}
}

func TestBody_DebugForms(t *testing.T) {
	body := addBody()
	assert.Equal(t, "_0 = Add(copy _1, copy _2)", body.Blocks[0].Statements[0].String())
	assert.Equal(t, "return", body.Blocks[0].Terminator.String())
}

func TestTerminator_DebugForms(t *testing.T) {
	target := BasicBlock(1)
	tests := []struct {
		term Terminator
		want string
	}{
		{&Goto{Target: 3}, "goto -> bb3"},
		{
			&SwitchInt{
				Discr:     &Copy{Place: PlaceOf(1)},
				Targets:   []SwitchTarget{{Value: 0, Target: 1}, {Value: 1, Target: 2}},
				Otherwise: 3,
			},
			"switchInt(copy _1) -> [0: bb1, 1: bb2, otherwise: bb3]",
		},
		{
			&Call{
				Func:        &Constant{Ty: FnDef("f"), Value: ConstValue{Kind: ConstFn, Text: "f"}},
				Args:        []Operand{&Move{Place: PlaceOf(1)}},
				Destination: PlaceOf(0),
				Target:      &target,
				Unwind:      Cleanup(4),
			},
			"_0 = call const fn f(move _1) -> bb1 unwind bb4",
		},
		{&Assert{Cond: &Copy{Place: PlaceOf(2)}, Expected: false, Target: 1, Unwind: Cleanup(2)}, "assert(!copy _2) -> bb1 unwind bb2"},
		{&FalseUnwind{RealTarget: 1}, "falseUnwind -> bb1"},
		{&Drop{Place: PlaceOf(1), Target: 2, Unwind: UnwindAction{Kind: UnwindTerminate}}, "drop(_1) -> bb2 unwind terminate"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.term.String())
		})
	}
}

func TestPlace_String(t *testing.T) {
	p := PlaceOf(1).Field(0, Int(32))
	assert.Equal(t, "_1.0", p.String())
	assert.Equal(t, "(*_2).1", PlaceOf(2).Deref().Field(1, Bool()).String())
}

func TestPlace_FieldDoesNotShareProjection(t *testing.T) {
	base := PlaceOf(1).Field(0, Tuple(Int(32), Int(32)))
	a := base.Field(0, Int(32))
	b := base.Field(1, Int(32))
	assert.Equal(t, 0, a.Projection[1].Field)
	assert.Equal(t, 1, b.Projection[1].Field)
	assert.Len(t, base.Projection, 1)
}

func TestBody_PlaceTy(t *testing.T) {
	pair := Tuple(Int(32), Bool())
	body := &Body{Locals: []LocalDecl{{Ty: Unit()}, {Ty: pair}}}

	ty, err := body.PlaceTy(PlaceOf(1).Field(1, Bool()))
	require.NoError(t, err)
	assert.Equal(t, Bool(), ty)

	_, err = body.PlaceTy(PlaceOf(1).Deref())
	assert.Error(t, err)

	_, err = body.PlaceTy(PlaceOf(7))
	assert.Error(t, err)
}

func TestBody_RvalueTy(t *testing.T) {
	body := addBody()
	ty, err := body.RvalueTy(&BinaryOp{Op: BinLt, LHS: &Copy{Place: PlaceOf(1)}, RHS: &Copy{Place: PlaceOf(2)}})
	require.NoError(t, err)
	assert.Equal(t, Bool(), ty)

	ty, err = body.RvalueTy(&CheckedBinaryOp{Op: BinAdd, LHS: &Copy{Place: PlaceOf(1)}, RHS: &Copy{Place: PlaceOf(2)}})
	require.NoError(t, err)
	assert.Equal(t, Tuple(Int(32), Bool()), ty)
}

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation("bb2[3]")
	require.NoError(t, err)
	assert.Equal(t, Location{Block: 2, Statement: 3}, loc)
	assert.Equal(t, "bb2[3]", loc.String())

	for _, bad := range []string{"bb2", "b2[3]", "bb2[3]x", "bb-1[0]"} {
		_, err := ParseLocation(bad)
		assert.Error(t, err, bad)
	}
}

func TestBody_HashStable(t *testing.T) {
	h1, err := addBody().Hash()
	require.NoError(t, err)
	h2, err := addBody().Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	changed := addBody()
	changed.Blocks[0].Terminator = &Unreachable{}
	h3, err := changed.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
