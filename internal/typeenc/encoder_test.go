package typeenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/taskenc"
	"github.com/xldenis/prusti-dev/internal/vir"
)

func newEncoder() (*Encoder, *taskenc.Deps, *vir.Ctx) {
	reg := taskenc.NewRegistry()
	vcx := vir.NewCtx()
	return New(reg, vcx), reg.NewDeps(), vcx
}

func TestName(t *testing.T) {
	tests := []struct {
		ty   mir.Ty
		want string
	}{
		{mir.Bool(), "Bool"},
		{mir.Int(32), "Int_i32"},
		{mir.Uint(0), "Uint_usize"},
		{mir.Unit(), "Tuple0"},
		{mir.Tuple(mir.Bool(), mir.Uint(8)), "Tuple2_Bool_Uint_u8"},
		{mir.Adt("Point", mir.Int(32), mir.Int(32)), "Adt_Point"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := Name(tt.ty)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Name(mir.Float(64))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	for _, wide := range []mir.Ty{mir.Int(128), mir.Uint(128)} {
		_, err = Name(wide)
		assert.ErrorIs(t, err, ErrUnsupportedType, wide.String())
	}
}

func TestEncoder_RejectsWideIntegers(t *testing.T) {
	e, deps, _ := newEncoder()
	_, err := e.Require(deps, mir.Uint(128))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = e.Require(deps, mir.Tuple(mir.Bool(), mir.Int(128)))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestEncoder_PrimDescriptor(t *testing.T) {
	e, deps, vcx := newEncoder()
	d, err := e.Require(deps, mir.Int(32))
	require.NoError(t, err)

	assert.Equal(t, "s_Int_i32", d.Snapshot.Name)
	assert.Equal(t, "p_Int_i32", d.RefToPred.Name)
	assert.Equal(t, "p_Int_i32_snap", d.RefToSnap.Name)
	assert.Equal(t, "assign_p_Int_i32", d.MethodAssign.Name)
	assert.Equal(t, 2, d.MethodAssign.Arity())

	prim, err := d.ExpectPrim()
	require.NoError(t, err)
	assert.Equal(t, vir.TypeInt, prim.Prim)
	_, err = d.ExpectStructlike()
	assert.Error(t, err)

	lit := prim.PrimToSnap.Apply(vcx, vcx.MkInt(-3))
	assert.Equal(t, "s_Int_i32_cons(-3)", vir.PrintExpr(lit))
}

func TestEncoder_StructDescriptor(t *testing.T) {
	e, deps, _ := newEncoder()
	pair := mir.Tuple(mir.Int(32), mir.Bool())
	d, err := e.Require(deps, pair)
	require.NoError(t, err)

	sd, err := d.ExpectStructlike()
	require.NoError(t, err)
	require.Len(t, sd.Fields, 2)
	assert.Equal(t, "p_Tuple2_Int_i32_Bool_field_1", sd.Fields[1].ProjectionP.Name)
	assert.Equal(t, mir.Bool(), sd.Fields[1].Ty)
	assert.Equal(t, "s_Tuple2_Int_i32_Bool_cons", sd.FieldSnapsToSnap.Name)
	assert.Equal(t, []vir.Type{vir.DomainType("s_Int_i32"), vir.DomainType("s_Bool")}, sd.FieldSnapsToSnap.Params)
}

func TestEncoder_UnitHasNullaryConstructor(t *testing.T) {
	e, deps, vcx := newEncoder()
	d, err := e.Require(deps, mir.Unit())
	require.NoError(t, err)
	sd, err := d.ExpectStructlike()
	require.NoError(t, err)
	assert.Equal(t, "s_Tuple0_cons()", vir.PrintExpr(sd.FieldSnapsToSnap.Apply(vcx)))
}

func TestEncoder_DeterministicAndCached(t *testing.T) {
	e, deps, _ := newEncoder()
	a, err := e.Require(deps, mir.Adt("Point", mir.Int(32), mir.Int(32)))
	require.NoError(t, err)
	b, err := e.Require(deps, mir.Adt("Point", mir.Int(32), mir.Int(32)))
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestEncoder_Unsupported(t *testing.T) {
	e, deps, _ := newEncoder()
	_, err := e.Require(deps, mir.Tuple(mir.Int(32), mir.Float(32)))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestEncoder_Decls(t *testing.T) {
	e, deps, _ := newEncoder()
	_, err := e.Require(deps, mir.Tuple(mir.Bool()))
	require.NoError(t, err)

	var prog vir.Program
	prog.Add(e.Decls()...)
	prog.SortSupport()

	out := vir.Print(&prog)
	assert.Contains(t, out, "domain s_Bool {\n  function s_Bool_cons(Bool): s_Bool\n  function s_Bool_val(s_Bool): Bool\n}")
	assert.Contains(t, out, "predicate p_Tuple1_Bool(self_p: Ref)")
	assert.Contains(t, out, "function p_Tuple1_Bool_field_0(self_p: Ref): Ref")
	assert.Contains(t, out, "function p_Bool_snap(self_p: Ref): s_Bool\n  requires p_Bool(self_p)")
	assert.Contains(t, out, "method assign_p_Bool(self_p: Ref, self_new: s_Bool)\n  ensures p_Bool(self_p)\n  ensures p_Bool_snap(self_p) == self_new")
}

func TestDescriptor_ExprFromBits(t *testing.T) {
	e, deps, vcx := newEncoder()
	tests := []struct {
		ty   mir.Ty
		bits uint64
		want string
	}{
		{mir.Bool(), 0, "s_Bool_cons(false)"},
		{mir.Bool(), 1, "s_Bool_cons(true)"},
		{mir.Uint(8), 255, "s_Uint_u8_cons(255)"},
		{mir.Int(8), 255, "s_Int_i8_cons(-1)"},
		{mir.Int(32), 7, "s_Int_i32_cons(7)"},
		{mir.Int(64), ^uint64(0), "s_Int_i64_cons(-1)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			d, err := e.Require(deps, tt.ty)
			require.NoError(t, err)
			expr, err := d.ExprFromBits(vcx, tt.bits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, vir.PrintExpr(expr))
		})
	}

	d, err := e.Require(deps, mir.Uint(8))
	require.NoError(t, err)
	_, err = d.ExprFromBits(vcx, 256)
	assert.Error(t, err)

	d, err = e.Require(deps, mir.Bool())
	require.NoError(t, err)
	_, err = d.ExprFromBits(vcx, 2)
	assert.Error(t, err)
}
