package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/taskenc"
	"github.com/xldenis/prusti-dev/internal/typeenc"
	"github.com/xldenis/prusti-dev/internal/vir"
)

func newResolver() (*Resolver, *taskenc.Deps) {
	reg := taskenc.NewRegistry()
	vcx := vir.NewCtx()
	return New(reg, vcx, typeenc.New(reg, vcx)), reg.NewDeps()
}

func TestResolver_BinOp(t *testing.T) {
	r, deps := newResolver()
	i32 := mir.Int(32)

	f, err := r.BinOp(deps, mir.BinAdd, i32, i32, i32)
	require.NoError(t, err)
	assert.Equal(t, "mir_binop_Add_Int_i32_Int_i32", f.Name)
	assert.Equal(t, vir.DomainType("s_Int_i32"), f.Result)
	assert.Equal(t, 2, f.Arity())

	f, err = r.BinOp(deps, mir.BinLt, mir.Bool(), i32, i32)
	require.NoError(t, err)
	assert.Equal(t, vir.DomainType("s_Bool"), f.Result)

	f, err = r.BinOp(deps, mir.BinShl, mir.Uint(8), mir.Uint(8), mir.Uint(32))
	require.NoError(t, err)
	assert.Equal(t, "mir_binop_Shl_Uint_u8_Uint_u32", f.Name)
}

func TestResolver_Cached(t *testing.T) {
	r, deps := newResolver()
	i32 := mir.Int(32)
	_, err := r.BinOp(deps, mir.BinAdd, i32, i32, i32)
	require.NoError(t, err)
	_, err = r.BinOp(deps, mir.BinAdd, i32, i32, i32)
	require.NoError(t, err)
	assert.Len(t, r.Decls(), 1)
}

func TestResolver_UnsupportedVersusMalformed(t *testing.T) {
	r, deps := newResolver()
	i32, f64 := mir.Int(32), mir.Float(64)

	tests := []struct {
		name    string
		resolve func() error
		want    error
	}{
		{"float add", func() error { _, err := r.BinOp(deps, mir.BinAdd, f64, f64, f64); return err }, ErrUnsupportedOperator},
		{"offset", func() error { _, err := r.BinOp(deps, mir.BinOffset, i32, i32, i32); return err }, ErrUnsupportedOperator},
		{"checked div", func() error { _, err := r.CheckedBinOp(deps, mir.BinDiv, mir.Tuple(i32, mir.Bool()), i32, i32); return err }, ErrUnsupportedOperator},
		{"float neg", func() error { _, err := r.UnOp(deps, mir.UnNeg, f64, f64); return err }, ErrUnsupportedOperator},
		{"mismatched operands", func() error { _, err := r.BinOp(deps, mir.BinAdd, i32, i32, mir.Int(64)); return err }, ErrMalformedOperator},
		{"comparison yields int", func() error { _, err := r.BinOp(deps, mir.BinEq, i32, i32, i32); return err }, ErrMalformedOperator},
		{"bool add", func() error { _, err := r.BinOp(deps, mir.BinAdd, mir.Bool(), mir.Bool(), mir.Bool()); return err }, ErrMalformedOperator},
		{"tuple add", func() error { _, err := r.BinOp(deps, mir.BinAdd, mir.Unit(), mir.Unit(), mir.Unit()); return err }, ErrMalformedOperator},
		{"checked wrong result", func() error { _, err := r.CheckedBinOp(deps, mir.BinAdd, i32, i32, i32); return err }, ErrMalformedOperator},
		{"neg unsigned", func() error { _, err := r.UnOp(deps, mir.UnNeg, mir.Uint(8), mir.Uint(8)); return err }, ErrMalformedOperator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resolve()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestResolver_CheckedAndUnary(t *testing.T) {
	r, deps := newResolver()
	u8 := mir.Uint(8)

	f, err := r.CheckedBinOp(deps, mir.BinAdd, mir.Tuple(u8, mir.Bool()), u8, u8)
	require.NoError(t, err)
	assert.Equal(t, "mir_checkedbinop_Add_Uint_u8_Uint_u8", f.Name)
	assert.Equal(t, vir.DomainType("s_Tuple2_Uint_u8_Bool"), f.Result)

	f, err = r.UnOp(deps, mir.UnNot, mir.Bool(), mir.Bool())
	require.NoError(t, err)
	assert.Equal(t, "mir_unop_Not_Bool", f.Name)
	assert.Equal(t, 1, f.Arity())
}

func TestResolver_DeclPostcondition(t *testing.T) {
	r, deps := newResolver()
	i32 := mir.Int(32)
	_, err := r.BinOp(deps, mir.BinAdd, i32, i32, i32)
	require.NoError(t, err)

	decls := r.Decls()
	require.Len(t, decls, 1)
	fn, ok := decls[0].(*vir.Function)
	require.True(t, ok)
	require.Len(t, fn.Posts, 1)
	assert.Equal(t,
		"s_Int_i32_val(result) == (s_Int_i32_val(arg0) + s_Int_i32_val(arg1))",
		vir.PrintExpr(fn.Posts[0]))
}
