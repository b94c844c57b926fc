package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xldenis/prusti-dev/internal/crate"
	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/testutil"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_Clean(t *testing.T) {
	c, err := CompileString("demo", demoCrate)
	require.NoError(t, err)
	assert.Empty(t, Validate(c))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		code  string
		field string
	}{
		{
			name:  "args exceed locals",
			src:   `procedures: f: {locals: ["i32", "i32"], args: 2}`,
			code:  ErrArgCount,
			field: "procedures.f.args",
		},
		{
			name:  "missing goto target",
			src:   `procedures: f: {locals: ["i32"], blocks: [{terminator: "goto -> bb5"}]}`,
			code:  ErrBlockOutOfRange,
			field: "procedures.f.blocks[0].terminator",
		},
		{
			name:  "missing cleanup block",
			src:   `procedures: f: {locals: ["i32"], blocks: [{terminator: "drop(_0) -> bb0 unwind bb3"}]}`,
			code:  ErrBlockOutOfRange,
			field: "procedures.f.blocks[0].terminator",
		},
		{
			name:  "undeclared local",
			src:   `procedures: f: {locals: ["i32"], blocks: [{statements: ["_0 = copy _7"], terminator: "return"}]}`,
			code:  ErrLocalOutOfRange,
			field: "procedures.f.blocks[0].statements[0]",
		},
		{
			name:  "undeclared index local",
			src:   `procedures: f: {locals: ["i32"], blocks: [{statements: ["_0 = copy _0[_4]"], terminator: "return"}]}`,
			code:  ErrLocalOutOfRange,
			field: "procedures.f.blocks[0].statements[0]",
		},
		{
			name:  "undeclared switch discriminant",
			src:   `procedures: f: {locals: ["i32"], blocks: [{terminator: "switchInt(copy _2) -> [otherwise: bb0]"}]}`,
			code:  ErrLocalOutOfRange,
			field: "procedures.f.blocks[0].terminator",
		},
		{
			name:  "repack outside body",
			src:   `procedures: f: {locals: ["i32"], blocks: [{terminator: "return"}], repacks: "bb3[0]": start: ["expand _0 exclusive"]}`,
			code:  ErrRepackLocation,
			field: `procedures.f.repacks."bb3[0]"`,
		},
		{
			name:  "repack past terminator",
			src:   `procedures: f: {locals: ["i32"], blocks: [{terminator: "return"}], repacks: "bb0[2]": start: []}`,
			code:  ErrRepackLocation,
			field: `procedures.f.repacks."bb0[2]"`,
		},
		{
			name:  "weaken widens",
			src:   `procedures: f: {locals: ["i32"], blocks: [{terminator: "return"}], repacks: "bb0[0]": middle: ["weaken _0 write exclusive"]}`,
			code:  ErrRepackCapability,
			field: `procedures.f.repacks."bb0[0]".middle`,
		},
		{
			name:  "undeclared callee",
			src:   `procedures: f: {locals: ["i32"], blocks: [{terminator: "_0 = call const fn g() -> bb1"}, {terminator: "return"}]}`,
			code:  ErrUnknownCallee,
			field: "procedures.f.blocks[0].terminator",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := CompileString("bad", tt.src)
			require.NoError(t, err)

			errs := Validate(c)
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	c, err := CompileString("bad", `
		procedures: f: {
			locals: ["i32"]
			args: 1
			blocks: [{statements: ["_0 = copy _3"], terminator: "goto -> bb9"}]
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{ErrArgCount, ErrLocalOutOfRange, ErrBlockOutOfRange}, codes(Validate(c)))
}

func TestValidate_MissingTerminatorAndBody(t *testing.T) {
	b := testutil.NewBody("f", mir.Unit())
	b.Block(nil, nil)
	c := testutil.Crate(b.Procedure())
	require.NoError(t, c.Add(&crate.Procedure{Def: "g"}))

	errs := Validate(c)
	assert.Equal(t, []string{ErrMissingTerminator, ErrMissingBody}, codes(errs))
	assert.Equal(t, "procedures.f.blocks[0].terminator", errs[0].Field)
	assert.Equal(t, "procedures.g", errs[1].Field)
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "procedures.f.args", Message: "too many", Code: ErrArgCount}
	assert.Equal(t, "[E401] procedures.f.args: too many", err.Error())
}
