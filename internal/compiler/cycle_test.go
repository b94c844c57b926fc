package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xldenis/prusti-dev/internal/mir"
)

const recursiveCrate = `
procedures: {
	main: {
		locals: ["u32", "u32"]
		args: 1
		blocks: [
			{terminator: "_0 = call const fn fact(copy _1) -> bb1"},
			{terminator: "return"},
		]
	}
	fact: {
		locals: ["u32", "u32"]
		args: 1
		blocks: [
			{terminator: "_0 = call const fn fact(copy _1) -> bb1"},
			{terminator: "return"},
		]
	}
	even: {
		locals: ["bool", "u32"]
		args: 1
		blocks: [
			{terminator: "_0 = call const fn odd(copy _1) -> bb1"},
			{terminator: "return"},
		]
	}
	odd: {
		locals: ["bool", "u32"]
		args: 1
		blocks: [
			{terminator: "_0 = call const fn even(copy _1) -> bb1"},
			{terminator: "return"},
		]
	}
	leaf: {
		locals: ["bool"]
		extern: true
	}
}
`

func TestAnalyzeRecursion_Empty(t *testing.T) {
	c, err := CompileString("empty", ``)
	require.NoError(t, err)
	assert.Empty(t, AnalyzeRecursion(c))
}

func TestAnalyzeRecursion_DAG(t *testing.T) {
	c, err := CompileString("dag", demoCrate)
	require.NoError(t, err)
	assert.Empty(t, AnalyzeRecursion(c), "a call DAG has no recursion")
}

func TestAnalyzeRecursion_Groups(t *testing.T) {
	c, err := CompileString("rec", recursiveCrate)
	require.NoError(t, err)

	groups := AnalyzeRecursion(c)
	require.Len(t, groups, 2)

	assert.Equal(t, []mir.DefID{"fact", "fact"}, groups[0].Path)
	assert.Equal(t, "self-recursive procedure: fact -> fact", groups[0].Message)

	assert.Equal(t, []mir.DefID{"even", "odd", "even"}, groups[1].Path)
	assert.Equal(t, "mutually recursive procedures: even -> odd -> even", groups[1].Message)
}

func TestAnalyzeRecursion_IgnoresUndeclaredCallees(t *testing.T) {
	c, err := CompileString("x", `procedures: f: {locals: ["()"], blocks: [{terminator: "_0 = call const fn g() -> bb1"}, {terminator: "return"}]}`)
	require.NoError(t, err)
	assert.Empty(t, AnalyzeRecursion(c))
}

func TestTarjanSCC(t *testing.T) {
	graph := callGraph{"a": {"b"}, "b": {"a"}, "c": {}}
	sccs := tarjanSCC([]mir.DefID{"a", "b", "c"}, graph)
	require.Len(t, sccs, 2)
	assert.ElementsMatch(t, []mir.DefID{"a", "b"}, sccs[0])
	assert.Equal(t, []mir.DefID{"c"}, sccs[1])
}

func TestReconstructCyclePath_ThreeNodes(t *testing.T) {
	graph := callGraph{"a": {"b"}, "b": {"c"}, "c": {"a"}}
	path := reconstructCyclePath("b", []mir.DefID{"a", "b", "c"}, graph)
	assert.Equal(t, []mir.DefID{"b", "c", "a", "b"}, path)
}
