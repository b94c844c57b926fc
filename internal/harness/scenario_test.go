package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ResolvesCratePath(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/add.yaml")
	require.NoError(t, err)

	assert.Equal(t, "add", s.Name)
	assert.Equal(t, filepath.Join("testdata", "crates", "arith.cue"), s.Crate)
	assert.Equal(t, []string{"add"}, s.Procedures)
	assert.True(t, s.Golden)
	require.Len(t, s.Expect, 1)
	assert.Equal(t, OutcomeEncoded, s.Expect[0].Outcome)
}

func TestLoadScenario_MissingCrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: x
description: d
crate: nowhere.cue
golden: true
`), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crate not found")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/none.yaml")
	assert.Error(t, err)
}

func TestParseScenario_Defaults(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: x
description: d
source: "procedures: {}"
golden: true
`))
	require.NoError(t, err)
	assert.True(t, s.Options.comments())
	assert.Equal(t, map[string]any{
		"comments":      true,
		"reach_blocks":  false,
		"total_rvalues": false,
		"workers":       1,
	}, s.Options.Map())
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: d\nsource: s\ngolden: true\nflow: []\n",
			want: "field flow not found",
		},
		{
			name: "missing name",
			yaml: "description: d\nsource: s\ngolden: true\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\nsource: s\ngolden: true\n",
			want: "description is required",
		},
		{
			name: "no crate",
			yaml: "name: x\ndescription: d\ngolden: true\n",
			want: "one of crate or source is required",
		},
		{
			name: "both crate and source",
			yaml: "name: x\ndescription: d\ncrate: c.cue\nsource: s\ngolden: true\n",
			want: "mutually exclusive",
		},
		{
			name: "checks nothing",
			yaml: "name: x\ndescription: d\nsource: s\n",
			want: "scenario checks nothing",
		},
		{
			name: "bad outcome",
			yaml: "name: x\ndescription: d\nsource: s\nexpect: [{procedure: f, outcome: maybe}]\n",
			want: `outcome must be "encoded" or "failed"`,
		},
		{
			name: "code on encoded outcome",
			yaml: "name: x\ndescription: d\nsource: s\nexpect: [{procedure: f, outcome: encoded, code: E201}]\n",
			want: "only apply to failed outcomes",
		},
		{
			name: "expect without procedure",
			yaml: "name: x\ndescription: d\nsource: s\nexpect: [{outcome: encoded}]\n",
			want: "expect[0]: procedure is required",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\ndescription: d\nsource: s\nassertions: [{type: trace_order}]\n",
			want: `unknown assertion type "trace_order"`,
		},
		{
			name: "method_contains without text",
			yaml: "name: x\ndescription: d\nsource: s\nassertions: [{type: method_contains, procedure: f}]\n",
			want: "procedure and text are required",
		},
		{
			name: "recursive without group",
			yaml: "name: x\ndescription: d\nsource: s\nassertions: [{type: recursive}]\n",
			want: "group is required",
		},
		{
			name: "negative workers",
			yaml: "name: x\ndescription: d\nsource: s\ngolden: true\noptions: {workers: -1}\n",
			want: "workers must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
