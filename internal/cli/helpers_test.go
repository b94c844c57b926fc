package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// arithCrate is shared with the harness scenarios.
var arithCrate = filepath.Join("..", "harness", "testdata", "crates", "arith.cue")

const addOnlyCrate = `crate: "adder"

procedures: add: {
	locals: ["i32", "i32", "i32"]
	args:   2
	blocks: [{
		statements: ["_0 = Add(copy _1, copy _2)"]
		terminator: "return"
	}]
}
`

const badTargetCrate = `procedures: f: {
	locals: ["i32"]
	blocks: [{terminator: "goto -> bb4"}]
}
`

const syntaxErrorCrate = `procedures: f: {
	locals: ["i32", "i32"]
	args:   1
	blocks: [{
		statements: ["_0 = Add(copy _1,"]
		terminator: "return"
	}]
}
`

// writeCrate writes src to a .cue file in a temp dir and returns its path.
func writeCrate(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name+".cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
