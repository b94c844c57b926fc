package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "prusti-encode", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"encode", "validate", "test", "show"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestEncodeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	encodeCmd, _, err := cmd.Find([]string{"encode"})
	require.NoError(t, err)

	for _, name := range []string{"proc", "workers", "db", "output", "total", "reach-blocks", "no-comments"} {
		assert.NotNil(t, encodeCmd.Flags().Lookup(name), "encode should have --%s", name)
	}
	assert.Equal(t, "o", encodeCmd.Flags().Lookup("output").Shorthand)
	assert.Equal(t, "4", encodeCmd.Flags().Lookup("workers").DefValue)
}

func TestShowCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	showCmd, _, err := cmd.Find([]string{"show"})
	require.NoError(t, err)

	assert.NotNil(t, showCmd.Flags().Lookup("db"))
	assert.NotNil(t, showCmd.Flags().Lookup("run"))
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "validate", "x.cue"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}
