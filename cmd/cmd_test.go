package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	c.SetOut(out)
	c.SetErr(&bytes.Buffer{})
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

func TestMerge(t *testing.T) {
	testCases := []struct {
		args     []string
		expected string
	}{
		{[]string{"int"}, "int"},
		{[]string{"int", "false"}, "int|false"},
		{[]string{"--no-or-false=false", "array<int>", "array<string>"}, "array<mixed>"},
		{[]string{"--no-or-false", "int", "false"}, "int"},
		{[]string{"--no-or-false=false", "tuple(int)", "int"}, "error{0: int}"},
		{[]string{"--no-or-false=false", "array<int!>", "array<int>"}, "array<int!>!"},
		{[]string{"--no-or-false=false", "array<int>", "array<int!>"}, "array<int!>!"},
		{[]string{"--no-or-false=false", "unknown", "array<error>"}, "array<error>!"},
		{[]string{"--no-or-false=false", "array<error>", "unknown"}, "array<error>!"},
	}
	for _, tc := range testCases {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			out, err := execute(t, MergeCmd, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.expected+"\n", out)
		})
	}
}

func TestMergeClasses(t *testing.T) {
	out, err := execute(t, MergeCmd, "--no-or-false=false",
		"--class", "Base", "--class", "A=Base", "--class", "B=Base", `\A`, `\B`)
	require.NoError(t, err)
	assert.Equal(t, "\\Base\n", out)
}

func TestMergeBadType(t *testing.T) {
	_, err := execute(t, MergeCmd, "--no-or-false=false", "int", "array<")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument 2")
}

func TestSolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
slots:
  - {name: a, type: int}
  - {name: xs, type: array}
edges:
  - {from: a, to: xs, at: ["*"]}
`), 0o644))

	out, err := execute(t, SolveCmd, "--workers", "2", path)
	require.NoError(t, err)
	assert.Equal(t, "a: int\nxs: array<int>\n# fixpoint after 2 rounds\n", out)

	_, err = execute(t, SolveCmd, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	out, err := execute(t, KeysCmd, "*", "3", "name")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"*", "any", "0", "Any"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"3", "int", "7", "3"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"name", "string", "2", "name"}, strings.Fields(lines[3]))
}
