package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the root command with args and returns stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeCSV drops a CSV fixture into a temp dir and returns its path.
func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "evaluate")
	assert.Contains(t, names, "predict")
}

func TestFormatTable(t *testing.T) {
	out := FormatTable(
		[]string{"compound", "p"},
		[][]string{{"trehalose", "0.95"}, {"x", "0.1"}},
	)
	lines := bytes.Split([]byte(out), []byte("\n"))
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, string(lines[0]), "compound")
	assert.Contains(t, string(lines[1]), "---")
	assert.Contains(t, string(lines[2]), "trehalose")

	assert.Empty(t, FormatTable(nil, nil))
}

func TestParseSortKey(t *testing.T) {
	key, err := parseSortKey(" Median ")
	require.NoError(t, err)
	assert.Equal(t, "median", string(key))

	_, err = parseSortKey("alphabetical")
	require.Error(t, err)
}

func TestGetCLIContext_Uninitialized(t *testing.T) {
	cmd := NewRootCommand()
	_, err := GetCLIContext(cmd)
	assert.Error(t, err)
}
