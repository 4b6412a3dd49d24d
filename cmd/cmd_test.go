package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("SHELL", "/bin/unsupported")
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTrace(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.trace")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

var endToEnd = []string{"1 A T", "1 B T", "7 A 0 B", "5 B", "5 A"}

func TestAnalyze(t *testing.T) {
	path := writeTrace(t, endToEnd...)
	stdout, stderr, err := execute(t, "", "analyze", path)
	require.NoError(t, err)

	assert.Contains(t, stdout, "🔍 Aliasing Analysis: "+path)
	assert.Contains(t, stdout, "📦 DEALLOCATED OBJECTS (2)")
	assert.Contains(t, stdout, "👻 REMAINING OBJECTS (never deallocated) (0)")
	assert.Contains(t, stdout, "📊 ALL OBJECTS (2)")
	assert.Contains(t, stdout, "Always(Object is unaliased)")
	assert.Contains(t, stderr, "Processed 5 lines")
}

func TestAnalyze_NoRemainingAndVerbose(t *testing.T) {
	path := writeTrace(t, endToEnd...)
	stdout, _, err := execute(t, "", "analyze", "--no-remaining", "-v", path)
	require.NoError(t, err)

	assert.NotContains(t, stdout, "ALL OBJECTS")
	assert.Contains(t, stdout, "OBJECT: A, TYPE: T")
}

func TestAnalyze_Stdin(t *testing.T) {
	stdin := "1 A T\n1 B T\n\n5 B\n"
	stdout, _, err := execute(t, stdin, "analyze", "-")
	require.NoError(t, err)

	// Input ends at the blank line, so B is never deallocated.
	assert.Contains(t, stdout, "👻 REMAINING OBJECTS (never deallocated) (2)")
	assert.Contains(t, stdout, "📦 DEALLOCATED OBJECTS (0)")
}

func TestAnalyze_StdinOnlyOnce(t *testing.T) {
	_, _, err := execute(t, "", "analyze", "-", "-")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, ExitCode(err))
}

func TestAnalyze_SeveralTraces(t *testing.T) {
	a := writeTrace(t, endToEnd...)
	b := writeTrace(t, "1 X java/lang/String")
	stdout, stderr, err := execute(t, "", "analyze", a, b)
	require.NoError(t, err)

	assert.Less(t, strings.Index(stdout, a), strings.Index(stdout, b), "reports follow argument order")
	assert.Contains(t, stderr, "["+b+"]")
}

func TestAnalyze_BadTrace(t *testing.T) {
	path := writeTrace(t, "1 A T", "9 A")
	_, _, err := execute(t, "", "analyze", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, err.Error(), "parse error at line 2")
}

func TestAnalyze_ModelViolation(t *testing.T) {
	path := writeTrace(t, "1 A T", "5 Z")
	_, _, err := execute(t, "", "analyze", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, err.Error(), "remove_obj: object Z")
}

func TestAnalyze_InvalidFlags(t *testing.T) {
	path := writeTrace(t, endToEnd...)
	for _, args := range [][]string{
		{"analyze", "-q", "0", path},
		{"analyze", "-o", "html", path},
		{"analyze", "--config", "missing.yaml", path},
		{"analyze"},
	} {
		_, _, err := execute(t, "", args...)
		require.Error(t, err, args)
		assert.Equal(t, ExitCommandError, ExitCode(err), args)
	}
}

func TestAnalyze_TUIRequiresTerminal(t *testing.T) {
	path := writeTrace(t, endToEnd...)
	_, _, err := execute(t, "", "analyze", "-o", "tui", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, ExitCode(err))
}

func TestAnalyze_CSVDir(t *testing.T) {
	path := writeTrace(t, endToEnd...)
	dir := t.TempDir()
	_, stderr, err := execute(t, "", "analyze", "--csv-dir", dir, path)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "min_max_avg_run_*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, stderr, "💾 Samples written: ")

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "0, 0, 0, 0\n"))
}

func TestValidate(t *testing.T) {
	path := writeTrace(t, "1 A T", "", "7 A 0 B", "5 A")
	stdout, _, err := execute(t, "", "validate", path)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Lines: 4  |  Events: 3")
	assert.Contains(t, stdout, "ALLOC    1")
	assert.Contains(t, stdout, "VSTORE   1")
	assert.Contains(t, stdout, "FLOAD    0")
}

func TestValidate_Failure(t *testing.T) {
	path := writeTrace(t, "1 A T", "x")
	_, _, err := execute(t, "", "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "jalias dev")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitCommandError, ExitCode(errors.New("unknown flag")))
	assert.Equal(t, ExitFailure, ExitCode(WrapExitError(ExitFailure, "x", errors.New("y"))))

	err := WrapExitError(ExitFailure, "analysis failed", os.ErrNotExist)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, "analysis failed: file does not exist", err.Error())
}
