package maincmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/ember/internal/maincmd"
	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args []string, stdin string) (stdout, stderr string, code mainer.ExitCode) {
	t.Helper()
	var out, errb bytes.Buffer
	c := &maincmd.Cmd{BuildVersion: "1.0.0", BuildDate: "2026-01-01"}
	stdio := mainer.Stdio{
		Stdin:  strings.NewReader(stdin),
		Stdout: &out,
		Stderr: &errb,
	}
	code = c.Main(append([]string{"ember"}, args...), stdio)
	return out.String(), errb.String(), code
}

func TestHelp(t *testing.T) {
	stdout, _, code := run(t, []string{"--help"}, "")
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, stdout, "usage: ember")
}

func TestVersion(t *testing.T) {
	stdout, _, code := run(t, []string{"--version"}, "")
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, stdout, "1.0.0")
	assert.Contains(t, stdout, "2026-01-01")
}

func TestTooManyArgsIsUsageError(t *testing.T) {
	_, stderr, code := run(t, []string{"a.lox", "b.lox"}, "")
	assert.EqualValues(t, 64, code)
	assert.Contains(t, stderr, "usage")
}

func TestRunFileSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.lox")
	require.NoError(t, os.WriteFile(path, []byte(`print "hi";`), 0o644))

	stdout, _, code := run(t, []string{path}, "")
	assert.Equal(t, mainer.Success, code)
	assert.Equal(t, "\"hi\"\n", stdout)
}

func TestRunFileCompileError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.lox")
	require.NoError(t, os.WriteFile(path, []byte(`var;`), 0o644))

	_, stderr, code := run(t, []string{path}, "")
	assert.EqualValues(t, 65, code)
	assert.Contains(t, stderr, "Error at ';'")
}

func TestRunFileRuntimeError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crash.lox")
	require.NoError(t, os.WriteFile(path, []byte(`print nope;`), 0o644))

	_, stderr, code := run(t, []string{path}, "")
	assert.EqualValues(t, 70, code)
	assert.Contains(t, stderr, "Undefined variable 'nope'")
}

func TestRunFileMissingIsIOError(t *testing.T) {
	_, _, code := run(t, []string{"/no/such/file.lox"}, "")
	assert.EqualValues(t, 74, code)
}

func TestReplReadsUntilEOF(t *testing.T) {
	stdout, _, code := run(t, nil, "var a = 1;\nprint a;\n")
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, stdout, "1\n")
}
