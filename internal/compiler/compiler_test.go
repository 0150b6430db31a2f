package compiler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// writeStubCompiler creates an executable script standing in for the
// lean binary.
func writeStubCompiler(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "lean")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))

	return path
}

func TestCompileFile_Success(t *testing.T) {
	stub := writeStubCompiler(t, `echo "compiled $1"`)
	inv := New(stub, "", zap.NewNop())

	projectRoot := t.TempDir()
	source := filepath.Join(projectRoot, "foo.lean")
	require.NoError(t, os.WriteFile(source, []byte("theorem t : 1 = 1 := rfl"), 0o644))

	outcome := inv.CompileFile(context.Background(), source, projectRoot, 10*time.Second)

	require.NotNil(t, outcome)
	assert.True(t, outcome.Success())
	assert.Equal(t, 0, outcome.ReturnCode)
	assert.Contains(t, outcome.Stdout, "compiled")
	assert.False(t, outcome.TimedOut)
	assert.Empty(t, outcome.Err)
	assert.Equal(t, projectRoot, outcome.WorkDir)
	assert.Equal(t, []string{stub, source}, outcome.Args)
}

func TestCompileFile_NonZeroExit(t *testing.T) {
	stub := writeStubCompiler(t, `echo "foo.lean:5:10: error: bad" >&2; exit 1`)
	inv := New(stub, "", zap.NewNop())

	outcome := inv.CompileFile(context.Background(), "foo.lean", t.TempDir(), 10*time.Second)

	require.NotNil(t, outcome)
	assert.False(t, outcome.Success())
	assert.Equal(t, 1, outcome.ReturnCode)
	assert.Contains(t, outcome.Stderr, "error: bad")
	assert.Empty(t, outcome.Err, "A compile error is not a launch error")
}

func TestCompileFile_Timeout(t *testing.T) {
	stub := writeStubCompiler(t, `sleep 10`)
	inv := New(stub, "", zap.NewNop())

	start := time.Now()
	outcome := inv.CompileFile(context.Background(), "foo.lean", t.TempDir(), 100*time.Millisecond)

	require.NotNil(t, outcome)
	assert.True(t, outcome.TimedOut)
	assert.Equal(t, -1, outcome.ReturnCode)
	assert.False(t, outcome.Success())
	assert.Contains(t, outcome.Err, "timeout")
	assert.GreaterOrEqual(t, outcome.DurationMS, int64(0))
	assert.Less(t, time.Since(start), 5*time.Second, "Timeout must unblock the caller promptly")
}

func TestCompileFile_ZeroTimeout(t *testing.T) {
	stub := writeStubCompiler(t, `echo never`)
	inv := New(stub, "", zap.NewNop())

	outcome := inv.CompileFile(context.Background(), "foo.lean", t.TempDir(), 0)

	require.NotNil(t, outcome)
	assert.True(t, outcome.TimedOut, "Zero timeout always times out")
	assert.Equal(t, -1, outcome.ReturnCode)
}

func TestCompileFile_LaunchFailure(t *testing.T) {
	inv := New("/nonexistent/lean-binary", "", zap.NewNop())

	outcome := inv.CompileFile(context.Background(), "foo.lean", "/nonexistent/workdir", 5*time.Second)

	require.NotNil(t, outcome, "Launch failures return an outcome, never a fault")
	assert.False(t, outcome.Success())
	assert.Equal(t, -1, outcome.ReturnCode)
	assert.NotEmpty(t, outcome.Err)
	assert.False(t, outcome.TimedOut)
}

func TestCompileContent_PrependsDependencies(t *testing.T) {
	// Stub echoes the source file back so we can inspect what was compiled
	stub := writeStubCompiler(t, `cat "$1"`)
	inv := New(stub, "", zap.NewNop())

	projectRoot := t.TempDir()

	outcome := inv.CompileContent(context.Background(),
		"theorem t : 1 = 1 := rfl", "thm.lean", projectRoot,
		[]string{"Mathlib", "import Aesop"}, 10*time.Second)

	require.NotNil(t, outcome)
	assert.True(t, outcome.Success())
	assert.Contains(t, outcome.Stdout, "import Mathlib\nimport Aesop\n\ntheorem t : 1 = 1 := rfl")
}

func TestCompileContent_CleansUpTempFiles(t *testing.T) {
	// Stub fabricates an .olean sidecar next to the source
	stub := writeStubCompiler(t, `touch "${1%.lean}.olean"`)
	inv := New(stub, "", zap.NewNop())

	projectRoot := t.TempDir()

	outcome := inv.CompileContent(context.Background(),
		"theorem t : 1 = 1 := rfl", "thm", projectRoot, nil, 10*time.Second)

	require.NotNil(t, outcome)
	assert.True(t, outcome.Success())

	assertNoLeftovers(t, projectRoot)
}

func TestCompileContent_ZeroTimeoutLeavesNoTempFile(t *testing.T) {
	stub := writeStubCompiler(t, `echo never`)
	inv := New(stub, "", zap.NewNop())

	projectRoot := t.TempDir()

	outcome := inv.CompileContent(context.Background(),
		"theorem t : 1 = 1 := rfl", "thm.lean", projectRoot, nil, 0)

	require.NotNil(t, outcome)
	assert.True(t, outcome.TimedOut)

	assertNoLeftovers(t, projectRoot)
}

func TestCompileContent_UnwritableProjectRoot(t *testing.T) {
	stub := writeStubCompiler(t, `echo never`)
	inv := New(stub, "", zap.NewNop())

	outcome := inv.CompileContent(context.Background(),
		"x", "thm.lean", "/nonexistent/project", nil, 5*time.Second)

	require.NotNil(t, outcome)
	assert.False(t, outcome.Success())
	assert.Contains(t, outcome.Err, "temporary file")
}

func TestCompileContent_ConcurrentSharedProject(t *testing.T) {
	stub := writeStubCompiler(t, `cat "$1"`)
	inv := New(stub, "", zap.NewNop())

	projectRoot := t.TempDir()

	done := make(chan *Outcome, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- inv.CompileContent(context.Background(),
				"theorem t : 1 = 1 := rfl", "same-name.lean", projectRoot, nil, 10*time.Second)
		}()
	}

	for i := 0; i < 8; i++ {
		outcome := <-done
		require.NotNil(t, outcome)
		assert.True(t, outcome.Success(), "Concurrent compiles of the same name must not clobber each other")
	}

	assertNoLeftovers(t, projectRoot)
}

func assertNoLeftovers(t *testing.T, projectRoot string) {
	t.Helper()

	entries, err := os.ReadDir(projectRoot)
	require.NoError(t, err)

	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), LeanExt) || strings.HasSuffix(entry.Name(), ".olean") {
			t.Errorf("leftover temporary file: %s", entry.Name())
		}
	}
}

func TestVersionProbe(t *testing.T) {
	stub := writeStubCompiler(t, `echo "Lean (version 4.9.0)"`)
	inv := New(stub, "", zap.NewNop())

	assert.Equal(t, "Lean (version 4.9.0)", inv.Version(context.Background()))

	inv = New("/nonexistent/lean", "", zap.NewNop())
	assert.Empty(t, inv.Version(context.Background()))
}

func TestInstalledProbe(t *testing.T) {
	elan := filepath.Join(t.TempDir(), "elan")
	require.NoError(t, os.WriteFile(elan, []byte("#!/bin/sh\necho 'elan 3.1.1'\n"), 0o755))

	inv := New("", elan, zap.NewNop())
	assert.True(t, inv.Installed(context.Background()))

	inv = New("", "/nonexistent/elan", zap.NewNop())
	assert.False(t, inv.Installed(context.Background()))
}

func TestHasFreshArtifact(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "foo.lean")
	olean := filepath.Join(dir, "foo.olean")

	assert.False(t, HasFreshArtifact(source), "No files at all")

	require.NoError(t, os.WriteFile(source, []byte("x"), 0o644))
	assert.False(t, HasFreshArtifact(source), "No sidecar yet")

	require.NoError(t, os.WriteFile(olean, []byte("y"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(olean, later, later))
	assert.True(t, HasFreshArtifact(source))

	stale := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(olean, stale, stale))
	assert.False(t, HasFreshArtifact(source), "Sidecar older than source is stale")
}
