package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinels_Lifecycle(t *testing.T) {
	s := Sentinels{Dir: t.TempDir()}

	assert.Equal(t, StatusPending, s.Peek().Status)

	require.NoError(t, s.WriteError("mailbox down"))
	out := s.Peek()
	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, "mailbox down", out.Message)

	// The code file wins over an existing error file.
	require.NoError(t, s.WriteCode("482913"))
	out = s.Peek()
	assert.Equal(t, StatusFound, out.Status)
	assert.Equal(t, "482913", out.Code)

	require.NoError(t, s.Clear())
	assert.Equal(t, StatusPending, s.Peek().Status)

	// Clearing an already-clean directory is fine.
	require.NoError(t, s.Clear())
}

func TestSentinels_ManualOverride(t *testing.T) {
	// An operator dropping a code into the file by hand reads the same as
	// an automated write, whitespace included.
	s := Sentinels{Dir: t.TempDir()}
	require.NoError(t, os.WriteFile(s.CodePath(), []byte("  654321\n"), 0o644))

	out := s.Peek()
	assert.Equal(t, StatusFound, out.Status)
	assert.Equal(t, "654321", out.Code)
}

func TestSentinels_EmptyCodeFileIsNotFound(t *testing.T) {
	s := Sentinels{Dir: t.TempDir()}
	require.NoError(t, os.WriteFile(s.CodePath(), []byte("   \n"), 0o644))
	assert.Equal(t, StatusPending, s.Peek().Status)
}

func TestSentinels_Paths(t *testing.T) {
	s := Sentinels{Dir: "/tmp/attempt"}
	assert.Equal(t, filepath.Join("/tmp/attempt", "verification_code.txt"), s.CodePath())
	assert.Equal(t, filepath.Join("/tmp/attempt", "verification_error.txt"), s.ErrorPath())
}
