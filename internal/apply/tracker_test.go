package apply

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendTracker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications", "tracker.md")

	res := Result{
		Company:     "acme",
		Date:        "2026-08-23",
		URL:         "https://acme.com/jobs/1",
		Status:      StatusSubmitted,
		Steps:       42,
		AppDir:      "/data/applications/acme",
		AgentResult: "Application submitted, confirmation #123",
	}
	require.NoError(t, AppendTracker(path, res, false))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	got := string(b)

	assert.Contains(t, got, "## acme - 2026-08-23")
	assert.Contains(t, got, "**URL:** https://acme.com/jobs/1")
	assert.Contains(t, got, "**Status:** Submitted")
	assert.Contains(t, got, "**Steps:** 42")
	assert.Contains(t, got, "confirmation #123")
}

func TestAppendTracker_DryRunAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.md")

	res := Result{Company: "acme", Date: "2026-08-23", Status: StatusDryRunComplete}
	require.NoError(t, AppendTracker(path, res, true))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	got := string(b)

	assert.Contains(t, got, "**Status:** Dry Run")
	assert.Contains(t, got, "**Steps:** N/A")
	assert.Contains(t, got, "**Result:** No result")
}

func TestAppendTracker_ClipsLongResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.md")

	res := Result{
		Company:     "acme",
		Date:        "2026-08-23",
		Status:      StatusFailed,
		AgentResult: strings.Repeat("x", 400),
	}
	require.NoError(t, AppendTracker(path, res, false))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), strings.Repeat("x", 300)+"...")
	assert.NotContains(t, string(b), strings.Repeat("x", 301))
}

func TestAppendTracker_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.md")

	require.NoError(t, AppendTracker(path, Result{Company: "acme", Date: "2026-08-22", Status: StatusSubmitted}, false))
	require.NoError(t, AppendTracker(path, Result{Company: "initech", Date: "2026-08-23", Status: StatusFailed}, false))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "## acme - 2026-08-22")
	assert.Contains(t, string(b), "## initech - 2026-08-23")
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Dry Run Complete", titleCase("dry_run_complete"))
	assert.Equal(t, "Submitted", titleCase("submitted"))
	assert.Equal(t, "Two Words", titleCase("two words"))
}
