package apply

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applybot/internal/config"
)

type stubAgent struct {
	report  AgentReport
	err     error
	gotOpts AgentOptions
}

func (a *stubAgent) Run(ctx context.Context, opts AgentOptions) (AgentReport, error) {
	a.gotOpts = opts
	return a.report, a.err
}

func newTestRunner(t *testing.T, agent AgentRunner) *Runner {
	t.Helper()
	var cfg config.Config
	cfg.Candidate = testCandidate
	cfg.Apply.MaxSteps = 50
	return &Runner{Cfg: cfg, DataDir: t.TempDir(), Agent: agent}
}

func TestRunner_SuccessfulRun(t *testing.T) {
	agent := &stubAgent{report: AgentReport{
		FinalResult: "Submitted, confirmation ABC-1",
		Successful:  true,
		Steps:       31,
		URLsVisited: []string{"https://acme.com/jobs/1"},
	}}
	r := newTestRunner(t, agent)

	res, err := r.Run(context.Background(), "https://www.acme.com/jobs/1", RunOpts{})
	require.NoError(t, err)

	assert.Equal(t, StatusSubmitted, res.Status)
	assert.Equal(t, "acme", res.Company)
	assert.Equal(t, 31, res.Steps)
	assert.False(t, res.IsResumable)
	assert.NotEmpty(t, res.AttemptID)

	// result.json persisted in the attempt dir.
	saved, err := loadResult(r.AttemptDir("acme"))
	require.NoError(t, err)
	assert.Equal(t, res.AttemptID, saved.AttemptID)

	// Prompt handed to the agent through a file.
	b, err := os.ReadFile(agent.gotOpts.TaskPromptPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Apply for the job at:")
	assert.Equal(t, 50, agent.gotOpts.MaxSteps)

	// Tracker entry written.
	tb, err := os.ReadFile(filepath.Join(r.DataDir, "applications", "tracker.md"))
	require.NoError(t, err)
	assert.Contains(t, string(tb), "## acme")
}

func TestRunner_DryRunStatus(t *testing.T) {
	agent := &stubAgent{report: AgentReport{Successful: true}}
	r := newTestRunner(t, agent)

	res, err := r.Run(context.Background(), "https://acme.com/jobs/1", RunOpts{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, StatusDryRunComplete, res.Status)
}

func TestRunner_AgentFailureIsResumable(t *testing.T) {
	agent := &stubAgent{report: AgentReport{
		Successful:  false,
		FinalResult: "got stuck on a captcha",
		Errors:      []string{"captcha unsolved"},
	}}
	r := newTestRunner(t, agent)

	res, err := r.Run(context.Background(), "https://acme.com/jobs/1", RunOpts{})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.True(t, res.IsResumable)
	assert.Contains(t, res.Errors, "captcha unsolved")
}

func TestRunner_AgentErrorStatus(t *testing.T) {
	agent := &stubAgent{err: errors.New("agent binary missing")}
	r := newTestRunner(t, agent)

	res, err := r.Run(context.Background(), "https://acme.com/jobs/1", RunOpts{})
	require.NoError(t, err)
	assert.Equal(t, StatusError, res.Status)
	assert.True(t, res.IsResumable)
}

func TestRunner_AutoResume(t *testing.T) {
	agent := &stubAgent{report: AgentReport{Successful: true}}
	r := newTestRunner(t, agent)

	// Leave behind a failed attempt with a saved browser session.
	appDir := r.AttemptDir("acme")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	prev := Result{Status: StatusFailed, AgentResult: "ran out of steps"}
	b, err := json.Marshal(prev)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "result.json"), b, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "storage_state.json"), []byte("{}"), 0o644))

	res, err := r.Run(context.Background(), "https://acme.com/jobs/1", RunOpts{CompanySlug: "acme"})
	require.NoError(t, err)
	assert.True(t, res.Resumed)

	pb, err := os.ReadFile(agent.gotOpts.TaskPromptPath)
	require.NoError(t, err)
	assert.Contains(t, string(pb), "RESUME a previously started job application")
	assert.Contains(t, string(pb), "ran out of steps")
}

func TestRunner_NoAutoResumeWithoutStorageState(t *testing.T) {
	agent := &stubAgent{report: AgentReport{Successful: true}}
	r := newTestRunner(t, agent)

	appDir := r.AttemptDir("acme")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	b, err := json.Marshal(Result{Status: StatusFailed})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "result.json"), b, 0o644))

	res, err := r.Run(context.Background(), "https://acme.com/jobs/1", RunOpts{CompanySlug: "acme"})
	require.NoError(t, err)
	assert.False(t, res.Resumed)
}
