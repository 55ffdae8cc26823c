package apply

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecAgent_ParsesReport(t *testing.T) {
	agent := &ExecAgent{Command: []string{"sh", "-c",
		`echo '{"final_result":"done","is_successful":true,"steps":7}'`}}

	report, err := agent.Run(context.Background(), AgentOptions{
		TaskPromptPath: "/tmp/prompt.txt",
		MaxSteps:       10,
	})
	require.NoError(t, err)
	assert.True(t, report.Successful)
	assert.Equal(t, "done", report.FinalResult)
	assert.Equal(t, 7, report.Steps)
}

func TestExecAgent_ReportWinsOverExitCode(t *testing.T) {
	agent := &ExecAgent{Command: []string{"sh", "-c",
		`echo '{"is_successful":false,"errors":["step limit reached"]}'; exit 3`}}

	report, err := agent.Run(context.Background(), AgentOptions{TaskPromptPath: "p"})
	require.NoError(t, err)
	assert.False(t, report.Successful)
	assert.Equal(t, []string{"step limit reached"}, report.Errors)
}

func TestExecAgent_NoReport(t *testing.T) {
	agent := &ExecAgent{Command: []string{"sh", "-c", "echo not json; exit 1"}}
	_, err := agent.Run(context.Background(), AgentOptions{TaskPromptPath: "p"})
	assert.Error(t, err)
}

func TestExecAgent_NoCommand(t *testing.T) {
	agent := &ExecAgent{}
	_, err := agent.Run(context.Background(), AgentOptions{})
	assert.Error(t, err)
}
