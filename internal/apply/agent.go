package apply

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// AgentReport is the JSON document an agent command prints on stdout when
// it finishes a run.
type AgentReport struct {
	FinalResult      string   `json:"final_result"`
	Successful       bool     `json:"is_successful"`
	Steps            int      `json:"steps"`
	Errors           []string `json:"errors"`
	URLsVisited      []string `json:"urls_visited"`
	ExtractedContent []string `json:"extracted_content"`
}

// AgentOptions configure one agent run.
type AgentOptions struct {
	TaskPromptPath   string
	StorageStatePath string
	AvailableFiles   []string
	MaxSteps         int
	ConversationPath string
	GIFPath          string
}

// AgentRunner drives the external browser-automation agent. The engine
// itself is a collaborator, not part of this repo.
type AgentRunner interface {
	Run(ctx context.Context, opts AgentOptions) (AgentReport, error)
}

// ExecAgent spawns the configured agent command. The contract: the command
// reads the task from --task-file, persists cookies to --storage-state,
// and prints an AgentReport as JSON on stdout.
type ExecAgent struct {
	Command []string
}

func (a *ExecAgent) Run(ctx context.Context, opts AgentOptions) (AgentReport, error) {
	if len(a.Command) == 0 {
		return AgentReport{}, errors.New("no agent command configured (apply.agent_command)")
	}

	args := append([]string(nil), a.Command[1:]...)
	args = append(args, "--task-file", opts.TaskPromptPath)
	if opts.StorageStatePath != "" {
		args = append(args, "--storage-state", opts.StorageStatePath)
	}
	if opts.MaxSteps > 0 {
		args = append(args, "--max-steps", strconv.Itoa(opts.MaxSteps))
	}
	if opts.ConversationPath != "" {
		args = append(args, "--save-conversation", opts.ConversationPath)
	}
	if opts.GIFPath != "" {
		args = append(args, "--gif", opts.GIFPath)
	}
	for _, f := range opts.AvailableFiles {
		args = append(args, "--file", f)
	}

	cmd := exec.CommandContext(ctx, a.Command[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	var report AgentReport
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		if runErr != nil {
			return AgentReport{}, fmt.Errorf("agent run failed: %w (%s)", runErr, firstLine(stderr.String()))
		}
		return AgentReport{}, fmt.Errorf("agent produced no parseable report: %w", err)
	}
	// A parseable report wins even when the process exited non-zero; the
	// report's own error list carries the details.
	return report, nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
