package calendar

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"time"

	"applybot/internal/taskdb"
)

// Runner executes an external command. Tests stub it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Sync creates a calendar event for every task with a due date, via the
// gog CLI. Tasks without a parseable date are skipped, not failed.
type Sync struct {
	Account string
	GogPath string
	Runner  Runner
}

func New(account, gogPath string) *Sync {
	if gogPath == "" {
		gogPath = "gog"
	}
	return &Sync{Account: account, GogPath: gogPath, Runner: execRunner{}}
}

// Run pushes the given tasks to the calendar and returns how many events
// were created.
func (s *Sync) Run(ctx context.Context, tasks []taskdb.Task) (int, error) {
	if s.Account == "" {
		return 0, fmt.Errorf("calendar account is not configured")
	}
	runner := s.Runner
	if runner == nil {
		runner = execRunner{}
	}

	created := 0
	for _, t := range tasks {
		if t.DueDate == nil {
			log.Printf("[calendar] skipping %q: no due date", t.Title)
			continue
		}

		// Events land at 10:00 on the due day, one hour long.
		start := time.Date(
			t.DueDate.Year(), t.DueDate.Month(), t.DueDate.Day(),
			10, 0, 0, 0, t.DueDate.Location(),
		)

		args := []string{
			"calendar", "events", "create",
			"--account", s.Account,
			"--title", t.Title,
			"--start-date", start.Format("2006-01-02T15:04"),
			"--duration", "1h",
		}
		if t.Description != "" {
			args = append(args, "--description", t.Description)
		}

		out, err := runner.Run(ctx, s.GogPath, args...)
		if err != nil {
			log.Printf("[calendar] event for %q failed: %v (%s)", t.Title, err, out)
			continue
		}
		log.Printf("[calendar] added event: %s", t.Title)
		created++
	}
	return created, nil
}
