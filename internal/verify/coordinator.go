package verify

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"time"
)

// Coordinator runs inside the calling agent process. It spawns the fetch
// process as a child and watches the sentinel files instead of the child's
// exit status, so a manually written code file is handled exactly like an
// automated one. The coordinator's wait budget is independent of the
// child's: the child is never assumed to enforce the same deadline.
type Coordinator struct {
	// Dir is the attempt directory shared with the child.
	Dir string

	// FetchCommand is the argv prefix used to spawn the fetch process,
	// e.g. {"fetch-verification"}. Attempt flags are appended.
	FetchCommand []string

	// Interval overrides DefaultPollInterval; tests shrink it.
	Interval time.Duration
}

// AwaitCode clears stale sentinels, spawns the fetch process, and polls
// until a code appears, the child reports a final error, or maxWait
// elapses. The child is force-killed on success and on timeout.
func (c *Coordinator) AwaitCode(ctx context.Context, senderKeyword string, maxWait time.Duration) (string, error) {
	if len(c.FetchCommand) == 0 {
		return "", fmt.Errorf("no fetch command configured")
	}
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	sentinels := Sentinels{Dir: c.Dir}
	if err := sentinels.Clear(); err != nil {
		return "", fmt.Errorf("clear stale sentinels: %w", err)
	}

	args := append([]string(nil), c.FetchCommand[1:]...)
	args = append(args,
		"--app-dir", c.Dir,
		"--sender", senderKeyword,
		"--timeout", strconv.Itoa(int(maxWait.Seconds())),
	)
	child := exec.Command(c.FetchCommand[0], args...)
	if err := child.Start(); err != nil {
		return "", fmt.Errorf("spawn fetch process: %w", err)
	}

	exited := make(chan struct{})
	go func() {
		_ = child.Wait()
		close(exited)
	}()

	childExited := func() bool {
		select {
		case <-exited:
			return true
		default:
			return false
		}
	}
	kill := func() {
		if !childExited() {
			_ = child.Process.Kill()
		}
	}

	log.Printf("[verify] awaiting code (sender=%q wait=%s dir=%s)", senderKeyword, maxWait, c.Dir)

	deadline := time.Now().Add(maxWait)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		switch out := sentinels.Peek(); out.Status {
		case StatusFound:
			kill()
			return out.Code, nil
		case StatusFailed:
			// The fetch process writes its error sentinel once, as its
			// final act, so the file is only authoritative after exit.
			if childExited() {
				return "", fmt.Errorf("email check failed: %s", out.Message)
			}
		}

		select {
		case <-ctx.Done():
			kill()
			return "", ctx.Err()
		case <-ticker.C:
		}

		if !time.Now().Before(deadline) {
			break
		}
	}

	kill()
	return "", fmt.Errorf(
		"no verification code found after %ds; the code can still be written manually to %s",
		int(maxWait.Seconds()), sentinels.CodePath(),
	)
}
