package verify

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// DefaultPollInterval is how often both the fetch process and the
// coordinator look for progress.
const DefaultPollInterval = 5 * time.Second

// DefaultTimeout is the fetch process's default wait budget.
const DefaultTimeout = 300 * time.Second

// Fetcher polls a Mailbox at a fixed interval until a code turns up or the
// timeout elapses, then writes the outcome to the attempt directory's
// sentinel files. Transient mailbox errors are recorded but never abort the
// wait window; only the timeout is terminal.
type Fetcher struct {
	Mailbox Mailbox
	Dir     string
	Timeout time.Duration

	// Interval overrides DefaultPollInterval; tests shrink it.
	Interval time.Duration
}

// Run executes the polling loop. The returned error mirrors what was
// written to the error sentinel, so the process wrapper can exit non-zero
// without formatting a second message.
func (f *Fetcher) Run(ctx context.Context) error {
	interval := f.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	sentinels := Sentinels{Dir: f.Dir}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("create attempt dir: %w", err)
	}

	// One fetcher per attempt directory. The lock turns the caller-side
	// convention into a checked precondition.
	lock := flock.New(filepath.Join(f.Dir, ".fetch.lock"))
	locked, err := lock.TryLock()
	if err == nil && !locked {
		err = fmt.Errorf("another fetcher already holds %s", lock.Path())
	}
	if err != nil {
		msg := fmt.Sprintf("could not lock attempt directory: %v", err)
		if werr := sentinels.WriteError(msg); werr != nil {
			return fmt.Errorf("%s (and writing the error sentinel failed: %v)", msg, werr)
		}
		return fmt.Errorf("%s", msg)
	}
	defer func() { _ = lock.Unlock() }()

	log.Printf("[verify] polling mailbox (timeout=%s interval=%s dir=%s)", timeout, interval, f.Dir)

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		code, err := f.Mailbox.Check(ctx)
		if code != "" {
			if werr := sentinels.WriteCode(code); werr != nil {
				return fmt.Errorf("write code sentinel: %w", werr)
			}
			log.Printf("[verify] found verification code")
			return nil
		}
		if err != nil {
			lastErr = err
			log.Printf("[verify] %v", err)
		}

		select {
		case <-ctx.Done():
			msg := fmt.Sprintf("verification wait cancelled: %v", ctx.Err())
			_ = sentinels.WriteError(msg)
			return ctx.Err()
		case <-ticker.C:
		}

		if !time.Now().Before(deadline) {
			break
		}
	}

	msg := fmt.Sprintf("No verification code found after %ds.", int(timeout.Seconds()))
	if lastErr != nil {
		msg += fmt.Sprintf(" Last error: %v", lastErr)
	}
	if werr := sentinels.WriteError(msg); werr != nil {
		return fmt.Errorf("write error sentinel: %w", werr)
	}
	return fmt.Errorf("%s", msg)
}
