package verify

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// The fetch process and its parent communicate through two sentinel files
// in the attempt directory. The fetch process is the only writer; each file
// is written once, whole-content, as the writer's final action. An operator
// can also drop a code into CodePath by hand and the reader cannot tell the
// difference, which is the intended manual-override channel.
const (
	codeFileName  = "verification_code.txt"
	errorFileName = "verification_error.txt"
)

type Status int

const (
	StatusPending Status = iota
	StatusFound
	StatusFailed
)

// Outcome is the in-process view of the sentinel pair.
type Outcome struct {
	Status  Status
	Code    string
	Message string
}

// Sentinels addresses the sentinel pair for one attempt directory.
type Sentinels struct {
	Dir string
}

func (s Sentinels) CodePath() string  { return filepath.Join(s.Dir, codeFileName) }
func (s Sentinels) ErrorPath() string { return filepath.Join(s.Dir, errorFileName) }

// Clear removes both files so a new attempt cannot read stale results from
// a previous one reusing the same directory.
func (s Sentinels) Clear() error {
	for _, p := range []string{s.CodePath(), s.ErrorPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (s Sentinels) WriteCode(code string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.CodePath(), []byte(code), 0o644)
}

func (s Sentinels) WriteError(msg string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.ErrorPath(), []byte(msg), 0o644)
}

// Peek reports the current state of the pair. A non-empty code file wins
// over the error file; callers decide when the error file is authoritative
// (the coordinator only trusts it once the child has exited).
func (s Sentinels) Peek() Outcome {
	if b, err := os.ReadFile(s.CodePath()); err == nil {
		if code := strings.TrimSpace(string(b)); code != "" {
			return Outcome{Status: StatusFound, Code: code}
		}
	}
	if b, err := os.ReadFile(s.ErrorPath()); err == nil {
		return Outcome{Status: StatusFailed, Message: strings.TrimSpace(string(b))}
	}
	return Outcome{Status: StatusPending}
}
