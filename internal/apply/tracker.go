package apply

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// AppendTracker adds a markdown entry to the running application tracker.
// Concurrent apply runs share the file, so appends go through a file lock.
func AppendTracker(trackerPath string, res Result, dryRun bool) error {
	if err := os.MkdirAll(filepath.Dir(trackerPath), 0o755); err != nil {
		return err
	}

	lock := flock.New(trackerPath + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock tracker: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	status := titleCase(res.Status)
	if dryRun {
		status = "Dry Run"
	}

	agentResult := res.AgentResult
	if agentResult == "" {
		agentResult = "No result"
	}
	if len(agentResult) > 300 {
		agentResult = agentResult[:300] + "..."
	}

	steps := "N/A"
	if res.Steps > 0 {
		steps = fmt.Sprint(res.Steps)
	}

	entry := fmt.Sprintf(`
## %s - %s
- **URL:** %s
- **Status:** %s
- **Steps:** %s
- **Directory:** `+"`%s`"+`
- **Result:** %s
`, res.Company, res.Date, res.URL, status, steps, res.AppDir, agentResult)

	f, err := os.OpenFile(trackerPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(entry)
	return err
}

// titleCase upper-cases each underscore- or space-separated word, so
// "dry_run_complete" renders as "Dry Run Complete".
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
