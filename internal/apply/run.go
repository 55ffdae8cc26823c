package apply

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"applybot/internal/config"
)

// Result is what an application attempt leaves behind in result.json.
type Result struct {
	AttemptID        string   `json:"attempt_id"`
	URL              string   `json:"url"`
	Company          string   `json:"company"`
	Date             string   `json:"date"`
	Status           string   `json:"status"`
	AppDir           string   `json:"app_dir"`
	Errors           []string `json:"errors"`
	Confirmation     string   `json:"confirmation,omitempty"`
	AgentResult      string   `json:"agent_result,omitempty"`
	Steps            int      `json:"steps,omitempty"`
	URLsVisited      []string `json:"urls_visited,omitempty"`
	Resumed          bool     `json:"resumed"`
	StorageStatePath string   `json:"storage_state_path"`
	IsResumable      bool     `json:"is_resumable"`
}

const (
	StatusSubmitted      = "submitted"
	StatusDryRunComplete = "dry_run_complete"
	StatusFailed         = "failed"
	StatusError          = "error"
)

// Runner orchestrates one application attempt end to end: attempt
// directory, prompt, agent run, result.json, tracker entry.
type Runner struct {
	Cfg     config.Config
	DataDir string
	Agent   AgentRunner
}

type RunOpts struct {
	CompanySlug     string
	CoverLetterPath string
	DryRun          bool
	Resume          bool
}

func resultPath(appDir string) string { return filepath.Join(appDir, "result.json") }

// AttemptDir returns the directory used for a company's application state.
func (r *Runner) AttemptDir(slug string) string {
	return filepath.Join(r.DataDir, "applications", slug)
}

func (r *Runner) Run(ctx context.Context, jobURL string, opts RunOpts) (Result, error) {
	slug := opts.CompanySlug
	if slug == "" {
		slug = GuessCompany(jobURL)
	}

	appDir := r.AttemptDir(slug)
	if err := os.MkdirAll(filepath.Join(appDir, "screenshots"), 0o755); err != nil {
		return Result{}, fmt.Errorf("create attempt dir: %w", err)
	}
	storageState := filepath.Join(appDir, "storage_state.json")

	resume := opts.Resume
	if !resume {
		// Auto-resume: the previous run failed and left a browser session.
		if prev, err := loadResult(appDir); err == nil {
			if (prev.Status == StatusFailed || prev.Status == StatusError) && fileExists(storageState) {
				resume = true
				log.Printf("[apply] auto-resuming: previous attempt status was %q", prev.Status)
			}
		}
	}

	res := Result{
		AttemptID:        uuid.NewString(),
		URL:              jobURL,
		Company:          slug,
		Date:             time.Now().Format("2006-01-02"),
		Status:           "started",
		AppDir:           appDir,
		Errors:           []string{},
		Resumed:          resume,
		StorageStatePath: storageState,
	}

	resumePDF := ""
	if fileExists(r.Cfg.Apply.ResumePDF) {
		resumePDF = r.Cfg.Apply.ResumePDF
	}
	in := PromptInput{
		URL:             jobURL,
		Candidate:       r.Cfg.Candidate,
		ResumePDF:       resumePDF,
		CoverLetterPath: opts.CoverLetterPath,
		DryRun:          opts.DryRun,
	}

	var task string
	if resume {
		task = BuildResumeTaskPrompt(in, appDir)
	} else {
		task = BuildTaskPrompt(in)
	}

	promptPath := filepath.Join(appDir, "task_prompt.txt")
	if err := os.WriteFile(promptPath, []byte(task), 0o644); err != nil {
		return res, fmt.Errorf("write task prompt: %w", err)
	}

	var files []string
	if resumePDF != "" {
		files = append(files, resumePDF)
	}
	if opts.CoverLetterPath != "" {
		files = append(files, opts.CoverLetterPath)
	}

	report, err := r.Agent.Run(ctx, AgentOptions{
		TaskPromptPath:   promptPath,
		StorageStatePath: storageState,
		AvailableFiles:   files,
		MaxSteps:         r.Cfg.Apply.MaxSteps,
		ConversationPath: filepath.Join(appDir, "conversation.json"),
		GIFPath:          filepath.Join(appDir, "session.gif"),
	})
	if err != nil {
		res.Status = StatusError
		res.Errors = append(res.Errors, err.Error())
	} else {
		res.AgentResult = report.FinalResult
		res.Steps = report.Steps
		res.URLsVisited = report.URLsVisited
		for _, e := range report.Errors {
			if e != "" {
				res.Errors = append(res.Errors, e)
			}
		}
		switch {
		case report.Successful && opts.DryRun:
			res.Status = StatusDryRunComplete
		case report.Successful:
			res.Status = StatusSubmitted
		default:
			res.Status = StatusFailed
		}
	}

	res.IsResumable = res.Status == StatusFailed || res.Status == StatusError

	if err := saveResult(appDir, res); err != nil {
		return res, err
	}
	if err := AppendTracker(filepath.Join(r.DataDir, "applications", "tracker.md"), res, opts.DryRun); err != nil {
		log.Printf("[apply] tracker update failed: %v", err)
	}

	return res, nil
}

func loadResult(appDir string) (Result, error) {
	var res Result
	b, err := os.ReadFile(resultPath(appDir))
	if err != nil {
		return res, err
	}
	err = json.Unmarshal(b, &res)
	return res, err
}

func saveResult(appDir string, res Result) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(resultPath(appDir), b, 0o644)
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
