// apply runs one job application attempt: it builds the task prompt,
// drives the external browser agent, and records the outcome under the
// captures directory. Two side modes exist for the agent command to
// invoke: --await-code spawns fetch-verification and watches the
// sentinel files for an email verification code, and --solve-captcha
// solves a CAPTCHA found in saved page HTML and prints the token
// injection script.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"applybot/internal/apply"
	"applybot/internal/captcha"
	"applybot/internal/config"
	"applybot/internal/verify"
)

func main() {
	var (
		company     = flag.String("company", "", "company slug, guessed from the URL when empty")
		coverLetter = flag.String("cover-letter", "", "cover letter PDF to attach")
		dryRun      = flag.Bool("dry-run", false, "fill the form but stop before submitting")
		resume      = flag.Bool("resume", false, "force resuming the previous attempt")
		awaitCode   = flag.Bool("await-code", false, "wait for an email verification code and print it")
		sender      = flag.String("sender", "", "sender keyword for --await-code")
		solve       = flag.Bool("solve-captcha", false, "solve a CAPTCHA in page HTML and print the injection script")
		pageHTML    = flag.String("page-html", "-", "page HTML file for --solve-captcha, - for stdin")
		pageURL     = flag.String("page-url", "", "page URL for --solve-captcha")
	)
	flag.Parse()

	log.SetPrefix("[apply] ")
	log.SetFlags(log.LstdFlags)

	dataDir := os.Getenv("APPLYBOT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	cfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed (%s): %v", cfgPath, err)
	}
	config.ApplyEnv(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *solve {
		if *pageURL == "" {
			fmt.Fprintln(os.Stderr, "usage: apply --solve-captcha --page-url URL [--page-html FILE]")
			os.Exit(1)
		}
		if err := runSolveCaptcha(ctx, *pageHTML, *pageURL); err != nil {
			log.Printf("%v", err)
			os.Exit(1)
		}
		return
	}

	if *awaitCode {
		if *company == "" {
			fmt.Fprintln(os.Stderr, "usage: apply --await-code --company SLUG [--sender KEYWORD]")
			os.Exit(1)
		}
		if err := runAwaitCode(ctx, cfg, dataDir, *company, *sender); err != nil {
			log.Printf("%v", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: apply [flags] JOB_URL")
		os.Exit(1)
	}
	jobURL := flag.Arg(0)

	runner := &apply.Runner{
		Cfg:     cfg,
		DataDir: filepath.Join(dataDir, cfg.App.DataDir),
		Agent:   &apply.ExecAgent{Command: cfg.Apply.AgentCommand},
	}

	res, err := runner.Run(ctx, jobURL, apply.RunOpts{
		CompanySlug:     *company,
		CoverLetterPath: *coverLetter,
		DryRun:          *dryRun,
		Resume:          *resume,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("attempt %s finished: status=%s dir=%s", res.AttemptID, res.Status, res.AppDir)
	if res.Status == apply.StatusFailed || res.Status == apply.StatusError {
		os.Exit(1)
	}
}

// runSolveCaptcha detects and solves a CAPTCHA in the given page HTML,
// printing the injection JavaScript on stdout for the agent to evaluate.
func runSolveCaptcha(ctx context.Context, htmlPath, pageURL string) error {
	var html []byte
	var err error
	if htmlPath == "-" {
		html, err = io.ReadAll(os.Stdin)
	} else {
		html, err = os.ReadFile(htmlPath)
	}
	if err != nil {
		return fmt.Errorf("read page html: %w", err)
	}

	chain := captcha.NewChainFromEnv()
	js, err := captcha.SolveInPage(ctx, chain, string(html), pageURL)
	if err != nil {
		return err
	}
	fmt.Println(js)
	return nil
}

// runAwaitCode drives the verification hand-off and prints the bare code
// on stdout so the calling agent can paste it into the form.
func runAwaitCode(ctx context.Context, cfg config.Config, dataDir, slug, sender string) error {
	fetchBin := "fetch-verification"
	// Prefer a sibling binary so an uninstalled checkout still works.
	if exe, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exe), "fetch-verification")
		if _, err := os.Stat(sibling); err == nil {
			fetchBin = sibling
		}
	}

	coord := &verify.Coordinator{
		Dir:          filepath.Join(dataDir, cfg.App.DataDir, "applications", slug),
		FetchCommand: []string{fetchBin},
	}
	code, err := coord.AwaitCode(ctx, sender, cfg.VerifyTimeout())
	if err != nil {
		return err
	}
	fmt.Println(code)
	return nil
}
