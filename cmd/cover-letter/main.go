// cover-letter generates a tailored cover letter PDF for a job posting.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"applybot/internal/config"
	"applybot/internal/letter"
	"applybot/internal/secrets"
	"applybot/internal/webutil"
)

func main() {
	var (
		company = flag.String("company", "", "company name for the output filename")
		jobDesc = flag.String("job-description", "", "file with the posting text, skips fetching the URL")
		output  = flag.String("output", "", "output PDF path")
	)
	flag.Parse()

	log.SetPrefix("[cover-letter] ")
	log.SetFlags(log.LstdFlags)

	if flag.NArg() != 1 && *jobDesc == "" {
		fmt.Fprintln(os.Stderr, "usage: cover-letter [flags] JOB_URL")
		os.Exit(1)
	}

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

	apiKey := secrets.APIKey("ANTHROPIC_API_KEY")
	if apiKey == "" {
		log.Fatal("ANTHROPIC_API_KEY not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := letter.Request{
		Company:  *company,
		Resume:   cfg.Apply.ResumePDF,
		OutPath:  *output,
		Template: cfg.Letter.TemplatePath,
		Chromium: cfg.Letter.ChromiumPath,
	}
	if flag.NArg() == 1 {
		req.URL = flag.Arg(0)
	}
	if *jobDesc != "" {
		b, err := os.ReadFile(*jobDesc)
		if err != nil {
			log.Fatalf("read job description: %v", err)
		}
		req.JobText = string(b)
	}

	pipeline := &letter.Pipeline{
		Gen: &letter.AnthropicGenerator{
			APIKey: apiKey,
			Model:  cfg.Letter.Model,
			Client: webutil.NewClient(60 * time.Second),
		},
		Client:  webutil.NewClient(30 * time.Second),
		Limiter: webutil.NewHostLimiter(0.5, 1),
		OutDir:  filepath.Join(dataDir, cfg.App.DataDir, "letters"),
	}

	outPath, l, err := pipeline.Run(ctx, req)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("wrote %s (%s at %s)", outPath, l.JobTitle, l.CompanyName)
	fmt.Println(outPath)
}
