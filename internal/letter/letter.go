package letter

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"applybot/internal/webutil"
)

// Request describes one cover letter run.
type Request struct {
	URL      string // posting URL, ignored when JobText is set
	JobText  string // pre-supplied posting text
	Company  string // used for the output filename, guessed when empty
	Resume   string // resume PDF path
	OutPath  string // explicit output path, derived from Company when empty
	Template string // custom template path, embedded default when empty
	Chromium string // chromium binary override
}

// Pipeline wires fetching, generation and rendering together.
type Pipeline struct {
	Gen     Generator
	Client  *http.Client
	Limiter *webutil.HostLimiter
	OutDir  string
}

// Run produces a tailored cover letter PDF and returns its path.
func (p *Pipeline) Run(ctx context.Context, req Request) (string, Letter, error) {
	if req.Resume == "" {
		return "", Letter{}, fmt.Errorf("no resume PDF configured")
	}

	var jobText, resumeText string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if req.JobText != "" {
			jobText = req.JobText
			return nil
		}
		var err error
		jobText, err = FetchPosting(gctx, p.Client, p.Limiter, req.URL)
		return err
	})
	g.Go(func() error {
		var err error
		resumeText, err = ResumeText(gctx, req.Resume)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", Letter{}, err
	}
	log.Printf("[letter] posting text %d chars, resume text %d chars", len(jobText), len(resumeText))

	l, err := p.Gen.Generate(ctx, jobText, resumeText)
	if err != nil {
		return "", Letter{}, err
	}
	log.Printf("[letter] generated letter for %s (%s)", l.CompanyName, l.JobTitle)

	html, err := Render(l, req.Template)
	if err != nil {
		return "", Letter{}, err
	}

	outPath := req.OutPath
	if outPath == "" {
		name := req.Company
		if name == "" {
			name = l.CompanyName
		}
		outPath = filepath.Join(p.OutDir, fileSlug(name)+"-cover-letter.pdf")
	}

	if err := RenderPDF(html, outPath, req.Chromium); err != nil {
		// Keep the HTML next to the intended PDF so a run with no
		// chromium installed still yields something printable.
		htmlPath := strings.TrimSuffix(outPath, ".pdf") + ".html"
		if werr := os.WriteFile(htmlPath, []byte(html), 0o644); werr == nil {
			log.Printf("[letter] pdf render failed, wrote HTML to %s", htmlPath)
		}
		return "", l, err
	}
	return outPath, l, nil
}

func fileSlug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "letter"
	}
	return out
}
