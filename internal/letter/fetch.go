package letter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"applybot/internal/webutil"
)

var reBlankLines = regexp.MustCompile(`\n{3,}`)

// FetchPosting downloads a job posting and returns its text content.
// Non-HTML responses are returned as-is.
func FetchPosting(ctx context.Context, client *http.Client, limiter *webutil.HostLimiter, rawURL string) (string, error) {
	if limiter != nil {
		if err := limiter.WaitURL(ctx, rawURL); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", webutil.BrowserUA)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch posting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch posting: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
	if err != nil {
		return "", err
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		return string(body), nil
	}
	return PostingText(string(body))
}

// PostingText strips a posting's HTML down to readable text, dropping
// chrome elements that only add noise to the prompt.
func PostingText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, nav, header, footer, noscript").Remove()

	var b strings.Builder
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, s *goquery.Selection) {
		// Only leaf-ish nodes; containers repeat their children's text.
		if s.Children().Filter("p, div, li, h1, h2, h3, h4, h5, h6, tr").Length() > 0 {
			return
		}
		t := strings.Join(strings.Fields(s.Text()), " ")
		if t != "" {
			b.WriteString(t)
			b.WriteString("\n")
		}
	})

	out := b.String()
	if strings.TrimSpace(out) == "" {
		// Pages without block structure: fall back to whole-document text.
		out = strings.Join(strings.Fields(doc.Text()), " ")
	}
	return strings.TrimSpace(reBlankLines.ReplaceAllString(out, "\n\n")), nil
}
