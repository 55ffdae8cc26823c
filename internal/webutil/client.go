package webutil

import (
	"net/http"
	"time"
)

// BrowserUA is sent on requests to job boards; several ATS hosts reject
// default Go user agents.
const BrowserUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// NewClient returns an HTTP client with a sane timeout for API polling and
// posting fetches.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
