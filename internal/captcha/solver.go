package captcha

import (
	"context"
	"errors"
	"time"

	"applybot/internal/secrets"
	"applybot/internal/webutil"
)

// NewChainFromEnv builds the solver chain from configured API keys.
// CapSolver is preferred; 2Captcha is the fallback. Returns an empty
// chain when no key is available.
func NewChainFromEnv() *Chain {
	client := webutil.NewClient(30 * time.Second)

	var chain Chain
	if key := secrets.APIKey("CAPSOLVER_API_KEY"); key != "" {
		chain.Solvers = append(chain.Solvers, &CapSolver{APIKey: key, Client: client})
	}
	if key := secrets.APIKey("TWOCAPTCHA_API_KEY"); key != "" {
		chain.Solvers = append(chain.Solvers, &TwoCaptcha{APIKey: key, Client: client})
	}
	return &chain
}

// SolveInPage runs the whole exchange for one page: detect the widget in
// the HTML, solve it through s, and return the JavaScript that plants the
// token. The browser side only has to evaluate the returned script.
func SolveInPage(ctx context.Context, s Solver, html, pageURL string) (string, error) {
	ch, ok := Detect(html, pageURL)
	if !ok {
		return "", errors.New("no CAPTCHA site key found; may need visual solving")
	}
	token, err := s.Solve(ctx, ch)
	if err != nil {
		return "", err
	}
	return InjectionScript(ch.Type, token)
}
