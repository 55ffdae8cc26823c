// Package captcha detects CAPTCHA widgets in page HTML and solves them
// through paid token services. The browser side only has to inject the
// returned token; no visual solving happens here.
package captcha

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Type identifies the widget family a challenge belongs to.
type Type string

const (
	TypeRecaptchaV2 Type = "recaptcha_v2"
	TypeHCaptcha    Type = "hcaptcha"
	TypeTurnstile   Type = "turnstile"
)

// Challenge is a detected CAPTCHA on a page.
type Challenge struct {
	Type    Type
	SiteKey string
	PageURL string
}

// Solver exchanges a challenge for a solution token.
type Solver interface {
	Name() string
	Solve(ctx context.Context, ch Challenge) (string, error)
}

// ErrNoSolver is returned by Chain when no service is configured.
var ErrNoSolver = errors.New("no CAPTCHA solving API keys configured")

// Chain tries each solver in order and returns the first token.
type Chain struct {
	Solvers []Solver
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Solve(ctx context.Context, ch Challenge) (string, error) {
	if len(c.Solvers) == 0 {
		return "", ErrNoSolver
	}
	var lastErr error
	for _, s := range c.Solvers {
		token, err := s.Solve(ctx, ch)
		if err == nil {
			return token, nil
		}
		log.Printf("[captcha] %s failed: %v", s.Name(), err)
		lastErr = err
	}
	return "", fmt.Errorf("all solvers failed: %w", lastErr)
}
