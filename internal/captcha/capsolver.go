package captcha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CapSolver solves challenges through api.capsolver.com.
type CapSolver struct {
	APIKey  string
	BaseURL string // defaults to https://api.capsolver.com
	Client  *http.Client

	// PollInterval defaults to 3s; 60 polls before giving up.
	PollInterval time.Duration
}

func (c *CapSolver) Name() string { return "CapSolver" }

var capsolverTaskTypes = map[Type]string{
	TypeRecaptchaV2: "NoCaptchaTaskProxyless",
	TypeHCaptcha:    "HCaptchaTaskProxyless",
	TypeTurnstile:   "AntiTurnstileTaskProxyless",
}

type capsolverResult struct {
	ErrorID          int    `json:"errorId"`
	ErrorDescription string `json:"errorDescription"`
	TaskID           string `json:"taskId"`
	Status           string `json:"status"`
	Solution         struct {
		GRecaptchaResponse string `json:"gRecaptchaResponse"`
		Token              string `json:"token"`
	} `json:"solution"`
}

func (c *CapSolver) Solve(ctx context.Context, ch Challenge) (string, error) {
	taskType, ok := capsolverTaskTypes[ch.Type]
	if !ok {
		return "", fmt.Errorf("capsolver: unsupported type %q", ch.Type)
	}

	created, err := c.post(ctx, "/createTask", map[string]any{
		"clientKey": c.APIKey,
		"task": map[string]any{
			"type":       taskType,
			"websiteURL": ch.PageURL,
			"websiteKey": ch.SiteKey,
		},
	})
	if err != nil {
		return "", err
	}
	if created.ErrorID != 0 {
		return "", fmt.Errorf("capsolver createTask: %s", created.ErrorDescription)
	}

	interval := c.PollInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}

	for i := 0; i < 60; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}

		res, err := c.post(ctx, "/getTaskResult", map[string]any{
			"clientKey": c.APIKey,
			"taskId":    created.TaskID,
		})
		if err != nil {
			return "", err
		}
		if res.ErrorID != 0 {
			return "", fmt.Errorf("capsolver: %s", res.ErrorDescription)
		}
		if res.Status == "ready" {
			if res.Solution.GRecaptchaResponse != "" {
				return res.Solution.GRecaptchaResponse, nil
			}
			if res.Solution.Token != "" {
				return res.Solution.Token, nil
			}
			return "", fmt.Errorf("capsolver: ready but empty solution")
		}
	}
	return "", fmt.Errorf("capsolver: timeout after 3 minutes")
}

func (c *CapSolver) post(ctx context.Context, path string, payload map[string]any) (*capsolverResult, error) {
	base := c.BaseURL
	if base == "" {
		base = "https://api.capsolver.com"
	}
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("capsolver: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var out capsolverResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("capsolver: bad response: %w", err)
	}
	return &out, nil
}
