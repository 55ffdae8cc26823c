package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// TwoCaptcha solves challenges through the 2captcha.com legacy API
// (in.php / res.php with json=1).
type TwoCaptcha struct {
	APIKey  string
	BaseURL string // defaults to https://2captcha.com
	Client  *http.Client

	PollInterval time.Duration
}

func (t *TwoCaptcha) Name() string { return "2Captcha" }

type twocaptchaResponse struct {
	Status  int    `json:"status"`
	Request string `json:"request"`
}

func (t *TwoCaptcha) Solve(ctx context.Context, ch Challenge) (string, error) {
	params := url.Values{}
	params.Set("key", t.APIKey)
	params.Set("pageurl", ch.PageURL)
	params.Set("json", "1")

	switch ch.Type {
	case TypeRecaptchaV2:
		params.Set("method", "userrecaptcha")
		params.Set("googlekey", ch.SiteKey)
	case TypeHCaptcha:
		params.Set("method", "hcaptcha")
		params.Set("sitekey", ch.SiteKey)
	case TypeTurnstile:
		params.Set("method", "turnstile")
		params.Set("sitekey", ch.SiteKey)
	default:
		return "", fmt.Errorf("2captcha: unsupported type %q", ch.Type)
	}

	created, err := t.call(ctx, "/in.php", params)
	if err != nil {
		return "", err
	}
	if created.Status != 1 {
		return "", fmt.Errorf("2captcha submit: %s", created.Request)
	}
	taskID := created.Request

	interval := t.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	resParams := url.Values{}
	resParams.Set("key", t.APIKey)
	resParams.Set("action", "get")
	resParams.Set("id", taskID)
	resParams.Set("json", "1")

	for i := 0; i < 36; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}

		res, err := t.call(ctx, "/res.php", resParams)
		if err != nil {
			return "", err
		}
		if res.Status == 1 {
			return res.Request, nil
		}
		if res.Request != "CAPCHA_NOT_READY" {
			return "", fmt.Errorf("2captcha: %s", res.Request)
		}
	}
	return "", fmt.Errorf("2captcha: timeout after 3 minutes")
}

func (t *TwoCaptcha) call(ctx context.Context, path string, params url.Values) (*twocaptchaResponse, error) {
	base := t.BaseURL
	if base == "" {
		base = "https://2captcha.com"
	}
	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("2captcha: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var out twocaptchaResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("2captcha: bad response: %w", err)
	}
	return &out, nil
}
