package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		want   Challenge
		wantOK bool
	}{
		{
			name:   "recaptcha v2 widget",
			html:   `<form><div class="g-recaptcha" data-sitekey="6Lrec"></div></form>`,
			want:   Challenge{Type: TypeRecaptchaV2, SiteKey: "6Lrec", PageURL: "https://acme.com/apply"},
			wantOK: true,
		},
		{
			name:   "hcaptcha widget",
			html:   `<div class="h-captcha" data-sitekey="hc-key"></div>`,
			want:   Challenge{Type: TypeHCaptcha, SiteKey: "hc-key", PageURL: "https://acme.com/apply"},
			wantOK: true,
		},
		{
			name:   "turnstile widget",
			html:   `<div class="cf-turnstile" data-sitekey="ts-key"></div>`,
			want:   Challenge{Type: TypeTurnstile, SiteKey: "ts-key", PageURL: "https://acme.com/apply"},
			wantOK: true,
		},
		{
			name:   "bare data-sitekey treated as recaptcha",
			html:   `<div id="captcha" data-sitekey="bare-key"></div>`,
			want:   Challenge{Type: TypeRecaptchaV2, SiteKey: "bare-key", PageURL: "https://acme.com/apply"},
			wantOK: true,
		},
		{
			name:   "no widget",
			html:   `<form><input name="email"></form>`,
			wantOK: false,
		},
		{
			name:   "widget without site key",
			html:   `<div class="g-recaptcha"></div>`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Detect(tt.html, "https://acme.com/apply")
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestInjectionScript(t *testing.T) {
	for _, typ := range []Type{TypeRecaptchaV2, TypeHCaptcha, TypeTurnstile} {
		t.Run(string(typ), func(t *testing.T) {
			js, err := InjectionScript(typ, "tok-123")
			require.NoError(t, err)
			assert.Contains(t, js, `"tok-123"`)
		})
	}

	// Token content cannot escape the JS string literal.
	js, err := InjectionScript(TypeRecaptchaV2, `x"; alert(1); //`)
	require.NoError(t, err)
	assert.Contains(t, js, `\"`)

	_, err = InjectionScript(Type("unknown"), "tok")
	assert.Error(t, err)
}

func TestCapSolver_Solve(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "key-1", req["clientKey"])

		switch r.URL.Path {
		case "/createTask":
			task := req["task"].(map[string]any)
			assert.Equal(t, "NoCaptchaTaskProxyless", task["type"])
			assert.Equal(t, "site-key", task["websiteKey"])
			_ = json.NewEncoder(w).Encode(map[string]any{"errorId": 0, "taskId": "t-1"})
		case "/getTaskResult":
			polls++
			if polls < 2 {
				_ = json.NewEncoder(w).Encode(map[string]any{"errorId": 0, "status": "processing"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"errorId": 0, "status": "ready",
				"solution": map[string]any{"gRecaptchaResponse": "solved-token"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	s := &CapSolver{APIKey: "key-1", BaseURL: srv.URL, Client: srv.Client(), PollInterval: time.Millisecond}
	token, err := s.Solve(context.Background(), Challenge{
		Type: TypeRecaptchaV2, SiteKey: "site-key", PageURL: "https://acme.com/apply",
	})
	require.NoError(t, err)
	assert.Equal(t, "solved-token", token)
	assert.Equal(t, 2, polls)
}

func TestCapSolver_CreateTaskError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"errorId": 1, "errorDescription": "ERROR_KEY_DENIED"})
	}))
	defer srv.Close()

	s := &CapSolver{APIKey: "bad", BaseURL: srv.URL, Client: srv.Client(), PollInterval: time.Millisecond}
	_, err := s.Solve(context.Background(), Challenge{Type: TypeHCaptcha, SiteKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERROR_KEY_DENIED")
}

func TestTwoCaptcha_Solve(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "key-2", q.Get("key"))

		switch r.URL.Path {
		case "/in.php":
			assert.Equal(t, "turnstile", q.Get("method"))
			assert.Equal(t, "ts-key", q.Get("sitekey"))
			_ = json.NewEncoder(w).Encode(twocaptchaResponse{Status: 1, Request: "task-9"})
		case "/res.php":
			polls++
			assert.Equal(t, "task-9", q.Get("id"))
			if polls < 2 {
				_ = json.NewEncoder(w).Encode(twocaptchaResponse{Status: 0, Request: "CAPCHA_NOT_READY"})
				return
			}
			_ = json.NewEncoder(w).Encode(twocaptchaResponse{Status: 1, Request: "ts-token"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	s := &TwoCaptcha{APIKey: "key-2", BaseURL: srv.URL, Client: srv.Client(), PollInterval: time.Millisecond}
	token, err := s.Solve(context.Background(), Challenge{
		Type: TypeTurnstile, SiteKey: "ts-key", PageURL: "https://acme.com/apply",
	})
	require.NoError(t, err)
	assert.Equal(t, "ts-token", token)
}

type stubSolver struct {
	name  string
	token string
	err   error
	calls int
}

func (s *stubSolver) Name() string { return s.name }
func (s *stubSolver) Solve(ctx context.Context, ch Challenge) (string, error) {
	s.calls++
	return s.token, s.err
}

func TestSolveInPage(t *testing.T) {
	solver := &stubSolver{name: "stub", token: "tok-xyz"}

	js, err := SolveInPage(context.Background(),
		solver,
		`<form><div class="cf-turnstile" data-sitekey="ts-key"></div></form>`,
		"https://acme.com/apply")
	require.NoError(t, err)
	assert.Contains(t, js, `"tok-xyz"`)
	assert.Contains(t, js, "cf-turnstile-response")
	assert.Equal(t, 1, solver.calls)
}

func TestSolveInPage_NoWidget(t *testing.T) {
	solver := &stubSolver{name: "stub", token: "tok"}
	_, err := SolveInPage(context.Background(), solver, "<form></form>", "https://acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CAPTCHA site key found")
	assert.Equal(t, 0, solver.calls)
}

func TestChain(t *testing.T) {
	t.Run("first solver wins", func(t *testing.T) {
		a := &stubSolver{name: "a", token: "tok-a"}
		b := &stubSolver{name: "b", token: "tok-b"}
		chain := &Chain{Solvers: []Solver{a, b}}

		token, err := chain.Solve(context.Background(), Challenge{})
		require.NoError(t, err)
		assert.Equal(t, "tok-a", token)
		assert.Equal(t, 0, b.calls)
	})

	t.Run("falls back on failure", func(t *testing.T) {
		a := &stubSolver{name: "a", err: errors.New("balance too low")}
		b := &stubSolver{name: "b", token: "tok-b"}
		chain := &Chain{Solvers: []Solver{a, b}}

		token, err := chain.Solve(context.Background(), Challenge{})
		require.NoError(t, err)
		assert.Equal(t, "tok-b", token)
	})

	t.Run("empty chain", func(t *testing.T) {
		_, err := (&Chain{}).Solve(context.Background(), Challenge{})
		assert.ErrorIs(t, err, ErrNoSolver)
	})
}
