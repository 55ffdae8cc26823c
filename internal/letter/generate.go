package letter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// Letter is the structured cover letter produced by the generator.
type Letter struct {
	CompanyName    string   `json:"company_name"`
	JobTitle       string   `json:"job_title"`
	HiringManager  string   `json:"hiring_manager"`
	BodyParagraphs []string `json:"body_paragraphs"`
}

// Generator turns posting + resume text into a tailored letter. The model
// behind it stays external; implementations are request glue only.
type Generator interface {
	Generate(ctx context.Context, jobText, resumeText string) (Letter, error)
}

const systemPrompt = `You are writing a cover letter for the candidate described by the resume below. Write a concise, professional cover letter tailored to the specific job posting.

RULES:
- 3 paragraphs maximum. Be concise.
- First paragraph: state the specific role and express genuine interest. Mention one standout qualification.
- Middle paragraph(s): highlight 2-3 specific experiences from the resume that directly match the job requirements. Use concrete details. Do NOT be generic.
- Final paragraph: brief closing with availability and enthusiasm. One or two sentences.
- Do NOT use filler phrases like "I am writing to express my interest" or "I believe I would be a great fit".
- Be direct and specific. Every sentence should add value.
- Match the tone to the company.

IMPORTANT: Return ONLY valid JSON with this exact structure:
{
  "company_name": "Company Name",
  "job_title": "Job Title",
  "hiring_manager": "Hiring Manager",
  "body_paragraphs": ["First paragraph...", "Second paragraph...", "Third paragraph..."]
}

If you can identify a hiring manager name from the posting, use it. Otherwise use "Hiring Manager".
Do NOT include the greeting ("Dear...") or closing ("Sincerely...") -- those are in the template.`

// AnthropicGenerator calls the Anthropic messages endpoint directly.
type AnthropicGenerator struct {
	APIKey  string
	Model   string
	BaseURL string // defaults to https://api.anthropic.com
	Client  *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *AnthropicGenerator) Generate(ctx context.Context, jobText, resumeText string) (Letter, error) {
	if g.APIKey == "" {
		return Letter{}, errors.New("ANTHROPIC_API_KEY not set")
	}
	base := g.BaseURL
	if base == "" {
		base = "https://api.anthropic.com"
	}
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     g.Model,
		MaxTokens: 1500,
		System:    systemPrompt,
		Messages: []anthropicMessage{{
			Role:    "user",
			Content: fmt.Sprintf("JOB POSTING:\n%s\n\nRESUME:\n%s", clip(jobText, 6000), clip(resumeText, 4000)),
		}},
	})
	if err != nil {
		return Letter{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return Letter{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := client.Do(req)
	if err != nil {
		return Letter{}, fmt.Errorf("generate letter: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Letter{}, err
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Letter{}, fmt.Errorf("generate letter: bad response: %w", err)
	}
	if parsed.Error != nil {
		return Letter{}, fmt.Errorf("generate letter: %s", parsed.Error.Message)
	}
	if len(parsed.Content) == 0 {
		return Letter{}, errors.New("generate letter: empty response")
	}

	return ParseLetterJSON(parsed.Content[0].Text)
}

var reJSONObject = regexp.MustCompile(`(?s)\{.*\}`)

// ParseLetterJSON extracts the letter JSON from a model reply, tolerating
// markdown fences and surrounding prose.
func ParseLetterJSON(reply string) (Letter, error) {
	m := reJSONObject.FindString(reply)
	if m == "" {
		return Letter{}, fmt.Errorf("no JSON object in reply: %s", clip(reply, 200))
	}
	var l Letter
	if err := json.Unmarshal([]byte(m), &l); err != nil {
		return Letter{}, fmt.Errorf("parse letter JSON: %w", err)
	}
	if len(l.BodyParagraphs) == 0 {
		return Letter{}, errors.New("letter has no body paragraphs")
	}
	if l.HiringManager == "" {
		l.HiringManager = "Hiring Manager"
	}
	return l, nil
}

func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
