package verify

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/emersion/go-message/mail"
)

var reTags = regexp.MustCompile(`(?is)<[^>]+>`)

// codeFromMessage decodes a raw message and runs the extractor over
// subject and body. A message that decodes but yields no code is an
// error naming the subject, distinct from the quiet no-message case.
func codeFromMessage(raw []byte, fallbackSubject string) (string, error) {
	subject, body := decodeMessage(raw, fallbackSubject)
	if code, ok := ExtractCode(subject + "\n" + body); ok {
		return code, nil
	}
	return "", fmt.Errorf("email found but no code extracted (subject: %s)", subject)
}

// decodeMessage pulls the subject and a plain-text body out of raw RFC822
// bytes. The first text/plain part wins; if the message only carries HTML,
// the first text/html part is stripped down to text. go-message handles
// transfer encodings and encoded-word headers.
func decodeMessage(raw []byte, fallbackSubject string) (subject, body string) {
	subject = fallbackSubject

	mr, err := mail.CreateReader(strings.NewReader(string(raw)))
	if err != nil {
		// Unparseable message: best effort, treat the raw bytes as text.
		return subject, string(raw)
	}
	defer mr.Close()

	if s, err := mr.Header.Subject(); err == nil && strings.TrimSpace(s) != "" {
		subject = s
	}

	var plain, htmlPart string
	for {
		p, err := mr.NextPart()
		if err == io.EOF || p == nil {
			break
		}
		if err != nil {
			break
		}
		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		switch strings.ToLower(ct) {
		case "text/plain":
			if plain == "" {
				b, _ := io.ReadAll(io.LimitReader(p.Body, 6<<20))
				plain = string(b)
			}
		case "text/html":
			if htmlPart == "" {
				b, _ := io.ReadAll(io.LimitReader(p.Body, 6<<20))
				htmlPart = string(b)
			}
		}
	}

	if plain != "" {
		return subject, plain
	}
	return subject, htmlToText(htmlPart)
}

func htmlToText(s string) string {
	s = reTags.ReplaceAllString(s, "\n")
	s = html.UnescapeString(s)
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		ln = strings.Join(strings.Fields(ln), " ")
		if ln != "" {
			out = append(out, ln)
		}
	}
	return strings.Join(out, "\n")
}
