package verify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plainTextMessage = "Subject: Your code\r\n" +
	"From: Acme <no-reply@acme.com>\r\n" +
	"To: me@example.com\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Your verification code: 482913\r\n"

const htmlOnlyMessage = "Subject: Sign in to Acme\r\n" +
	"From: Acme <no-reply@acme.com>\r\n" +
	"To: me@example.com\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<html><body><p>Your code:</p><b>AB12CD</b><p>It expires soon.</p></body></html>\r\n"

func TestDecodeMessage_PlainText(t *testing.T) {
	subject, body := decodeMessage([]byte(plainTextMessage), "fallback")
	assert.Equal(t, "Your code", subject)
	assert.Contains(t, body, "482913")

	code, ok := ExtractCode(subject + "\n" + body)
	require.True(t, ok)
	assert.Equal(t, "482913", code)
}

func TestDecodeMessage_HTMLStripped(t *testing.T) {
	subject, body := decodeMessage([]byte(htmlOnlyMessage), "")
	assert.Equal(t, "Sign in to Acme", subject)
	assert.NotContains(t, body, "<")
	assert.Contains(t, body, "AB12CD")

	code, ok := ExtractCode(subject + "\n" + body)
	require.True(t, ok)
	assert.Equal(t, "AB12CD", code)
}

func TestHTMLToText(t *testing.T) {
	got := htmlToText("<div>Hello &amp; welcome</div>  <span>  spaced   out </span>")
	assert.Equal(t, "Hello & welcome\nspaced out", got)
}

func TestCodeFromMessage(t *testing.T) {
	code, err := codeFromMessage([]byte(plainTextMessage), "")
	require.NoError(t, err)
	assert.Equal(t, "482913", code)
}

func TestCodeFromMessage_NoCodeNamesSubject(t *testing.T) {
	raw := "Subject: Welcome to Acme\r\n" +
		"From: Acme <no-reply@acme.com>\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"Thanks for joining. Click the link below to get started.\r\n"

	_, err := codeFromMessage([]byte(raw), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no code extracted")
	assert.Contains(t, err.Error(), "Welcome to Acme")
}

func TestDecodeMessage_FallbackSubject(t *testing.T) {
	raw := "From: a@b.c\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"body text\r\n"
	subject, body := decodeMessage([]byte(raw), "from envelope")
	assert.Equal(t, "from envelope", subject)
	assert.True(t, strings.Contains(body, "body text"))
}
