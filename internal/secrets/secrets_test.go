package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppPassword_EnvPrecedence(t *testing.T) {
	t.Setenv("GMAIL_APP_PASSWORD", "gmail-secret")
	t.Setenv("EMAIL_PASSWORD", "generic-secret")

	pw, err := AppPassword("")
	require.NoError(t, err)
	assert.Equal(t, "gmail-secret", pw)
}

func TestAppPassword_GenericEnvFallback(t *testing.T) {
	t.Setenv("GMAIL_APP_PASSWORD", "")
	t.Setenv("EMAIL_PASSWORD", "generic-secret")

	pw, err := AppPassword("")
	require.NoError(t, err)
	assert.Equal(t, "generic-secret", pw)
}

func TestAppPassword_MissingEverywhere(t *testing.T) {
	t.Setenv("GMAIL_APP_PASSWORD", "")
	t.Setenv("EMAIL_PASSWORD", "")

	// Empty account skips the keychain entirely.
	_, err := AppPassword("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GMAIL_APP_PASSWORD not set")
}

func TestMailAccount(t *testing.T) {
	assert.Equal(t, "applybot:mail:me@example.com@imap.gmail.com",
		MailAccount("me@example.com", "imap.gmail.com"))
}

func TestAPIKey_Env(t *testing.T) {
	t.Setenv("SOME_TEST_API_KEY", "  key-value  ")
	assert.Equal(t, "key-value", APIKey("SOME_TEST_API_KEY"))
}
