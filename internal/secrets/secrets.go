package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "applybot"

// AppPassword resolves the mailbox app password. The environment is the
// primary channel (the fetch subprocess inherits it); the OS keychain is
// the fallback for interactive use. A missing password is a hard
// precondition failure for any verification attempt.
func AppPassword(account string) (string, error) {
	for _, name := range []string{"GMAIL_APP_PASSWORD", "EMAIL_PASSWORD"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, nil
		}
	}
	if strings.TrimSpace(account) != "" {
		pw, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	return "", errors.New("GMAIL_APP_PASSWORD not set and no keychain entry found")
}

func SetAppPassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}

func DeleteAppPassword(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// MailAccount names the keychain entry for a mailbox credential.
func MailAccount(address, host string) string {
	return fmt.Sprintf("applybot:mail:%s@%s", address, host)
}

// APIKey resolves a third-party API key (CAPSOLVER_API_KEY,
// TWOCAPTCHA_API_KEY, ANTHROPIC_API_KEY, ...) from the environment first,
// then the keychain under the env var's name. Returns "" when unset; the
// callers decide whether that is fatal.
func APIKey(envName string) string {
	if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
		return v
	}
	if v, err := keyring.Get(KeyringService, envName); err == nil {
		return strings.TrimSpace(v)
	}
	return ""
}
