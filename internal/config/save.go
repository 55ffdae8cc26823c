package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	switch cfg.Email.Protocol {
	case "", "imap", "pop3":
	default:
		errs = append(errs, fmt.Sprintf("email.protocol must be imap or pop3, got %q", cfg.Email.Protocol))
	}
	if cfg.Email.Protocol != "pop3" && strings.TrimSpace(cfg.Email.IMAPHost) == "" {
		errs = append(errs, "email.imap_host is required for imap")
	}
	if cfg.Email.Protocol == "pop3" && strings.TrimSpace(cfg.Email.POP3Host) == "" {
		errs = append(errs, "email.pop3_host is required for pop3")
	}
	if cfg.Email.IMAPPort < 0 || cfg.Email.IMAPPort > 65535 {
		errs = append(errs, "email.imap_port must be 0..65535")
	}
	if cfg.Email.POP3Port < 0 || cfg.Email.POP3Port > 65535 {
		errs = append(errs, "email.pop3_port must be 0..65535")
	}
	if cfg.Verify.TimeoutSeconds < 0 {
		errs = append(errs, "verify.timeout_seconds must be >= 0")
	}
	if cfg.Apply.MaxSteps < 0 {
		errs = append(errs, "apply.max_steps must be >= 0")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
