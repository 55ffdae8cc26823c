package config

import "os"

// ApplyEnv overlays process-environment settings onto cfg. The environment
// wins over the YAML file so one-off runs and the fetch subprocess don't
// need a config edit. APPLYBOT_DATA_DIR is NOT applied here: the binaries
// already resolve it as the root that App.DataDir is joined onto, and
// overlaying it too would double the path.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("EMAIL_ADDRESS"); v != "" {
		cfg.Email.Address = v
	}
	if v := os.Getenv("APPLYBOT_IMAP_HOST"); v != "" {
		cfg.Email.IMAPHost = v
	}
}
