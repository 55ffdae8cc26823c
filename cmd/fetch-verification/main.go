// fetch-verification polls a mailbox for an account verification code and
// hands the result to its parent through sentinel files in the attempt
// directory. It is normally spawned by the apply coordinator but works
// standalone for debugging.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"applybot/internal/config"
	"applybot/internal/secrets"
	"applybot/internal/verify"
)

func main() {
	appDir := flag.String("app-dir", "", "attempt directory for sentinel files (required)")
	sender := flag.String("sender", "", "sender keyword filter, empty matches any sender")
	timeoutSec := flag.Int("timeout", int(verify.DefaultTimeout.Seconds()), "seconds to wait for the code")
	flag.Parse()

	if *appDir == "" {
		fmt.Fprintln(os.Stderr, "usage: fetch-verification --app-dir DIR [--sender KEYWORD] [--timeout SECONDS]")
		os.Exit(1)
	}

	log.SetPrefix("[fetch-verification] ")
	log.SetFlags(log.LstdFlags)

	if err := run(*appDir, *sender, time.Duration(*timeoutSec)*time.Second); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func run(appDir, sender string, timeout time.Duration) error {
	dataDir := os.Getenv("APPLYBOT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	cfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		return fmt.Errorf("config bootstrap failed: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", cfgPath, err)
	}
	config.ApplyEnv(&cfg)

	sentinels := verify.Sentinels{Dir: appDir}

	// Credential problems are final, not transient: report them through
	// the error sentinel immediately instead of burning the wait window.
	address := cfg.Email.Address
	if address == "" {
		msg := "EMAIL_ADDRESS not set and no address configured"
		_ = sentinels.WriteError(msg)
		return fmt.Errorf("%s", msg)
	}

	host := cfg.Email.IMAPHost
	if cfg.Email.Protocol == "pop3" {
		host = cfg.Email.POP3Host
	}
	password, err := secrets.AppPassword(secrets.MailAccount(address, host))
	if err != nil {
		_ = sentinels.WriteError(err.Error())
		return err
	}

	var mailbox verify.Mailbox
	switch cfg.Email.Protocol {
	case "pop3":
		mailbox = &verify.POP3Mailbox{
			Host:     cfg.Email.POP3Host,
			Port:     cfg.Email.POP3Port,
			Username: address,
			Password: password,
			Sender:   sender,
			Since:    time.Now().Add(-time.Minute),
		}
	default:
		mailbox = &verify.IMAPMailbox{
			Host:     cfg.Email.IMAPHost,
			Port:     cfg.Email.IMAPPort,
			Username: address,
			Password: password,
			Sender:   sender,
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := &verify.Fetcher{
		Mailbox: mailbox,
		Dir:     appDir,
		Timeout: timeout,
	}
	return fetcher.Run(ctx)
}
