package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	pop3client "github.com/knadh/go-pop3"
)

// POP3Mailbox is the fallback poller for accounts without IMAP access.
// POP3 has no UNSEEN flag, so "new" is approximated by the Since cutoff,
// normally the moment the verification attempt started.
type POP3Mailbox struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	Since    time.Time

	// ScanLimit bounds how many of the newest messages are inspected per
	// check. Zero means the default of 10.
	ScanLimit int
}

func (m *POP3Mailbox) Check(ctx context.Context) (string, error) {
	if m.Host == "" {
		return "", errors.New("pop3 host is required")
	}
	if m.Username == "" || m.Password == "" {
		return "", errors.New("pop3 username/password is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	port := m.Port
	if port == 0 {
		port = 995
	}

	client := pop3client.New(pop3client.Opt{
		Host:       m.Host,
		Port:       port,
		TLSEnabled: true,
	})
	conn, err := client.NewConn()
	if err != nil {
		return "", fmt.Errorf("pop3 connect: %w", err)
	}
	defer func() { _ = conn.Quit() }()

	if err := conn.Auth(m.Username, m.Password); err != nil {
		return "", fmt.Errorf("pop3 auth: %w", err)
	}

	msgs, err := conn.List(0)
	if err != nil {
		return "", fmt.Errorf("pop3 list: %w", err)
	}
	if len(msgs) == 0 {
		return "", nil
	}

	limit := m.ScanLimit
	if limit <= 0 {
		limit = 10
	}

	sender := strings.ToLower(strings.TrimSpace(m.Sender))

	// Newest first.
	for i := len(msgs) - 1; i >= 0 && len(msgs)-1-i < limit; i-- {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		rawBuf, err := conn.RetrRaw(msgs[i].ID)
		if err != nil {
			return "", fmt.Errorf("pop3 retrieve %d: %w", msgs[i].ID, err)
		}
		raw := rawBuf.Bytes()

		from, date := headerFromAndDate(raw)
		if !m.Since.IsZero() && !date.IsZero() && date.Before(m.Since) {
			// Older than the attempt; nothing newer will follow below it.
			break
		}
		if sender != "" && !strings.Contains(strings.ToLower(from), sender) {
			continue
		}

		return codeFromMessage(raw, "")
	}

	return "", nil
}

func headerFromAndDate(raw []byte) (from string, date time.Time) {
	mr, err := mail.CreateReader(strings.NewReader(string(raw)))
	if err != nil {
		return "", time.Time{}
	}
	defer mr.Close()

	from = mr.Header.Get("From")
	if d, err := mr.Header.Date(); err == nil {
		date = d
	}
	return from, date
}
