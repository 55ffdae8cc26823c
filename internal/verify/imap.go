package verify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// IMAPMailbox performs one IMAP-over-TLS check per call: connect, login,
// search UNSEEN (optionally filtered by sender substring), fetch the most
// recent match, and run the code extractor on subject + body.
type IMAPMailbox struct {
	Host     string
	Port     int
	Username string
	Password string

	// Sender is a substring filter applied server-side via SEARCH FROM.
	// Empty means any sender.
	Sender string
}

func (m *IMAPMailbox) addr() string {
	port := m.Port
	if port == 0 {
		port = 993
	}
	return net.JoinHostPort(m.Host, fmt.Sprintf("%d", port))
}

// closeOnCancel closes c when ctx is cancelled, unless done closes
// first. Exiting on done keeps a finished check from leaving its
// watcher behind.
func closeOnCancel(ctx context.Context, done <-chan struct{}, c io.Closer) {
	select {
	case <-ctx.Done():
		_ = c.Close()
	case <-done:
	}
}

func (m *IMAPMailbox) Check(ctx context.Context) (string, error) {
	if m.Host == "" {
		return "", errors.New("imap host is required")
	}
	if m.Username == "" || m.Password == "" {
		return "", errors.New("imap username/password is required")
	}

	c, err := imapclient.DialTLS(m.addr(), &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: m.Host},
	})
	if err != nil {
		return "", fmt.Errorf("imap dial tls: %w", err)
	}
	defer func() { _ = c.Close() }()

	// Best-effort close on context cancel; a single check otherwise runs
	// to completion or error. done releases the watcher when Check
	// returns, so repeated polls don't pile up goroutines.
	done := make(chan struct{})
	defer close(done)
	go closeOnCancel(ctx, done, c)

	if err := c.Login(m.Username, m.Password).Wait(); err != nil {
		return "", fmt.Errorf("imap login: %w", err)
	}
	defer func() {
		if err := c.Logout().Wait(); err != nil {
			log.Printf("[verify] imap logout: %v", err)
		}
	}()

	if _, err := c.Select("INBOX", &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return "", fmt.Errorf("imap select inbox: %w", err)
	}

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}
	if strings.TrimSpace(m.Sender) != "" {
		criteria.Header = []imap.SearchCriteriaHeaderField{
			{Key: "From", Value: strings.TrimSpace(m.Sender)},
		}
	}

	searchData, err := c.Search(criteria, nil).Wait()
	if err != nil {
		return "", fmt.Errorf("imap search unseen: %w", err)
	}

	seqs := searchData.AllSeqNums()
	if len(seqs) == 0 {
		// No email yet; keep polling.
		return "", nil
	}

	// Most recent = highest sequence number returned by the search.
	latest := seqs[len(seqs)-1]

	bodySection := &imap.FetchItemBodySection{Peek: true}
	bufs, err := c.Fetch(imap.SeqSetNum(latest), &imap.FetchOptions{
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}).Collect()
	if err != nil {
		return "", fmt.Errorf("imap fetch: %w", err)
	}
	if len(bufs) == 0 {
		return "", nil
	}

	buf := bufs[0]
	envSubject := ""
	if buf.Envelope != nil {
		envSubject = buf.Envelope.Subject
	}
	raw := buf.FindBodySection(bodySection)

	return codeFromMessage(raw, envSubject)
}
