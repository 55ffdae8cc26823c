package verify

import "context"

// Mailbox checks a mail account once for a verification code.
//
// The return shape encodes the polling states:
//   - ("", nil): no qualifying message yet. Expected steady state, not an error.
//   - (code, nil): a code was extracted.
//   - ("", err): a transport failure, or a message was found but no code
//     could be recognized. Callers record the error and keep polling; a
//     Check never panics and never aborts the wait window on its own.
type Mailbox interface {
	Check(ctx context.Context) (string, error)
}
