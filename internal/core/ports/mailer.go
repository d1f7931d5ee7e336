package ports

import "context"

// Mailer is the outbound mail collaborator. Delivery is best-effort: a
// failed Send is reported to the caller but never compensated.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
