package ports

import "context"

// MailMessage is the transport-neutral email payload.
type MailMessage struct {
	To      string
	Subject string
	HTML    string
}

// MailSender is the outbound email port. The application enqueues rendered
// messages and only the outbox worker talks to this interface.
type MailSender interface {
	Send(ctx context.Context, msg MailMessage) error
}
