package application

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kulltaa/masterCondo/internal/ports"
)

const (
	MailTypeVerification = "account.verification_email"
	MailTypeRecovery     = "account.recovery_email"

	verificationSubject = "Verify Account"
	recoverySubject     = "Recover Account"
)

// buildVerificationMail renders the verify-account email. The token and the
// address are percent-encoded query parameters of the verification link.
func (s *Service) buildVerificationMail(email, token string, occurredAt time.Time) ports.OutboxMail {
	link := fmt.Sprintf("%s/users/verify?token=%s&email=%s",
		strings.TrimRight(s.cfg.BaseURL, "/"),
		url.QueryEscape(token),
		url.QueryEscape(email),
	)
	html := fmt.Sprintf(
		"Hello<br>Please click on the link to verify your email.<br><a href=%q>Click here to verify</a>",
		link,
	)
	return ports.OutboxMail{
		MailID:     uuid.New(),
		MailType:   MailTypeVerification,
		ToAddress:  email,
		Subject:    verificationSubject,
		HTMLBody:   html,
		OccurredAt: occurredAt,
	}
}

// buildRecoveryMail renders the recover-account email.
func (s *Service) buildRecoveryMail(email, token string, occurredAt time.Time) ports.OutboxMail {
	link := fmt.Sprintf("%s/users/recover?token=%s",
		strings.TrimRight(s.cfg.BaseURL, "/"),
		url.QueryEscape(token),
	)
	html := fmt.Sprintf(
		"Hello<br>Please click on the link to recover your account.<br><a href=%q>Click here to recover</a>",
		link,
	)
	return ports.OutboxMail{
		MailID:     uuid.New(),
		MailType:   MailTypeRecovery,
		ToAddress:  email,
		Subject:    recoverySubject,
		HTMLBody:   html,
		OccurredAt: occurredAt,
	}
}
