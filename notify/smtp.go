package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sochq/gatekeep"
)

// SMTPConfig describes the relay used to reach the approver.
type SMTPConfig struct {
	// Host and Port locate the relay, e.g. "smtp.gmail.com" and 587.
	Host string
	Port int

	// Username and Password authenticate against the relay with PLAIN auth.
	// Leave both empty for an unauthenticated relay.
	Username string
	Password string

	// From is the envelope sender. Defaults to Username when empty.
	From string

	// To lists the approver addresses that receive signup notices.
	To []string
}

// SMTPNotifier mails the approver when a signup lands in the review queue.
type SMTPNotifier struct {
	config SMTPConfig
}

// NewSMTP validates cfg and returns an SMTPNotifier.
func NewSMTP(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" || cfg.Port <= 0 {
		return nil, errors.New("smtp host and port are required")
	}
	if len(cfg.To) == 0 {
		return nil, errors.New("at least one recipient is required")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, errors.New("a sender address is required")
	}
	return &SMTPNotifier{config: cfg}, nil
}

// NotifyPendingSignup sends a short plain-text notice about view. The send
// is synchronous; callers that cannot block should wrap the notifier in a
// goroutine of their own.
func (n *SMTPNotifier) NotifyPendingSignup(ctx context.Context, view gatekeep.PublicView) error {
	if n == nil {
		return errors.New("nil notifier")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}

	msg := buildPendingSignupMessage(n.config.From, n.config.To, view)
	addr := fmt.Sprintf("%s:%d", n.config.Host, n.config.Port)
	return smtp.SendMail(addr, auth, n.config.From, n.config.To, msg)
}

func buildPendingSignupMessage(from string, to []string, view gatekeep.PublicView) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	b.WriteString("Subject: New signup awaiting approval\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "A new account is waiting for review.\r\n\r\n")
	fmt.Fprintf(&b, "Email:     %s\r\n", view.Email)
	fmt.Fprintf(&b, "Status:    %s\r\n", view.Status)
	fmt.Fprintf(&b, "Signed up: %s\r\n", view.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	return []byte(b.String())
}

// NoOp is a Notifier that silently accepts every notification. Useful in
// tests and in deployments where the approver polls the pending queue
// instead of receiving mail.
type NoOp struct{}

// NotifyPendingSignup implements the notifier contract and does nothing.
func (NoOp) NotifyPendingSignup(context.Context, gatekeep.PublicView) error {
	return nil
}
