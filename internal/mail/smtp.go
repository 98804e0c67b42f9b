package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/PeHo89/backend-template/pkg/logger"
)

// SMTPConfig holds the connection settings for the SMTP notifier.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AppName  string
	// BaseURL is the externally reachable API base, e.g.
	// "http://localhost:8080/api/v1". It is embedded in the email bodies so
	// recipients know where to send the follow-up request.
	BaseURL string
}

// SMTPNotifier delivers emails over SMTP.
type SMTPNotifier struct {
	client *gomail.Client
	cfg    SMTPConfig
	log    *slog.Logger
}

// NewSMTPNotifier creates an SMTP-backed notifier.
func NewSMTPNotifier(cfg SMTPConfig, log *slog.Logger) (*SMTPNotifier, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPNotifier{client: client, cfg: cfg, log: log}, nil
}

// SendEmailConfirmation sends the double-opt-in confirmation email.
func (n *SMTPNotifier) SendEmailConfirmation(ctx context.Context, email, token string) error {
	body := fmt.Sprintf(`Please send the following data along with a PUT request to '%s/account/confirm-email':

email=%s
token=%s

We are happy to have you on board!`, n.cfg.BaseURL, email, token)

	if err := n.send(ctx, email, "Please confirm your email", body); err != nil {
		return fmt.Errorf("send email confirmation to %q: %w", email, err)
	}

	logger.WithContext(ctx, n.log).Info("sent email confirmation",
		slog.String("email", email))
	return nil
}

// SendPasswordReset sends the password-reset email.
func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, email, token string) error {
	body := fmt.Sprintf(`Please send the following data along with a PUT request to '%s/account/set-new-password' within the next 15 minutes:

email=%s
token=%s
password=[your_new_password_here]

We are happy to see you again soon!`, n.cfg.BaseURL, email, token)

	if err := n.send(ctx, email, "Please set new password", body); err != nil {
		return fmt.Errorf("send password reset to %q: %w", email, err)
	}

	logger.WithContext(ctx, n.log).Info("sent password reset email",
		slog.String("email", email))
	return nil
}

func (n *SMTPNotifier) send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(n.cfg.AppName, n.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	return n.client.DialAndSendWithContext(ctx, msg)
}
