package email

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
)

// SMTPNotifier delivers workflow notifications over SMTP via gomail. One
// message goes out per recipient so addresses are not leaked across roles.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

// NewSMTPNotifier creates a notifier for the given SMTP endpoint.
func NewSMTPNotifier(host string, port int, username, password, from string, logger *slog.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		logger: logger,
	}
}

var _ portssvc.NotificationSink = (*SMTPNotifier)(nil)

// Notify composes and sends one email per recipient. The first send error is
// returned after the remaining recipients have been attempted.
func (n *SMTPNotifier) Notify(ctx context.Context, recipients []domain.User, notification portssvc.Notification) error {
	subject, body := compose(notification)

	var firstErr error
	for _, recipient := range recipients {
		if recipient.Email == "" {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		m := gomail.NewMessage()
		m.SetHeader("From", n.from)
		m.SetHeader("To", recipient.Email)
		m.SetHeader("Subject", subject)
		m.SetBody("text/html", body)

		if err := n.dialer.DialAndSend(m); err != nil {
			n.logger.Warn("Failed to send notification email",
				slog.String("to", recipient.Email),
				slog.String("kind", string(notification.Kind)),
				slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to send %s email to %s: %w", notification.Kind, recipient.Email, err)
			}
		}
	}
	return firstErr
}

func compose(n portssvc.Notification) (subject, body string) {
	e := n.Expense
	categoryLine := n.CategoryName
	if n.SubcategoryName != "" {
		categoryLine += " / " + n.SubcategoryName
	}

	summary := fmt.Sprintf(
		`<p><b>Reference:</b> %s<br/><b>Requestor:</b> %s<br/><b>Category:</b> %s<br/><b>Amount:</b> ₹%s<br/><b>Status:</b> %s</p>`,
		e.ReferenceNumber, e.RequestorName, categoryLine, e.Amount.StringFixed(2), e.Status,
	)

	switch n.Kind {
	case portssvc.NotifySubmissionReceipt:
		subject = fmt.Sprintf("Expense %s submitted", e.ReferenceNumber)
		body = fmt.Sprintf("<p>Your expense claim has been submitted.</p>%s", summary)
	case portssvc.NotifySubmissionAlert:
		subject = fmt.Sprintf("New expense %s awaiting verification", e.ReferenceNumber)
		body = fmt.Sprintf("<p>A new expense claim is waiting for your verification.</p>%s", summary)
	case portssvc.NotifyVerificationAlert:
		subject = fmt.Sprintf("Expense %s awaiting approval", e.ReferenceNumber)
		body = fmt.Sprintf("<p>A verified expense claim is waiting for your approval.</p>%s", summary)
	default: // status change
		subject = fmt.Sprintf("Expense %s is now %s", e.ReferenceNumber, e.Status)
		body = fmt.Sprintf("<p>The status of your expense claim has changed.</p>%s", summary)
		if n.Comment != "" {
			body += fmt.Sprintf("<p><b>Comment:</b> %s</p>", n.Comment)
		}
	}
	return subject, body
}

// LogNotifier is the fallback sink used when SMTP is not configured; it only
// records that a notification would have gone out.
type LogNotifier struct {
	Logger *slog.Logger
}

var _ portssvc.NotificationSink = (*LogNotifier)(nil)

func (n *LogNotifier) Notify(_ context.Context, recipients []domain.User, notification portssvc.Notification) error {
	n.Logger.Info("Notification (email disabled)",
		slog.String("kind", string(notification.Kind)),
		slog.String("reference", notification.Expense.ReferenceNumber),
		slog.Int("recipients", len(recipients)))
	return nil
}
