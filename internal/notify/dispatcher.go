package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"

	"timetrack/internal/mailer"
	"timetrack/internal/metrics"
	"timetrack/internal/queue"
)

// Dispatcher consumes notification messages and mails them.
type Dispatcher struct {
	q      queue.Queue
	sender mailer.Sender
}

func NewDispatcher(q queue.Queue, sender mailer.Sender) *Dispatcher {
	return &Dispatcher{q: q, sender: sender}
}

// Run processes messages until ctx is done. A failed delivery is logged and
// the message dropped.
func (d *Dispatcher) Run(ctx context.Context) error {
	msgs, err := d.q.Consume(ctx)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for msg := range msgs {
		if err := d.Handle(ctx, msg); err != nil {
			log.Printf("notify: %s: %v", msg.Type, err)
			metrics.Notifications.WithLabelValues(msg.Type, "failed").Inc()
			continue
		}
		metrics.Notifications.WithLabelValues(msg.Type, "sent").Inc()
	}
	return nil
}

// Handle renders and sends one message.
func (d *Dispatcher) Handle(ctx context.Context, msg queue.Message) error {
	m, err := render(msg)
	if err != nil {
		return err
	}
	return d.sender.Send(ctx, m)
}

func render(msg queue.Message) (mailer.Mail, error) {
	switch msg.Type {
	case TypePasswordReset:
		var p passwordReset
		if err := json.Unmarshal(msg.Body, &p); err != nil {
			return mailer.Mail{}, fmt.Errorf("decode: %w", err)
		}
		body := "A password reset was requested for your account.\n\n"
		if p.ResetURL != "" {
			body += "Open " + resetLink(p.ResetURL, p.Token) + " to choose a new password.\n"
		} else {
			body += "Your reset token: " + p.Token + "\n"
		}
		body += "\nThe link expires in a few minutes. If you did not ask for this, ignore this email.\n"
		return mailer.Mail{To: p.Email, Subject: "Password reset", Body: body}, nil

	case TypeTimesheetReviewed:
		var p timesheetReviewed
		if err := json.Unmarshal(msg.Body, &p); err != nil {
			return mailer.Mail{}, fmt.Errorf("decode: %w", err)
		}
		return mailer.Mail{
			To:      p.Email,
			Subject: fmt.Sprintf("Timesheet %s %s", p.Date, p.Status),
			Body:    fmt.Sprintf("Hello %s,\n\nyour timesheet for %s is now %s.\n", p.Name, p.Date, p.Status),
		}, nil

	case TypeBulkReviewed:
		var p bulkReviewed
		if err := json.Unmarshal(msg.Body, &p); err != nil {
			return mailer.Mail{}, fmt.Errorf("decode: %w", err)
		}
		return mailer.Mail{
			To:      p.Email,
			Subject: fmt.Sprintf("Timesheets %s", p.Status),
			Body:    fmt.Sprintf("Hello %s,\n\n%d of your timesheets are now %s.\n", p.Name, p.Count, p.Status),
		}, nil
	}
	return mailer.Mail{}, fmt.Errorf("unknown message type %q", msg.Type)
}

func resetLink(base, token string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "token=" + url.QueryEscape(token)
}
