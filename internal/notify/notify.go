// Package notify turns domain events into email. The Publisher side runs in
// the request path and only enqueues; the Dispatcher side consumes the queue
// and talks to the mail relay.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"timetrack/internal/metrics"
	"timetrack/internal/model"
	"timetrack/internal/queue"
)

const (
	TypePasswordReset     = "password_reset"
	TypeTimesheetReviewed = "timesheet_reviewed"
	TypeBulkReviewed      = "timesheets_bulk_reviewed"
)

type passwordReset struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	ResetURL string `json:"reset_url,omitempty"`
}

type timesheetReviewed struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

type bulkReviewed struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// Publisher enqueues notifications without making the caller wait for the
// queue. Failures are logged and counted.
type Publisher struct {
	q        queue.Queue
	resetURL string
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewPublisher(q queue.Queue, resetURL string) *Publisher {
	return &Publisher{q: q, resetURL: resetURL, timeout: 5 * time.Second}
}

func (p *Publisher) PasswordReset(ctx context.Context, email, token string) {
	p.publish(ctx, TypePasswordReset, passwordReset{Email: email, Token: token, ResetURL: p.resetURL})
}

func (p *Publisher) TimesheetReviewed(ctx context.Context, ts model.TimesheetEntry) {
	p.publish(ctx, TypeTimesheetReviewed, timesheetReviewed{
		Email:  ts.EmployeeEmail,
		Name:   ts.EmployeeName,
		Date:   ts.Date.Format(model.DateLayout),
		Status: string(ts.Status),
	})
}

func (p *Publisher) TimesheetsBulkReviewed(ctx context.Context, owner model.Employee, status model.TimesheetStatus, count int64) {
	p.publish(ctx, TypeBulkReviewed, bulkReviewed{
		Email:  owner.Email,
		Name:   owner.Name,
		Status: string(status),
		Count:  count,
	})
}

// Wait blocks until every pending publish has finished.
func (p *Publisher) Wait() {
	p.wg.Wait()
}

func (p *Publisher) publish(ctx context.Context, kind string, body any) {
	raw, err := json.Marshal(body)
	if err != nil {
		log.Printf("notify: encode %s: %v", kind, err)
		metrics.Notifications.WithLabelValues(kind, "failed").Inc()
		return
	}
	// the request context is about to be cancelled once the handler returns
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()
		if err := p.q.Publish(ctx, queue.Message{Type: kind, Body: raw}); err != nil {
			log.Printf("notify: publish %s failed: %v", kind, err)
			metrics.Notifications.WithLabelValues(kind, "failed").Inc()
			return
		}
		metrics.Notifications.WithLabelValues(kind, "queued").Inc()
	}()
}
