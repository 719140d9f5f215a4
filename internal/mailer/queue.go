package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ladytrish-Devops/avaloniccornwell.com/internal/model"
)

type queuedMessage struct {
	msg     Message
	retries int
}

// Queue decouples email delivery from the request lifecycle. Messages are
// sent at a fixed rate by a single background goroutine; failures are
// retried with backoff and logged, never surfaced to submitters.
type Queue struct {
	mailer   *Mailer
	ch       chan queuedMessage
	rate     time.Duration
	maxRetry int
}

func NewQueue(m *Mailer, rate time.Duration, bufferSize, maxRetry int) *Queue {
	return &Queue{
		mailer:   m,
		ch:       make(chan queuedMessage, bufferSize),
		rate:     rate,
		maxRetry: maxRetry,
	}
}

// Start processes queued messages at the configured rate until ctx is
// cancelled. On shutdown it drains any remaining messages before returning.
func (q *Queue) Start(ctx context.Context) {
	ticker := time.NewTicker(q.rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			q.drain()
			return
		case <-ticker.C:
			select {
			case item := <-q.ch:
				q.attempt(ctx, item)
			default:
				// no message ready; wait for next tick
			}
		}
	}
}

// Enqueue adds a message to the queue without blocking.
func (q *Queue) Enqueue(msg Message) error {
	select {
	case q.ch <- queuedMessage{msg: msg}:
		return nil
	default:
		return fmt.Errorf("mailer: queue full, message not queued")
	}
}

// NotifyLead formats a submission summary and enqueues it for the
// configured recipient. Implements handler.Notifier.
func (q *Queue) NotifyLead(lead model.Lead) error {
	subject := fmt.Sprintf("New lead #%d", lead.ID)
	if lead.Company != "" {
		subject += " from " + lead.Company
	}
	return q.Enqueue(Message{
		To:      []string{q.mailer.cfg.To},
		Subject: subject,
		Body:    leadSummary(lead),
	})
}

// attempt sends a message, scheduling a context-aware retry with backoff on failure.
func (q *Queue) attempt(ctx context.Context, item queuedMessage) {
	if err := q.mailer.send(item.msg); err == nil {
		return
	}

	if item.retries >= q.maxRetry {
		slog.Error("mailer: message dropped after max retries", "to", item.msg.To, "subject", item.msg.Subject)
		return
	}

	item.retries++
	backoff := time.Duration(item.retries) * 5 * time.Second
	slog.Warn("mailer: send failed, retrying with backoff", "to", item.msg.To, "retry", item.retries, "backoff", backoff)

	go func() {
		select {
		case <-time.After(backoff):
			select {
			case q.ch <- item:
			default:
				slog.Error("mailer: requeue failed, queue full, message dropped", "to", item.msg.To)
			}
		case <-ctx.Done():
			slog.Warn("mailer: retry cancelled during shutdown", "to", item.msg.To)
		}
	}()
}

// drain flushes remaining queued messages on shutdown, best-effort.
func (q *Queue) drain() {
	for {
		select {
		case item := <-q.ch:
			if err := q.mailer.send(item.msg); err != nil {
				slog.Error("mailer: drain send failed", "to", item.msg.To, "err", err)
			}
		default:
			return
		}
	}
}

func leadSummary(lead model.Lead) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("New lead submission #%d\n", lead.ID))
	sb.WriteString(fmt.Sprintf("Received: %s\n\n", lead.ReceivedAt.Format(time.RFC1123)))

	sb.WriteString(fmt.Sprintf("Company:  %s\n", valueOrDefault(lead.Company)))
	sb.WriteString(fmt.Sprintf("Contact:  %s\n", valueOrDefault(lead.ContactName)))
	sb.WriteString(fmt.Sprintf("Phone:    %s\n", valueOrDefault(lead.Phone)))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", valueOrDefault(lead.Email)))
	sb.WriteString(fmt.Sprintf("Amount:   %s\n", valueOrDefault(lead.Amount)))
	sb.WriteString(fmt.Sprintf("Sector:   %s\n", valueOrDefault(lead.Sector)))

	sb.WriteString("\nMessage:\n")
	sb.WriteString(valueOrDefault(lead.Message))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("\nAttachments: %d file(s)\n", len(lead.Files)))
	for _, f := range lead.Files {
		sb.WriteString(fmt.Sprintf("  - %s (%d bytes)\n", f.OriginalName, f.Size))
	}

	return sb.String()
}

func valueOrDefault(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}
