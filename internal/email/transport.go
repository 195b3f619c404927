// Package email renders and hands off match-notification emails. Sending
// is fire-and-forget from the dispatcher's point of view: the transport
// enqueues a rendered message for the mailer service and never blocks match
// throughput on SMTP latency or retries.
package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/beast717/ishtri.site-sub000/shared/rabbitmq"
)

// Transport sends one rendered email. Failures are non-fatal by contract;
// callers log and move on.
type Transport interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// mailJob is the message format consumed by the mailer service.
type mailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// OutboxTransport publishes mail jobs onto a durable RabbitMQ queue.
type OutboxTransport struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

// NewOutboxTransport creates a transport bound to the mailer queue client.
func NewOutboxTransport(client *rabbitmq.Client, logger *slog.Logger) *OutboxTransport {
	return &OutboxTransport{client: client, logger: logger}
}

// Send enqueues the rendered email. No retries: a lost email is observable
// only in logs, the persisted notification remains the durable record.
func (t *OutboxTransport) Send(ctx context.Context, to, subject, htmlBody string) error {
	body, err := json.Marshal(mailJob{To: to, Subject: subject, HTML: htmlBody})
	if err != nil {
		return fmt.Errorf("marshal mail job: %w", err)
	}

	if err := t.client.Publish(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("enqueue mail job: %w", err)
	}

	t.logger.Debug("Mail job enqueued",
		slog.String("to", to),
		slog.String("subject", subject),
	)

	return nil
}
