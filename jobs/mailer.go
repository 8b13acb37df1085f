package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/peopleflow/peopleflow/internal/observability"
)

// Mailer delivers transactional email over plain SMTP. Local development
// points it at Mailpit; production at a real relay.
type Mailer struct {
	Addr    string
	From    string
	Logger  *slog.Logger
	Metrics *observability.Metrics

	// send is swappable in tests.
	send func(addr, from string, to []string, msg []byte) error
}

// NewMailer constructs a Mailer for the given SMTP address.
func NewMailer(addr, from string, logger *slog.Logger, metrics *observability.Metrics) *Mailer {
	return &Mailer{
		Addr:    addr,
		From:    from,
		Logger:  logger,
		Metrics: metrics,
		send: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
}

// Handle processes TaskTypeSendEmail tasks.
func (m *Mailer) Handle(ctx context.Context, t *asynq.Task) error {
	if m == nil {
		return errors.New("mailer: handler not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" {
		return asynq.SkipRetry
	}

	if err := m.Send(payload); err != nil {
		m.observe("failure")
		m.logger().Error("send email", slog.String("to", payload.To), slog.Any("error", err))
		return err
	}
	m.observe("success")
	m.logger().Info("sent email", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return nil
}

// Send builds and delivers one message.
func (m *Mailer) Send(payload SendEmailPayload) error {
	if m.Addr == "" {
		return errors.New("mailer: no smtp address configured")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", payload.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", payload.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(payload.Body)
	return m.send(m.Addr, m.From, []string{payload.To}, []byte(b.String()))
}

func (m *Mailer) observe(outcome string) {
	if m.Metrics != nil {
		m.Metrics.ObserveJob(TaskTypeSendEmail, outcome)
	}
}

func (m *Mailer) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}
