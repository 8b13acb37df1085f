package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func newTestMailer() (*Mailer, *[]string) {
	var sent []string
	m := NewMailer("127.0.0.1:1025", "no-reply@peopleflow.local", slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	m.send = func(addr, from string, to []string, msg []byte) error {
		sent = append(sent, string(msg))
		return nil
	}
	return m, &sent
}

func TestMailerHandleSendsMessage(t *testing.T) {
	m, sent := newTestMailer()

	task, err := NewSendEmailTask(SendEmailPayload{
		To:      "owner@acme.local",
		Subject: "Candidate hired",
		Body:    "Jamie Nguyen accepted the offer.",
	})
	require.NoError(t, err)

	require.NoError(t, m.Handle(context.Background(), task))
	require.Len(t, *sent, 1)
	require.Contains(t, (*sent)[0], "To: owner@acme.local")
	require.Contains(t, (*sent)[0], "Subject: Candidate hired")
	require.Contains(t, (*sent)[0], "Jamie Nguyen accepted the offer.")
}

func TestMailerSkipsMalformedPayloads(t *testing.T) {
	m, sent := newTestMailer()

	err := m.Handle(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Empty(t, *sent)

	task, err := NewSendEmailTask(SendEmailPayload{Subject: "no recipient"})
	require.NoError(t, err)
	err = m.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Empty(t, *sent)
}
