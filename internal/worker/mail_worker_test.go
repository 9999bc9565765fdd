package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ledger/internal/amqp"
	"ledger/internal/core"
)

type fakeDeliverer struct {
	calls []string
	err   error
}

func (f *fakeDeliverer) DeliverVerification(_ context.Context, userID string) error {
	f.calls = append(f.calls, userID)
	return f.err
}

func TestMailWorker_HandleVerificationMessage(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		msg       amqp.VerificationEmailMessage
		err       error
		wantCalls int
		wantErr   bool
	}{
		{name: "delivers", msg: amqp.VerificationEmailMessage{UserID: "u1", Timestamp: now.Add(-time.Minute)}, wantCalls: 1},
		{name: "missing user id is dropped", msg: amqp.VerificationEmailMessage{Timestamp: now}, wantCalls: 0},
		{name: "expired message is dropped", msg: amqp.VerificationEmailMessage{UserID: "u1", Timestamp: now.Add(-25 * time.Hour)}, wantCalls: 0},
		{name: "unknown user is acked", msg: amqp.VerificationEmailMessage{UserID: "u1", Timestamp: now}, err: core.NotFound("user not found"), wantCalls: 1},
		{name: "provider failure is retried", msg: amqp.VerificationEmailMessage{UserID: "u1", Timestamp: now}, err: core.External("Failed to send email: 500"), wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDeliverer{err: tt.err}
			w := NewMailWorker(d)
			w.now = func() time.Time { return now }

			msg := tt.msg
			err := w.HandleVerificationMessage(context.Background(), &msg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, core.ErrExternal))
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, d.calls, tt.wantCalls)
		})
	}
}

func TestMailWorker_LogsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	w := NewMailWorker(&fakeDeliverer{})
	w.logger = slog.New(slog.NewTextHandler(&buf, nil))

	msg := amqp.VerificationEmailMessage{UserID: "u1", RequestID: "req_77", Timestamp: time.Now()}
	assert.NoError(t, w.HandleVerificationMessage(context.Background(), &msg))

	assert.Contains(t, buf.String(), "Verification email delivered")
	assert.Contains(t, buf.String(), "request_id=req_77")
	assert.Contains(t, buf.String(), "component=worker")
}
