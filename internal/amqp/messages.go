package amqp

import (
	"context"
	"encoding/json"
	"time"

	"ledger/internal/middleware/trace"
)

// VerificationEmailMessage asks the mail worker to send the verification email
// for a user. Only the user ID travels on the queue; the worker reads the
// current token from the database so a re-registration never mails a stale link.
//
// RequestID is the id of the API request that queued the message, if any.
type VerificationEmailMessage struct {
	UserID    string    `json:"userId"`
	RequestID string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewVerificationEmailMessage(ctx context.Context, userID string) *VerificationEmailMessage {
	return &VerificationEmailMessage{
		UserID:    userID,
		RequestID: trace.GetRequestID(ctx),
		Timestamp: time.Now(),
	}
}

func (m *VerificationEmailMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func VerificationEmailMessageFromJSON(data []byte) (*VerificationEmailMessage, error) {
	var msg VerificationEmailMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
