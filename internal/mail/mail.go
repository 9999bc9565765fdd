// Package mail renders and delivers transactional email.
package mail

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
)

// Message is a single outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

const verificationSubject = "Verify your Ledger account"

//go:embed verification.html
var verificationHTML string

var verificationTmpl = template.Must(template.New("verification").Parse(verificationHTML))

// VerificationLink builds the absolute link a user follows to verify.
func VerificationLink(baseURL, token string) string {
	return baseURL + "/verify-email?token=" + url.QueryEscape(token)
}

// VerificationMessage renders the verification email for a user.
func VerificationMessage(from, to, name, link string) (Message, error) {
	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, struct {
		Name string
		Link string
	}{Name: name, Link: link}); err != nil {
		return Message{}, fmt.Errorf("render verification email: %w", err)
	}
	return Message{From: from, To: to, Subject: verificationSubject, HTML: buf.String()}, nil
}

// LogSender writes messages to the log instead of sending them. Used when no
// provider key is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Email delivery disabled, message logged",
		"to", msg.To,
		"subject", msg.Subject)
	return nil
}
