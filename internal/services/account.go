package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ledger/internal/auth"
	"ledger/internal/core"
	"ledger/internal/mail"
	"ledger/internal/store"
)

// Verification link outcomes. The HTTP layer turns them into the error query
// parameter of the status redirect.
var (
	ErrMissingToken = core.Invalid("missing")
	ErrInvalidToken = core.Invalid("invalid")
)

var errInvalidCredentials = core.Unauthorized("Invalid email or password")

// VerificationQueue hands verification emails to the mail worker.
type VerificationQueue interface {
	PublishVerificationEmail(ctx context.Context, userID string) error
}

// AccountConfig carries the settings the account flows need.
type AccountConfig struct {
	BaseURL    string
	MailFrom   string
	BcryptCost int
}

// RegisterInput is the JSON body of a registration request.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountService covers registration, email verification, credential and
// Google sign-in. Sessions are issued by the caller.
type AccountService struct {
	users  store.UserStore
	cfg    AccountConfig
	queue  VerificationQueue
	mailer mail.Sender
	now    func() time.Time
	newID  func() string
}

// NewAccountService wires the account flows. queue may be nil, in which case
// verification emails are sent inline through mailer.
func NewAccountService(users store.UserStore, cfg AccountConfig, queue VerificationQueue, mailer mail.Sender) *AccountService {
	if mailer == nil {
		mailer = mail.LogSender{}
	}
	return &AccountService{
		users:  users,
		cfg:    cfg,
		queue:  queue,
		mailer: mailer,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Register creates an unverified user and dispatches the verification email.
// If dispatch fails the user is kept and an external error is returned.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (core.User, error) {
	name := strings.TrimSpace(in.Name)
	email := core.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return core.User{}, core.Invalid("All fields required")
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return core.User{}, core.Conflict("Email already in use")
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return core.User{}, err
	}
	token, err := auth.NewVerificationToken()
	if err != nil {
		return core.User{}, err
	}
	now := s.now().UTC()
	expiry := now.Add(auth.VerificationTTL)

	u, err := s.users.CreateUser(ctx, core.User{
		ID:                s.newID(),
		Name:              name,
		Email:             email,
		PasswordHash:      hash,
		VerifyToken:       token,
		VerifyTokenExpiry: &expiry,
		CreatedAt:         now,
	})
	if err != nil {
		return core.User{}, err
	}
	slog.InfoContext(ctx, "User registered", "user_id", u.ID)

	if err := s.dispatchVerification(ctx, u); err != nil {
		return u, err
	}
	return u, nil
}

func (s *AccountService) dispatchVerification(ctx context.Context, u core.User) error {
	if s.queue != nil {
		err := s.queue.PublishVerificationEmail(ctx, u.ID)
		if err == nil {
			return nil
		}
		slog.WarnContext(ctx, "Queueing verification email failed, sending inline",
			"user_id", u.ID, "error", err)
	}
	if err := s.sendVerification(ctx, u); err != nil {
		slog.ErrorContext(ctx, "Verification email failed", "user_id", u.ID, "error", err)
		return err
	}
	return nil
}

// DeliverVerification sends the verification email of a stored user. Users
// that are already verified or hold no live token are skipped.
func (s *AccountService) DeliverVerification(ctx context.Context, userID string) error {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.EmailVerified || u.VerifyToken == "" || !s.tokenLive(u) {
		slog.DebugContext(ctx, "Verification email skipped", "user_id", userID)
		return nil
	}
	return s.sendVerification(ctx, u)
}

func (s *AccountService) sendVerification(ctx context.Context, u core.User) error {
	msg, err := mail.VerificationMessage(s.cfg.MailFrom, u.Email, u.Name,
		mail.VerificationLink(s.cfg.BaseURL, u.VerifyToken))
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, msg)
}

func (s *AccountService) tokenLive(u core.User) bool {
	return u.VerifyTokenExpiry != nil && u.VerifyTokenExpiry.After(s.now())
}

// VerifyEmail marks the owner of an unexpired token as verified and clears
// the token so it cannot be reused.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}
	u, err := s.users.GetUserByVerifyToken(ctx, token)
	if errors.Is(err, core.ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("lookup token: %w", err)
	}
	if !s.tokenLive(u) {
		return ErrInvalidToken
	}

	u.EmailVerified = true
	u.VerifyToken = ""
	u.VerifyTokenExpiry = nil
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	slog.InfoContext(ctx, "Email verified", "user_id", u.ID)
	return nil
}

// Login checks credentials. Users without a password (Google accounts) can
// not log in this way; unverified users get core.ErrEmailNotVerified.
func (s *AccountService) Login(ctx context.Context, email, password string) (core.User, error) {
	email = core.NormalizeEmail(email)
	if email == "" || password == "" {
		return core.User{}, errInvalidCredentials
	}
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, errInvalidCredentials
	}
	if err != nil {
		return core.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return core.User{}, errInvalidCredentials
	}
	if !u.EmailVerified {
		return core.User{}, core.ErrEmailNotVerified
	}
	return u, nil
}

// GoogleSignIn finds or creates the user behind a Google profile. Google
// vouches for the address, so the user ends up verified either way.
func (s *AccountService) GoogleSignIn(ctx context.Context, p auth.GoogleProfile) (core.User, error) {
	email := core.NormalizeEmail(p.Email)
	if email == "" {
		return core.User{}, core.Unauthorized("Google account has no email address")
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if u.EmailVerified {
			return u, nil
		}
		u.EmailVerified = true
		u.VerifyToken = ""
		u.VerifyTokenExpiry = nil
		if u.Image == "" {
			u.Image = p.Picture
		}
		if err := s.users.UpdateUser(ctx, u); err != nil {
			return core.User{}, fmt.Errorf("update user: %w", err)
		}
		return u, nil
	case !errors.Is(err, core.ErrNotFound):
		return core.User{}, fmt.Errorf("lookup user: %w", err)
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = email
	}
	u, err = s.users.CreateUser(ctx, core.User{
		ID:            s.newID(),
		Name:          name,
		Email:         email,
		Image:         p.Picture,
		EmailVerified: true,
		CreatedAt:     s.now().UTC(),
	})
	if err != nil {
		return core.User{}, err
	}
	slog.InfoContext(ctx, "User created from Google sign-in", "user_id", u.ID)
	return u, nil
}

// Me returns the signed-in user.
func (s *AccountService) Me(ctx context.Context, userID string) (core.User, error) {
	if userID == "" {
		return core.User{}, core.ErrUnauthorized
	}
	u, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, core.ErrUnauthorized
	}
	return u, err
}
