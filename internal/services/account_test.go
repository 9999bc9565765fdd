package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ledger/internal/auth"
	"ledger/internal/core"
	"ledger/internal/mail"
	"ledger/internal/store/memory"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

type recordingQueue struct {
	ids []string
	err error
}

func (q *recordingQueue) PublishVerificationEmail(_ context.Context, userID string) error {
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, userID)
	return nil
}

type AccountServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *memory.Store
	sender *recordingSender
	svc    *AccountService
	now    time.Time
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.sender = &recordingSender{}
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.svc = NewAccountService(s.store, AccountConfig{
		BaseURL:    "http://ledger.test",
		MailFrom:   "Ledger <noreply@ledger.test>",
		BcryptCost: 4,
	}, nil, s.sender)
	s.svc.now = func() time.Time { return s.now }
}

func (s *AccountServiceTestSuite) register(email string) core.User {
	u, err := s.svc.Register(s.ctx, RegisterInput{Name: "Ada", Email: email, Password: "hunter22"})
	s.Require().NoError(err)
	return u
}

func (s *AccountServiceTestSuite) TestRegisterSendsVerification() {
	u := s.register("  Ada@Example.COM ")

	s.Equal("ada@example.com", u.Email)
	s.False(u.EmailVerified)
	s.Len(u.VerifyToken, 64)
	s.Require().NotNil(u.VerifyTokenExpiry)
	s.Equal(s.now.Add(24*time.Hour), *u.VerifyTokenExpiry)

	s.Require().Len(s.sender.sent, 1)
	msg := s.sender.sent[0]
	s.Equal("ada@example.com", msg.To)
	s.Contains(msg.HTML, "http://ledger.test/verify-email?token="+u.VerifyToken)
}

func (s *AccountServiceTestSuite) TestRegisterValidation() {
	_, err := s.svc.Register(s.ctx, RegisterInput{Name: "Ada", Email: "a@b.c"})
	s.ErrorIs(err, core.ErrValidation)
	s.Equal("All fields required", err.Error())

	s.register("a@b.c")
	_, err = s.svc.Register(s.ctx, RegisterInput{Name: "Other", Email: "A@B.C", Password: "x"})
	s.ErrorIs(err, core.ErrConflict)
	s.Equal("Email already in use", err.Error())
}

func (s *AccountServiceTestSuite) TestRegisterQueuesWhenAvailable() {
	q := &recordingQueue{}
	s.svc.queue = q

	u := s.register("q@example.com")
	s.Equal([]string{u.ID}, q.ids)
	s.Empty(s.sender.sent)

	// A failing queue falls back to sending inline.
	q.err = errors.New("broker down")
	s.register("q2@example.com")
	s.Len(s.sender.sent, 1)
}

func (s *AccountServiceTestSuite) TestRegisterMailFailureKeepsUser() {
	s.sender.err = core.External("Failed to send email: domain not verified")

	u, err := s.svc.Register(s.ctx, RegisterInput{Name: "Ada", Email: "m@example.com", Password: "pw"})
	s.ErrorIs(err, core.ErrExternal)
	s.NotEmpty(u.ID)

	stored, err := s.store.GetUserByEmail(s.ctx, "m@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, stored.ID)
}

func (s *AccountServiceTestSuite) TestVerifyEmail() {
	u := s.register("v@example.com")

	s.ErrorIs(s.svc.VerifyEmail(s.ctx, ""), ErrMissingToken)
	s.ErrorIs(s.svc.VerifyEmail(s.ctx, "nope"), ErrInvalidToken)

	s.Require().NoError(s.svc.VerifyEmail(s.ctx, u.VerifyToken))
	stored, err := s.store.GetUserByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(stored.EmailVerified)
	s.Empty(stored.VerifyToken)
	s.Nil(stored.VerifyTokenExpiry)

	// Tokens are single use.
	s.ErrorIs(s.svc.VerifyEmail(s.ctx, u.VerifyToken), ErrInvalidToken)
}

func (s *AccountServiceTestSuite) TestVerifyEmailExpired() {
	u := s.register("late@example.com")
	s.now = s.now.Add(auth.VerificationTTL + time.Second)
	s.ErrorIs(s.svc.VerifyEmail(s.ctx, u.VerifyToken), ErrInvalidToken)
}

func (s *AccountServiceTestSuite) TestLogin() {
	u := s.register("l@example.com")

	_, err := s.svc.Login(s.ctx, "l@example.com", "hunter22")
	s.ErrorIs(err, core.ErrEmailNotVerified)

	s.Require().NoError(s.svc.VerifyEmail(s.ctx, u.VerifyToken))

	got, err := s.svc.Login(s.ctx, "L@Example.com", "hunter22")
	s.Require().NoError(err)
	s.Equal(u.ID, got.ID)

	_, err = s.svc.Login(s.ctx, "l@example.com", "wrong")
	s.ErrorIs(err, core.ErrUnauthorized)
	_, err = s.svc.Login(s.ctx, "nobody@example.com", "hunter22")
	s.ErrorIs(err, core.ErrUnauthorized)
	_, err = s.svc.Login(s.ctx, "", "")
	s.ErrorIs(err, core.ErrUnauthorized)
}

func (s *AccountServiceTestSuite) TestGoogleSignIn() {
	created, err := s.svc.GoogleSignIn(s.ctx, auth.GoogleProfile{Email: "G@Example.com", Name: "Grace", Picture: "http://img"})
	s.Require().NoError(err)
	s.True(created.EmailVerified)
	s.Equal("g@example.com", created.Email)
	s.Equal("http://img", created.Image)

	again, err := s.svc.GoogleSignIn(s.ctx, auth.GoogleProfile{Email: "g@example.com"})
	s.Require().NoError(err)
	s.Equal(created.ID, again.ID)

	// An unverified credentials user becomes verified.
	u := s.register("both@example.com")
	linked, err := s.svc.GoogleSignIn(s.ctx, auth.GoogleProfile{Email: "both@example.com"})
	s.Require().NoError(err)
	s.Equal(u.ID, linked.ID)
	s.True(linked.EmailVerified)

	_, err = s.svc.Login(s.ctx, "both@example.com", "hunter22")
	s.NoError(err)

	_, err = s.svc.GoogleSignIn(s.ctx, auth.GoogleProfile{})
	s.ErrorIs(err, core.ErrUnauthorized)
}

func (s *AccountServiceTestSuite) TestGoogleUserCannotUsePassword() {
	_, err := s.svc.GoogleSignIn(s.ctx, auth.GoogleProfile{Email: "g@example.com"})
	s.Require().NoError(err)
	_, err = s.svc.Login(s.ctx, "g@example.com", "")
	s.ErrorIs(err, core.ErrUnauthorized)
	_, err = s.svc.Login(s.ctx, "g@example.com", "anything")
	s.ErrorIs(err, core.ErrUnauthorized)
}

func (s *AccountServiceTestSuite) TestDeliverVerification() {
	u := s.register("d@example.com")
	s.sender.sent = nil

	s.Require().NoError(s.svc.DeliverVerification(s.ctx, u.ID))
	s.Len(s.sender.sent, 1)

	s.Require().NoError(s.svc.VerifyEmail(s.ctx, u.VerifyToken))
	s.Require().NoError(s.svc.DeliverVerification(s.ctx, u.ID))
	s.Len(s.sender.sent, 1, "verified users are skipped")

	s.ErrorIs(s.svc.DeliverVerification(s.ctx, "missing"), core.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestMe() {
	u := s.register("me@example.com")
	got, err := s.svc.Me(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(u.Email, got.Email)

	_, err = s.svc.Me(s.ctx, "ghost")
	s.ErrorIs(err, core.ErrUnauthorized)
}
