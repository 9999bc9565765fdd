package http

import (
	"errors"
	"net/http"
	"time"

	"ledger/internal/auth"
	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/services"
)

const (
	verifyStatusPath  = "/verify-email/status"
	googleFailurePath = "/login?error=google"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User      core.User `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Name = sanitizeInput(in.Name)

	if _, err := s.deps.Accounts.Register(r.Context(), in); err != nil {
		writeError(w, r, err)
		return
	}
	MessageResponse(http.StatusCreated, "Account created. Check your email to verify your account.").Write(w)
}

// handleVerifyEmail is the target of the emailed link. It always redirects
// to the status page, which reports the outcome.
func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Accounts.VerifyEmail(r.Context(), r.URL.Query().Get("token"))

	target := verifyStatusPath + "?success=true"
	switch {
	case err == nil:
	case errors.Is(err, services.ErrMissingToken):
		target = verifyStatusPath + "?error=missing"
	case errors.Is(err, services.ErrInvalidToken):
		target = verifyStatusPath + "?error=invalid"
	default:
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleVerifyStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("success") == "true":
		MessageResponse(http.StatusOK, "Email verified. You can now sign in.").Write(w)
	case q.Get("error") == "missing":
		BadRequestError("Verification token is missing").Write(w)
	default:
		BadRequestError("Verification link is invalid or has expired").Write(w)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := s.deps.Accounts.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.startSession(w, r, u)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, u core.User) {
	token, expires, err := s.deps.Sessions.Issue(u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Session started", applog.FieldUserID, u.ID)
	NewResponse().
		Cookie(s.newSessionCookie(token, expires)).
		JSON(sessionResponse{User: u, Token: token, ExpiresAt: expires}).
		Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	NewResponse().
		Cookie(s.clearCookie(sessionCookie, "/")).
		JSON(messageBody{Message: "Logged out"}).
		Write(w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.deps.Accounts.Me(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.Google == nil {
		NotFoundError("Google sign-in is not configured").Write(w)
		return
	}
	state, err := auth.NewState()
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.deps.Google.AuthCodeURL(state), http.StatusFound)
}

// handleGoogleCallback completes the OAuth round trip. Failures send the
// browser back to the login page rather than rendering an error.
func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.deps.Google == nil {
		NotFoundError("Google sign-in is not configured").Write(w)
		return
	}
	logger := applog.FromContext(r.Context())
	http.SetCookie(w, s.clearCookie(stateCookie, "/auth/google"))

	q := r.URL.Query()
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		logger.WarnContext(r.Context(), "Google callback state mismatch")
		http.Redirect(w, r, googleFailurePath, http.StatusFound)
		return
	}
	if e := q.Get("error"); e != "" || q.Get("code") == "" {
		logger.WarnContext(r.Context(), "Google sign-in cancelled", "reason", e)
		http.Redirect(w, r, googleFailurePath, http.StatusFound)
		return
	}

	profile, err := s.deps.Google.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		logger.ErrorContext(r.Context(), "Google code exchange failed", applog.FieldError, err)
		http.Redirect(w, r, googleFailurePath, http.StatusFound)
		return
	}
	u, err := s.deps.Accounts.GoogleSignIn(r.Context(), profile)
	if err != nil {
		logger.ErrorContext(r.Context(), "Google sign-in failed", applog.FieldError, err)
		http.Redirect(w, r, googleFailurePath, http.StatusFound)
		return
	}
	token, expires, err := s.deps.Sessions.Issue(u)
	if err != nil {
		logger.ErrorContext(r.Context(), "Session issue failed", applog.FieldError, err)
		http.Redirect(w, r, googleFailurePath, http.StatusFound)
		return
	}
	http.SetCookie(w, s.newSessionCookie(token, expires))
	http.Redirect(w, r, "/", http.StatusFound)
}
