// Package session holds the authenticated identity and drives login,
// signup and logout against the N3 API.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fentz26/n3dash/internal/api"
	"github.com/fentz26/n3dash/internal/models"
	"github.com/fentz26/n3dash/internal/notify"
	"github.com/fentz26/n3dash/internal/store"
	"github.com/golang-jwt/jwt/v5"
)

// User-facing messages.
const (
	MsgLoginSuccess   = "Signed in."
	MsgLoginFailed    = "Login failed. Check your id and password."
	MsgSignupFailed   = "Sign up failed. Check your input."
	MsgLoggedOut      = "Signed out."
	fieldLabelDefault = "input"
)

// Authenticator is the part of the API client the session store needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*api.LoginResult, error)
	Register(ctx context.Context, in api.RegisterInput) error
	SetToken(token string)
	ClearToken()
}

// Persister keeps the login across process restarts.
type Persister interface {
	SaveSession(ctx context.Context, sess models.Session) error
	LoadSession(ctx context.Context) (*models.Session, error)
	DeleteSession(ctx context.Context) error
}

// State is a snapshot of the session store.
type State struct {
	User    *models.Session
	Loading bool
	Error   string
}

// Store is the session store. It is safe for concurrent use.
type Store struct {
	auth    Authenticator
	persist Persister
	notify  notify.Publisher
	log     *slog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	user    *models.Session
	loading bool
	err     string
}

// Option configures a Store.
type Option func(*Store)

// WithPersister enables persisting the login between runs.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persist = p }
}

// WithLogger sets the store's logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a session store that authenticates through auth and reports
// outcomes to pub.
func New(auth Authenticator, pub notify.Publisher, opts ...Option) *Store {
	if pub == nil {
		pub = notify.Discard
	}
	s := &Store{
		auth:   auth,
		notify: pub,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{Loading: s.loading, Error: s.err}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// User returns the current identity, or nil when signed out.
func (s *Store) User() *models.Session {
	return s.State().User
}

// Authenticated reports whether a session is active.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Login authenticates and establishes the session. Failures are recorded as
// the store's error and published; the error is also returned.
func (s *Store) Login(ctx context.Context, id, password string) error {
	s.begin()

	result, err := s.auth.Login(ctx, id, password)
	if err != nil {
		s.log.Warn("login failed", "user", id, "error", err)
		s.fail(MsgLoginFailed)
		return fmt.Errorf("login: %w", err)
	}

	sess := models.Session{
		UserID:     result.UserID,
		Nickname:   result.Nickname,
		Department: models.ParseUserDepartment(result.Department),
		Token:      result.AccessToken,
		ExpiresAt:  tokenExpiry(result.AccessToken),
	}
	if sess.UserID == "" {
		sess.UserID = id
	}
	s.auth.SetToken(sess.Token)

	s.mu.Lock()
	s.user = &sess
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.SaveSession(ctx, sess); err != nil {
			s.log.Warn("persist session failed", "error", err)
		}
	}
	s.log.Info("signed in", "user", sess.UserID)
	s.notify.Notify(MsgLoginSuccess, notify.KindSuccess)
	return nil
}

// Signup registers an account and, on success, logs in with the same
// credentials.
func (s *Store) Signup(ctx context.Context, id, nickname, password string, department models.UserDepartment) error {
	s.begin()

	err := s.auth.Register(ctx, api.RegisterInput{
		Username:   id,
		Name:       nickname,
		Password:   password,
		Department: string(department),
	})
	if err != nil {
		msg := SignupMessage(err)
		s.log.Warn("signup failed", "user", id, "error", err)
		s.fail(msg)
		return fmt.Errorf("signup: %w", err)
	}
	return s.Login(ctx, id, password)
}

// Logout clears the identity, revokes the transport credential and drops
// the persisted login.
func (s *Store) Logout() {
	s.mu.Lock()
	var userID string
	if s.user != nil {
		userID = s.user.UserID
	}
	s.user = nil
	s.err = ""
	s.mu.Unlock()

	s.auth.ClearToken()
	if s.persist != nil {
		if err := s.persist.DeleteSession(context.Background()); err != nil {
			s.log.Warn("delete persisted session failed", "error", err)
		}
	}
	s.log.Info("signed out", "user", userID)
	s.notify.Notify(MsgLoggedOut, notify.KindInfo)
}

// Restore re-establishes a persisted, unexpired login. It reports whether a
// session is active afterwards.
func (s *Store) Restore(ctx context.Context) (bool, error) {
	if s.persist == nil {
		return s.Authenticated(), nil
	}
	sess, err := s.persist.LoadSession(ctx)
	if errors.Is(err, store.ErrNoSession) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("restore session: %w", err)
	}
	if sess.Expired(s.now()) {
		s.log.Info("persisted session expired", "user", sess.UserID)
		if err := s.persist.DeleteSession(ctx); err != nil {
			s.log.Warn("delete expired session failed", "error", err)
		}
		return false, nil
	}

	s.auth.SetToken(sess.Token)
	s.mu.Lock()
	s.user = sess
	s.err = ""
	s.mu.Unlock()
	return true, nil
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *Store) fail(msg string) {
	s.mu.Lock()
	s.loading = false
	s.err = msg
	s.mu.Unlock()
	s.notify.Notify(msg, notify.KindError)
}

// SignupMessage picks the most specific message for a failed registration:
// the server detail, then the first field error, then a fixed fallback.
func SignupMessage(err error) string {
	if detail := api.Detail(err); detail != "" {
		return detail
	}
	if fe, ok := api.FirstFieldError(err); ok {
		label := fe.Label
		if label == "" {
			label = fe.Field
		}
		if label == "" {
			label = fieldLabelDefault
		}
		msg := fe.Message
		if msg == "" {
			msg = MsgSignupFailed
		}
		return label + ": " + msg
	}
	return MsgSignupFailed
}

// tokenExpiry reads the exp claim of a JWT without verifying its signature.
// Opaque or claim-less tokens yield nil.
func tokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}
