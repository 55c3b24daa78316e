package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kukufarm/kukutrack/internal/domain/models"
	"github.com/kukufarm/kukutrack/pkg/clients/backend"
)

// State is the session lifecycle position.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateExpired        State = "expired"
	StateLoggedOut      State = "logged_out"
)

// Guard owns the authentication token and its lifecycle. It is the single
// writer of session state; every outgoing protected call reads the token
// through it. All transitions are serialized behind one mutex.
type Guard struct {
	api    backend.AuthAPI
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	state     State
	current   models.Session
	onExpired func(models.Session)
}

// NewGuard wires a guard and restores any persisted session. A blob whose
// expiry has already passed is discarded instead of entering the
// authenticated state.
func NewGuard(api backend.AuthAPI, store Store, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Guard{
		api:    api,
		store:  store,
		logger: logger,
		now:    time.Now,
		state:  StateAnonymous,
	}

	sess, err := store.Load()
	if err != nil {
		logger.Warn("failed to load persisted session", zap.Error(err))
		return g
	}
	if sess == nil {
		return g
	}

	if sess.ExpiredAt(g.now()) {
		logger.Info("discarding expired persisted session", zap.String("email", sess.Email))
		if err := store.Clear(); err != nil {
			logger.Warn("failed to clear expired session", zap.Error(err))
		}
		return g
	}

	g.current = *sess
	g.state = StateAuthenticated
	logger.Info("restored persisted session",
		zap.String("email", sess.Email),
		zap.Time("expires_at", sess.ExpiresAt()))
	return g
}

// OnExpired registers the forced-logout notification hook. The callback
// runs outside the guard's lock.
func (g *Guard) OnExpired(fn func(models.Session)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onExpired = fn
}

// State returns the current lifecycle position.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Current returns a copy of the live session, if any.
func (g *Guard) Current() (models.Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateAuthenticated {
		return models.Session{}, false
	}
	return g.current, true
}

// Token implements backend.TokenSource. An expired session detected here
// triggers the same forced logout the periodic check performs.
func (g *Guard) Token() (string, error) {
	g.mu.Lock()

	if g.state != StateAuthenticated {
		g.mu.Unlock()
		return "", models.ErrAuthenticationRequired
	}

	if g.current.ExpiredAt(g.now()) {
		expired, hook := g.expireLocked()
		g.mu.Unlock()
		if hook != nil {
			hook(expired)
		}
		return "", models.ErrAuthenticationRequired
	}

	token := g.current.Token
	g.mu.Unlock()
	return token, nil
}

// CheckExpiry is invoked by the scheduler on a fixed interval and forces
// logout once the token expiry has passed.
func (g *Guard) CheckExpiry() {
	g.mu.Lock()

	if g.state != StateAuthenticated || !g.current.ExpiredAt(g.now()) {
		g.mu.Unlock()
		return
	}

	expired, hook := g.expireLocked()
	g.mu.Unlock()

	g.logger.Info("session expired, forcing logout", zap.String("email", expired.Email))
	if hook != nil {
		hook(expired)
	}
}

// expireLocked transitions to Expired and clears persisted state. Callers
// hold the mutex; the returned hook must run after releasing it.
func (g *Guard) expireLocked() (models.Session, func(models.Session)) {
	expired := g.current
	g.current = models.Session{}
	g.state = StateExpired

	if err := g.store.Clear(); err != nil {
		g.logger.Warn("failed to clear expired session", zap.Error(err))
	}
	return expired, g.onExpired
}

// Login exchanges credentials for a session and persists it.
func (g *Guard) Login(ctx context.Context, email, password string) error {
	g.mu.Lock()
	if g.state == StateAuthenticating {
		g.mu.Unlock()
		return errors.New("login already in progress")
	}
	g.state = StateAuthenticating
	g.mu.Unlock()

	sess, err := g.api.Login(ctx, email, password)

	g.mu.Lock()
	defer g.mu.Unlock()

	if err != nil {
		g.state = StateAnonymous
		return err
	}

	g.current = sess
	g.state = StateAuthenticated

	if err := g.store.Save(sess); err != nil {
		// The live session still works; it just won't survive a restart.
		g.logger.Warn("failed to persist session", zap.Error(err))
	}

	g.logger.Info("logged in", zap.String("email", sess.Email), zap.Time("expires_at", sess.ExpiresAt()))
	return nil
}

// Logout clears the session by explicit user action.
func (g *Guard) Logout() {
	g.mu.Lock()
	defer g.mu.Unlock()

	email := g.current.Email
	g.current = models.Session{}
	g.state = StateLoggedOut

	if err := g.store.Clear(); err != nil {
		g.logger.Warn("failed to clear session on logout", zap.Error(err))
	}
	g.logger.Info("logged out", zap.String("email", email))
}

// Signup registers a new account; the session state is untouched until the
// account is activated and logged in.
func (g *Guard) Signup(ctx context.Context, name, email, password string) error {
	return g.api.Signup(ctx, name, email, password)
}

// Activate confirms a new account using the emailed token.
func (g *Guard) Activate(ctx context.Context, token string) error {
	return g.api.Activate(ctx, token)
}

// RequestPasswordReset asks the backend to send a reset email.
func (g *Guard) RequestPasswordReset(ctx context.Context, email string) error {
	return g.api.RequestPasswordReset(ctx, email)
}

// ResetPassword applies a new password given a reset token.
func (g *Guard) ResetPassword(ctx context.Context, password, token string) error {
	return g.api.ResetPassword(ctx, password, token)
}

// ResendActivation re-sends the activation email.
func (g *Guard) ResendActivation(ctx context.Context, email string) error {
	return g.api.ResendActivation(ctx, email)
}

// UpdateProfile changes the display name and/or password of the logged-in
// account and keeps the persisted identity in sync.
func (g *Guard) UpdateProfile(ctx context.Context, name, password string) error {
	if err := g.api.UpdateProfile(ctx, name, password); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateAuthenticated && name != "" {
		g.current.Name = name
		if err := g.store.Save(g.current); err != nil {
			g.logger.Warn("failed to persist updated profile", zap.Error(err))
		}
	}
	return nil
}
