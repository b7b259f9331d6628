// Package auth covers passwords, login sessions and the request-scoped
// current user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"blog/internal/models"
	"blog/internal/store"
)

const CookieName = "sessionid"

var (
	ErrInvalidLogin = errors.New("please enter a correct username and password")
	ErrNoSession    = errors.New("session not found")
)

// ----------------------------
// Context helpers
// ----------------------------

type ctxKeyUser struct{}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, u)
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxKeyUser{}).(*models.User)
	return u
}

func UserIDFrom(ctx context.Context) (int64, bool) {
	if u := UserFrom(ctx); u != nil {
		return u.ID, true
	}
	return 0, false
}

// ----------------------------
// Passwords
// ----------------------------

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ----------------------------
// Manager
// ----------------------------

// Manager owns account creation and cookie-backed login sessions.
type Manager struct {
	store    *store.Store
	lifetime time.Duration
	log      *slog.Logger
	now      func() time.Time
}

func NewManager(s *store.Store, lifetime time.Duration, log *slog.Logger) *Manager {
	return &Manager{store: s, lifetime: lifetime, log: log, now: time.Now}
}

// Register hashes password and creates u; the store provisions its profile.
func (m *Manager) Register(ctx context.Context, u *models.User, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	if err := m.store.Users().Create(ctx, u); err != nil {
		return err
	}
	m.log.Info("user registered", "user_id", u.ID, "username", u.Username)
	return nil
}

// Login checks the credentials and opens a fresh session, closing any
// older sessions of the same user.
func (m *Manager) Login(ctx context.Context, username, password string) (*models.Session, *models.User, error) {
	u, err := m.store.Users().ByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		m.log.Info("login failed", "username", username, "reason", "no such user")
		return nil, nil, ErrInvalidLogin
	}
	if err != nil {
		return nil, nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		m.log.Info("login failed", "username", username, "reason", "bad password")
		return nil, nil, ErrInvalidLogin
	}

	sess := &models.Session{
		ID:        uuid.New().String(),
		UserID:    u.ID,
		ExpiresAt: m.now().Add(m.lifetime),
	}
	err = m.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.Sessions().DeleteForUser(ctx, u.ID); err != nil {
			return err
		}
		return tx.Sessions().Create(ctx, sess)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}
	m.log.Info("login ok", "user_id", u.ID)
	return sess, u, nil
}

func (m *Manager) Logout(ctx context.Context, sid string) error {
	return m.store.Sessions().Delete(ctx, sid)
}

// UserFromSession resolves a live session id to its user.
func (m *Manager) UserFromSession(ctx context.Context, sid string) (*models.User, error) {
	sess, err := m.store.Sessions().Get(ctx, sid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if !sess.ExpiresAt.After(m.now()) {
		_ = m.store.Sessions().Delete(ctx, sid)
		return nil, ErrNoSession
	}
	return m.store.Users().ByID(ctx, sess.UserID)
}

// PurgeExpired drops sessions that can no longer be used.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.store.Sessions().DeleteExpired(ctx)
}

func (m *Manager) SetCookie(w http.ResponseWriter, sess *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
}

func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
