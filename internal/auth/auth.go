// Package auth establishes, resolves and tears down user sessions.
//
// A session is an opaque id held in a SessionStore. The browser receives it
// inside a signed JWT cookie, so the cookie can't be forged and never
// carries credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kraig-tester/Simple-blog-website/internal/db"
	"github.com/kraig-tester/Simple-blog-website/internal/log"
	"github.com/kraig-tester/Simple-blog-website/pkg/utils"
)

var (
	ErrUserNotFound       = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrEmailAlreadyInUse  = errors.New("user with this email already exists")
)

// UserStore is the slice of persistence the manager needs.
type UserStore interface {
	CreateUser(ctx context.Context, nu db.NewUser) (*db.User, error)
	FindUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUser(ctx context.Context, id int64) (*db.User, error)
}

type Options struct {
	SignKey     []byte
	TTL         time.Duration
	AdminEmails []string
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
}

type Manager struct {
	users     UserStore
	sessions  SessionStore
	signKey   []byte
	ttl       time.Duration
	admins    map[string]bool
	cost      int
	tokenAuth *jwtauth.JWTAuth
}

// Session is an established login.
type Session struct {
	ID        string
	User      *db.User
	Token     string
	ExpiresAt time.Time
}

func NewManager(users UserStore, sessions SessionStore, opts Options) *Manager {
	m := &Manager{
		users:     users,
		sessions:  sessions,
		signKey:   opts.SignKey,
		ttl:       opts.TTL,
		admins:    make(map[string]bool, len(opts.AdminEmails)),
		cost:      opts.HashCost,
		tokenAuth: jwtauth.New("HS256", opts.SignKey, nil),
	}
	if m.ttl <= 0 {
		m.ttl = 24 * time.Hour
	}
	if m.cost == 0 {
		m.cost = bcrypt.DefaultCost
	}
	for _, email := range opts.AdminEmails {
		m.admins[email] = true
	}
	return m
}

// Verifier is middleware that decodes the session cookie into the request
// context for SessionID.
func (m *Manager) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verifier(m.tokenAuth)
}

// SessionID extracts the session id verified by Verifier, or "" when the
// request carries no valid cookie.
func SessionID(ctx context.Context) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	sid, _ := claims["sid"].(string)
	return sid
}

func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := m.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return nil, err
	}
	return m.start(ctx, user)
}

// Register creates the account and logs it in.
func (m *Manager) Register(ctx context.Context, email, password, name string) (*Session, error) {
	existing, err := m.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyInUse
	}
	hashed, err := HashPassword(password, m.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := m.users.CreateUser(ctx, db.NewUser{Email: email, Password: hashed, Name: name})
	if errors.Is(err, db.ErrDuplicateEmail) {
		// lost a race with a concurrent registration
		return nil, ErrEmailAlreadyInUse
	}
	if err != nil {
		return nil, err
	}
	return m.start(ctx, user)
}

func (m *Manager) start(ctx context.Context, user *db.User) (*Session, error) {
	sid, err := m.sessions.CreateSession(ctx, user.Id, m.ttl)
	if err != nil {
		return nil, err
	}
	expires := time.Now().Add(m.ttl)
	token, err := utils.GenerateToken(m.signKey, sid, expires)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &Session{ID: sid, User: user, Token: token, ExpiresAt: expires}, nil
}

// Logout invalidates sid. Calling it without a session is fine.
func (m *Manager) Logout(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return m.sessions.DeleteSession(ctx, sid)
}

// CurrentUser resolves sid to its user, or nil for anonymous requests.
func (m *Manager) CurrentUser(ctx context.Context, sid string) *db.User {
	if sid == "" {
		return nil
	}
	userID, err := m.sessions.SessionUser(ctx, sid)
	if err != nil {
		if !errors.Is(err, db.ErrSessionNotFound) {
			log.Error.Printf("resolve session: %v", err)
		}
		return nil
	}
	user, err := m.users.GetUser(ctx, userID)
	if err != nil {
		log.Warn.Printf("session %s points at missing user %d: %v", sid, userID, err)
		return nil
	}
	return user
}

func (m *Manager) IsAdmin(user *db.User) bool {
	return user != nil && (user.IsAdmin || m.admins[user.Email])
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}
