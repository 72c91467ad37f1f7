package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"dealership_api/internal/domain"
)

type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionStore
	ttl      time.Duration
	cost     int
}

func NewAuthService(users domain.UserRepository, sessions domain.SessionStore, ttl time.Duration) *AuthService {
	return &AuthService{users: users, sessions: sessions, ttl: ttl, cost: bcrypt.DefaultCost}
}

type Registration struct {
	UserName  string `json:"userName"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type Session struct {
	Token     string
	Principal domain.Principal
}

// Login returns domain.ErrInvalidCredentials for an unknown user or a wrong
// password, without telling the two apart.
func (s *AuthService) Login(ctx context.Context, userName, password string) (Session, error) {
	if strings.TrimSpace(userName) == "" || password == "" {
		return Session{}, domain.ErrInvalidCredentials
	}
	u, err := s.users.GetUser(ctx, userName)
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, domain.ErrInvalidCredentials
	}
	return s.open(ctx, u.Principal())
}

// Register creates the account and logs it in. An existing user name is
// domain.ErrAlreadyRegistered.
func (s *AuthService) Register(ctx context.Context, r Registration) (Session, error) {
	r.UserName = strings.TrimSpace(r.UserName)
	if r.UserName == "" || r.Password == "" {
		return Session{}, fmt.Errorf("userName and password are required: %w", domain.ErrBadRequest)
	}

	_, err := s.users.GetUser(ctx, r.UserName)
	switch {
	case err == nil:
		return Session{}, domain.ErrAlreadyRegistered
	case !errors.Is(err, domain.ErrNotFound):
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}
	log.Debug().Str("user", r.UserName).Msg("new user")

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.cost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{
		UserName:     r.UserName,
		FirstName:    strings.TrimSpace(r.FirstName),
		LastName:     strings.TrimSpace(r.LastName),
		Email:        strings.TrimSpace(r.Email),
		PasswordHash: string(hash),
	}
	if u.ID, err = s.users.CreateUser(ctx, u); err != nil {
		return Session{}, fmt.Errorf("create user: %w", err)
	}
	return s.open(ctx, u.Principal())
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Resolve returns nil for a missing, unknown or expired token.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.Principal, error) {
	if token == "" {
		return nil, nil
	}
	p, err := s.sessions.Get(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *AuthService) SessionTTL() time.Duration { return s.ttl }

func (s *AuthService) open(ctx context.Context, p domain.Principal) (Session, error) {
	token, err := s.sessions.Create(ctx, p, s.ttl)
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return Session{Token: token, Principal: p}, nil
}
