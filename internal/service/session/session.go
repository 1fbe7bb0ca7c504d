package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/habalhub/habal-hub/internal/domain/user"
	"github.com/habalhub/habal-hub/pkg/auth"
	"github.com/habalhub/habal-hub/pkg/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionRevoked     = errors.New("session has been revoked")
)

// EventType classifies auth-state changes.
type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventProfileUpdated EventType = "profile_updated"
)

// Event is delivered to subscribers on every auth-state change.
type Event struct {
	Type EventType
	User *user.User
}

// Service owns identity: sign-up, sign-in, sign-out, and token
// resolution. Every resolution re-reads the profile row, so a profile
// edit is visible on the next request without re-login. The service is
// constructed once and disposed with Close; there is no package-level
// state.
type Service struct {
	users  user.Repository
	tokens *auth.TokenManager
	redis  *redis.Client
	logger *logger.Logger

	mu          sync.Mutex
	subscribers map[int]chan Event
	nextSubID   int
	closed      bool
}

// NewService creates a session service
func NewService(users user.Repository, tokens *auth.TokenManager, redisClient *redis.Client, log *logger.Logger) *Service {
	return &Service{
		users:       users,
		tokens:      tokens,
		redis:       redisClient,
		logger:      log,
		subscribers: make(map[int]chan Event),
	}
}

// SignUpParams carries registration input. Role is fixed at creation.
type SignUpParams struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Role     user.Role
}

// SignUp registers a new account and signs it in.
func (s *Service) SignUp(ctx context.Context, p SignUpParams) (*user.User, string, error) {
	if !p.Role.IsValid() {
		return nil, "", user.ErrInvalidRole
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		ID:    uuid.New(),
		Name:  p.Name,
		Email: p.Email,
		Phone: p.Phone,
		Role:  p.Role,
	}
	if err := u.IsValid(); err != nil {
		return nil, "", err
	}
	if err := s.users.Create(ctx, u, hash); err != nil {
		return nil, "", err
	}

	token, _, err := s.tokens.Mint(u.ID, string(u.Role))
	if err != nil {
		return nil, "", fmt.Errorf("mint token: %w", err)
	}

	s.logger.Info("User signed up",
		logger.String("user_id", u.ID.String()),
		logger.String("role", string(u.Role)),
	)
	s.publish(Event{Type: EventSignedIn, User: u})
	return u, token, nil
}

// SignIn verifies credentials and mints a session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (*user.User, string, error) {
	u, hash, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !auth.CheckPassword(hash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, _, err := s.tokens.Mint(u.ID, string(u.Role))
	if err != nil {
		return nil, "", fmt.Errorf("mint token: %w", err)
	}

	s.logger.Info("User signed in", logger.String("user_id", u.ID.String()))
	s.publish(Event{Type: EventSignedIn, User: u})
	return u, token, nil
}

// SignOut revokes a token until its natural expiry.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		// Already invalid; nothing to revoke.
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl > 0 && s.redis != nil {
		if err := s.redis.Set(ctx, revokedKey(claims.ID), "1", ttl).Err(); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		u = nil
	}
	s.logger.Info("User signed out", logger.String("user_id", claims.UserID.String()))
	s.publish(Event{Type: EventSignedOut, User: u})
	return nil
}

// Resolve verifies a token and returns the joined profile. Any failure
// yields a nil user; the caller treats that as signed-out.
func (s *Service) Resolve(ctx context.Context, token string) (*user.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		revoked, err := s.redis.Exists(ctx, revokedKey(claims.ID)).Result()
		if err == nil && revoked > 0 {
			return nil, ErrSessionRevoked
		}
	}

	return s.users.GetByID(ctx, claims.UserID)
}

// UpdateProfile applies a profile edit and notifies subscribers.
// Role and email are untouchable here.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, upd user.ProfileUpdate) (*user.User, error) {
	if err := s.users.UpdateProfile(ctx, id, upd); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(Event{Type: EventProfileUpdated, User: u})
	return u, nil
}

// Subscribe registers an auth-state listener. The returned cancel
// function must be called on teardown; events are dropped, not queued,
// when the subscriber falls behind.
func (s *Service) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Event, 16)
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Close tears down all subscriptions.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

func (s *Service) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

func revokedKey(tokenID string) string {
	return "session:revoked:" + tokenID
}
