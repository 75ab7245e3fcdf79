package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/link-shortener/internal/auth"
	"github.com/spec-kit/link-shortener/internal/config"
	"github.com/spec-kit/link-shortener/internal/domain"
	"github.com/spec-kit/link-shortener/internal/events"
	apperrors "github.com/spec-kit/link-shortener/pkg/util/errorutil"
)

// ErrInvalidCredentials covers both unknown email and wrong password, so the
// two cases stay indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService coordinates registration, login and refresh flows.
type AuthService struct {
	users      UserStore
	hasher     *auth.Hasher
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	decoyHash  []byte
}

// UserStore is the credential repository consumed by the auth flows.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users UserStore, dispatcher events.Dispatcher, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	hasher := auth.NewHasher(cfg.Auth.Argon2Time, cfg.Auth.Argon2MemoryKiB, cfg.Auth.Argon2Threads, logger)

	// The decoy must carry the same cost parameters as real hashes, so it
	// is derived from the configured hasher rather than hardcoded.
	decoy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		logger.Warn("derive decoy hash", zap.Error(err))
	}

	return &AuthService{
		users:      users,
		hasher:     hasher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL()),
		dispatcher: dispatcher,
		logger:     logger,
		decoyHash:  []byte(decoy),
	}
}

// Register creates a new account and issues its first session.
func (s *AuthService) Register(ctx context.Context, title, email, password string) (*domain.User, *auth.Session, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.NewConflict("email already registered", nil)
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Title:        title,
		Email:        email,
		PasswordHash: []byte(hash),
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	session, err := s.tokenMgr.IssueSession(user.ID, user.Role)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserRegistered,
			Source:    events.SourceHTTP,
			Timestamp: time.Now(),
			Payload:   events.UserRegisteredPayload{UserID: user.ID, Role: user.Role},
		})
	}
	return user, session, nil
}

// Login authenticates by email and password. An unknown email and a wrong
// password produce the same outcome; the password check still runs on a
// decoy hash when the account is missing so the two paths cost alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *auth.Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.hasher.Verify(password, s.decoyHash)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.tokenMgr.IssueSession(user.ID, user.Role)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, session, nil
}

// Refresh exchanges a valid refresh token for a fresh access token. The
// refresh token is never accepted as a direct session proof anywhere else.
func (s *AuthService) Refresh(refreshToken string) (string, time.Time, error) {
	claims, err := s.tokenMgr.Verify(refreshToken)
	if err != nil {
		s.logger.Debug("refresh token rejected", zap.Error(err))
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.tokenMgr.IssueAccess(claims.SubjectID, claims.Role)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
