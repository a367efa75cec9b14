package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"decor-store/internal/model"
	"decor-store/internal/repository"
	"decor-store/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	// PasswordCost is the bcrypt work factor for stored passwords.
	PasswordCost = 10
	// maxPasswordBytes is the longest input bcrypt accepts.
	maxPasswordBytes = 72
)

type authService struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	validator *validation.Validator
	ttl       time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService creates an auth service issuing sessions that live for ttl.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	validator *validation.Validator,
	ttl time.Duration,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		users:     users,
		sessions:  sessions,
		validator: validator,
		ttl:       ttl,
		logger:    logger.With().Str("service", "auth").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, *model.Session, error) {
	if req == nil {
		return nil, nil, model.NewValidationError("", "request body is required")
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, err
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, nil, model.NewValidationError("password", fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}

	existing, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return nil, nil, model.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), PasswordCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Email:        req.Email,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUsernameTaken) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user, session, nil
}

func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, *model.Session, error) {
	if req == nil {
		return nil, nil, model.NewValidationError("", "request body is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Debug().Str("user_id", user.ID).Msg("password mismatch")
		return nil, nil, model.ErrInvalidCredentials
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, sessionID uuid.UUID) (*model.Principal, error) {
	session, err := s.sessions.GetActive(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	return &model.Principal{UserID: user.ID, Username: user.Username, SessionID: session.ID}, nil
}

func (s *authService) CurrentUser(ctx context.Context, principal *model.Principal) (*model.User, error) {
	if principal == nil {
		return nil, model.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUnauthorized
	}
	return user, nil
}

func (s *authService) openSession(ctx context.Context, userID string) (*model.Session, error) {
	session := &model.Session{
		ID:        uuid.New(),
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	return session, nil
}
