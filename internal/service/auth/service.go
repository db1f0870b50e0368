package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/platform/logger"
	"github.com/phrazzld/tasklist-api/internal/store"
)

// PublicUser is the subset of a user that is safe to return to clients.
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// NewPublicUser projects a domain user onto its public fields.
func NewPublicUser(u *domain.User) PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}

// AuthService registers users, checks credentials and resolves bearer tokens.
type AuthService interface {
	// Register creates an account and signs a token for it.
	// Returns domain.ErrValidation for bad input and ErrDuplicateEmail when
	// the email is taken.
	Register(ctx context.Context, email, password, name string) (*AuthResult, error)

	// Login checks credentials and signs a token.
	// Returns ErrInvalidCredentials for an unknown email or a wrong password.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Authenticate resolves a token to the user it was issued for.
	// Any failure is reported as ErrUnauthenticated wrapping the cause.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

type authServiceImpl struct {
	users    store.UserStore
	jwt      JWTService
	hasher   PasswordHasher
	verifier PasswordVerifier
	logger   *slog.Logger
}

var _ AuthService = (*authServiceImpl)(nil)

// NewAuthService wires an AuthService. All dependencies are required.
func NewAuthService(
	users store.UserStore,
	jwtService JWTService,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	logger *slog.Logger,
) (AuthService, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if jwtService == nil {
		return nil, domain.NewValidationError("jwtService", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if verifier == nil {
		return nil, domain.NewValidationError("verifier", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &authServiceImpl{
		users:    users,
		jwt:      jwtService,
		hasher:   hasher,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "auth_service")),
	}, nil
}

// Register implements AuthService.
func (s *authServiceImpl) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// A taken email wins over any other input problem. The unique index
	// remains the authority under races.
	if _, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email)); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user, err := domain.NewUser(email, password, name)
	if err != nil {
		log.Debug("registration rejected", slog.String("error", err.Error()))
		return nil, err
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = hash
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.jwt.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return &AuthResult{User: NewPublicUser(user), Token: token}, nil
}

// Login implements AuthService.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login failed: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login failed: password mismatch", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{User: NewPublicUser(user), Token: token}, nil
}

// Authenticate implements AuthService.
func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	return user, nil
}
