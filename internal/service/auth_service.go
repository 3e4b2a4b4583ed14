package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/talha309/multiuser-ai-assistant/internal/domain"
	"github.com/talha309/multiuser-ai-assistant/internal/repository"
)

// AuthService coordina registro, login y reseteo de contraseña.
type AuthService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	jwt         *JWTService
	rateLimiter LoginRateLimiter
}

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrRateLimited        = errors.New("rate limited")
)

func NewAuthService(logger *zap.Logger, users repository.UserRepository, jwtSvc *JWTService, rateLimiter LoginRateLimiter) *AuthService {
	if rateLimiter == nil {
		rateLimiter = NewLoginRateLimiter(loginWindow, loginMaxAttempts)
	}
	return &AuthService{
		logger:      logger,
		users:       users,
		jwt:         jwtSvc,
		rateLimiter: rateLimiter,
	}
}

const (
	loginWindow      = 10 * time.Minute
	loginMaxAttempts = 10
)

// Signup registra un usuario nuevo con su contraseña hasheada.
func (s *AuthService) Signup(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("auth service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return domain.User{}, ErrDuplicateEmail
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: string(hashBytes),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Login valida credenciales y emite un access token con el email como subject.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (string, error) {
	if s.users == nil || s.jwt == nil {
		return "", errors.New("auth service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	if s.rateLimiter != nil && !s.rateLimiter.Allow(emailAddr) {
		return "", ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if user.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.jwt.Issue(user.Email)
}

// ResetPassword sobreescribe el hash almacenado para el email dado.
func (s *AuthService) ResetPassword(ctx context.Context, emailAddr, newPassword string) error {
	if s.users == nil {
		return errors.New("auth service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	newPassword = strings.TrimSpace(newPassword)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if newPassword == "" {
		return ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hashBytes)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// CurrentUser resuelve el usuario dueño de un access token válido.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	if s.users == nil || s.jwt == nil {
		return domain.User{}, errors.New("auth service not configured")
	}

	subject, err := s.jwt.Validate(token)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
