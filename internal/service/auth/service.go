package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MulubahzumuKSipor/zynk-cart/internal/domain"
	tokenrepo "github.com/MulubahzumuKSipor/zynk-cart/internal/repository/token"
	userrepo "github.com/MulubahzumuKSipor/zynk-cart/internal/repository/user"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

// Service handles signup/login flows and bearer-token resolution.
type Service struct {
	repo        userrepo.Repository
	tokens      *tokenManager
	accessTTL   time.Duration
	passwordMin int
}

// New creates a Service with sane defaults.
func New(repo userrepo.Repository, tokens tokenrepo.Repository) *Service {
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens),
		accessTTL:   48 * time.Hour,
		passwordMin: 8,
	}
}

// Signup registers a new user and issues an access token.
func (s *Service) Signup(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, "", fmt.Errorf("%w: email required", domain.ErrValidation)
	}
	password = strings.TrimSpace(password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	u, err := s.repo.Create(ctx, email, string(hashed))
	if err != nil {
		return nil, "", err
	}
	access, err := s.tokens.Issue(ctx, u.ID, s.accessTTL)
	if err != nil {
		return nil, "", err
	}
	return u, access, nil
}

// Login validates credentials and returns the user plus an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	password = strings.TrimSpace(password)
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	access, err := s.tokens.Issue(ctx, u.ID, s.accessTTL)
	if err != nil {
		return nil, "", err
	}
	return u, access, nil
}

// LookupByToken returns the user bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.User, error) {
	meta, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.repo.GetByID(ctx, meta.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func validatePassword(p string, min int) error {
	if len(p) < min {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return fmt.Errorf("%w: password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number", domain.ErrValidation)
	}
	return nil
}
