package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/turtlecode/tutor-api/internal/core/domain"
	"github.com/turtlecode/tutor-api/internal/core/ports"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// dummyPasswordHash is compared against when the email is unknown so both
// login failures pay the same bcrypt cost.
var dummyPasswordHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("unknown-user-placeholder"), bcrypt.DefaultCost)
	if err != nil {
		panic("bcrypt dummy hash: " + err.Error())
	}
	return hash
})

// tokenClaims is the identity token payload.
type tokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// AuthService implements registration, login and token verification.
type AuthService struct {
	repo      ports.AuthRepository
	limiter   ports.LoginLimiter
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
	compare   func(hash, password []byte) error
}

// NewAuthService builds an AuthService. limiter may be nil to disable lockout.
func NewAuthService(repo ports.AuthRepository, limiter ports.LoginLimiter, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		repo:      repo,
		limiter:   limiter,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       time.Now,
		compare:   bcrypt.CompareHashAndPassword,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("Email and password required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.NewValidationError("email must be a valid email")
	}
	if len(password) < domain.MinPasswordLength {
		return nil, domain.NewValidationError("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	user := &domain.User{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if !errors.Is(err, domain.ErrUserExists) {
			s.logger.Error().Err(err).Msg("failed to create user")
		}
		return nil, err
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return &ports.AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password, clientIP string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("Email and password required")
	}

	key := limiterKey(email, clientIP)
	if s.limiter != nil {
		ok, retryAfter, err := s.limiter.Allow(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.logger.Warn().Dur("retry_after", retryAfter).Msg("login blocked")
			return nil, domain.ErrRateLimited
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	hash := dummyPasswordHash()
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	if err := s.compare(hash, []byte(password)); err != nil || user == nil {
		s.recordFailure(ctx, key)
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Success(ctx, key); err != nil {
			s.logger.Warn().Err(err).Msg("failed to reset login limiter")
		}
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// Authorize validates an HS256 token and returns its user id.
func (s *AuthService) Authorize(token string) (string, error) {
	claims := &tokenClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tkn.Valid {
		return "", domain.ErrUnauthenticated
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return "", domain.ErrUnauthenticated
	}
	return userID, nil
}

func (s *AuthService) generateToken(userID string) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *AuthService) recordFailure(ctx context.Context, key string) {
	if s.limiter == nil {
		return
	}
	blocked, err := s.limiter.Failure(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to record login failure")
		return
	}
	if blocked {
		s.logger.Warn().Msg("login locked after repeated failures")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// limiterKey hashes the pair so raw emails and addresses never reach the limiter store.
func limiterKey(email, clientIP string) string {
	sum := sha256.Sum256([]byte(email + "|" + clientIP))
	return hex.EncodeToString(sum[:])
}
