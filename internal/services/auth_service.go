package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/rezakmal/insightify/internal/cache"
	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/repositories"
	"github.com/rezakmal/insightify/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	blacklist *cache.TokenBlacklist
	secret    []byte
	tokenTTL  time.Duration
}

func NewAuthService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, blacklist *cache.TokenBlacklist, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		blacklist: blacklist,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
	}
}

// Signup creates an account and logs the user in immediately
func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    string(hash),
		Role:        models.RoleStudent,
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		// Signup race on the unique email index
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User signed up", "user_id", user.ID)

	return &AuthResponse{Token: token, UserID: user.ID, User: user}, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID)

	return &AuthResponse{Token: token, UserID: user.ID, User: user}, nil
}

// Issue signs a token and upserts the user's single session row
func (s *authService) Issue(ctx context.Context, userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	session := &models.Session{
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenTTL),
	}
	if err := s.repo.Session().Upsert(ctx, nil, session); err != nil {
		return "", fmt.Errorf("failed to upsert session: %w", err)
	}

	return token, nil
}

func (s *authService) Verify(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrBadSignature
		default:
			return nil, ErrTokenMalformed
		}
	}

	revoked, err := s.blacklist.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	user, err := s.repo.User().GetByID(ctx, nil, claims.Subject)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}

	// A replaced or deleted session invalidates otherwise valid tokens.
	if _, err := s.repo.Session().Get(ctx, nil, user.ID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return user, nil
}

func (s *authService) Revoke(ctx context.Context, token, userID string) error {
	if _, err := s.repo.Session().Get(ctx, nil, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotLoggedIn
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	if err := s.blacklist.Revoke(ctx, token, s.remainingLifetime(token)); err != nil {
		return err
	}

	if err := s.repo.Session().Delete(ctx, nil, userID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logger.Info("Token revoked", "user_id", userID)

	return nil
}

// remainingLifetime bounds the blacklist entry to the token's own expiry.
// Unparseable claims fall back to the full configured TTL.
func (s *authService) remainingLifetime(token string) time.Duration {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil || claims.ExpiresAt == nil {
		return s.tokenTTL
	}
	return time.Until(claims.ExpiresAt.Time)
}
