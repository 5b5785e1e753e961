package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"studiokit/internal/caching"
	"studiokit/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and refreshes the platform's session tokens. The
// request pipeline never calls it; it only consumes the claims these
// tokens carry.
type AuthService interface {
	GenerateTokens(ctx context.Context, userID uuid.UUID, amr []string) (*models.TokenResponse, error)
	GenerateImpersonationToken(ctx context.Context, targetID, impersonatorID uuid.UUID) (*models.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error

	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) bool
}

// TokenClaims is the JWT payload. impersonatorId links an impersonation
// session back to the real operator.
type TokenClaims struct {
	ImpersonatorID *string  `json:"impersonatorId,omitempty"`
	AMR            []string `json:"amr,omitempty"`
	MFA            *bool    `json:"mfa,omitempty"`
	jwt.RegisteredClaims
}

type authService struct {
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	tokenTTL   int // Access token TTL in seconds
	refreshTTL int // Refresh token TTL in seconds
}

type refreshRecord struct {
	UserID string   `json:"user_id"`
	AMR    []string `json:"amr,omitempty"`
}

func NewAuthService(cacheSvc caching.CacheService, jwtSecret string, tokenTTLSeconds, refreshTTLSeconds int) AuthService {
	return &authService{
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTLSeconds,
		refreshTTL: refreshTTLSeconds,
	}
}

func (s *authService) signToken(userID uuid.UUID, impersonatorID *uuid.UUID, amr []string) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		AMR: amr,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "studiokit-auth",
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{"studiokit-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	if impersonatorID != nil {
		id := impersonatorID.String()
		claims.ImpersonatorID = &id
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *authService) issue(ctx context.Context, userID uuid.UUID, impersonatorID *uuid.UUID, amr []string) (*models.TokenResponse, error) {
	accessToken, err := s.signToken(userID, impersonatorID, amr)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	refreshToken := hex.EncodeToString(raw)

	record, err := json.Marshal(refreshRecord{UserID: userID.String(), AMR: amr})
	if err != nil {
		return nil, err
	}
	key := refreshKey(refreshToken)
	if err := s.cacheSvc.SetString(ctx, key, string(record), time.Duration(s.refreshTTL)*time.Second); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenTTL,
	}, nil
}

func (s *authService) GenerateTokens(ctx context.Context, userID uuid.UUID, amr []string) (*models.TokenResponse, error) {
	return s.issue(ctx, userID, nil, amr)
}

// GenerateImpersonationToken issues a token whose subject is the target
// user with the real operator recorded in impersonatorId. Impersonation
// sessions get no refresh token.
func (s *authService) GenerateImpersonationToken(ctx context.Context, targetID, impersonatorID uuid.UUID) (*models.TokenResponse, error) {
	accessToken, err := s.signToken(targetID, &impersonatorID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sign impersonation token: %w", err)
	}
	return &models.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.tokenTTL,
	}, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	key := refreshKey(refreshToken)
	stored, err := s.cacheSvc.GetString(ctx, key)
	if err != nil {
		return nil, err
	}
	if stored == "" {
		return nil, fmt.Errorf("refresh token not found or expired")
	}

	var record refreshRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		return nil, fmt.Errorf("corrupt refresh token record: %w", err)
	}
	userID, err := uuid.Parse(record.UserID)
	if err != nil {
		return nil, fmt.Errorf("corrupt refresh token record: %w", err)
	}

	// Single-use: rotate on every refresh.
	if err := s.cacheSvc.Delete(ctx, key); err != nil {
		return nil, err
	}

	return s.issue(ctx, userID, nil, record.AMR)
}

func (s *authService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	return s.cacheSvc.Delete(ctx, refreshKey(refreshToken))
}

func (s *authService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Refresh tokens are stored under a hash so a cache dump never leaks
// usable tokens.
func refreshKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("studiokit:refresh:%s", hex.EncodeToString(sum[:]))
}
