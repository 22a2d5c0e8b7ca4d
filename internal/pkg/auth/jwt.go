package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/unigate/admissions/internal/app/models"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidFormat = errors.New("invalid token format")
)

type JWTConfig struct {
	SecretKey       string
	AccessTokenExp  time.Duration
	RefreshTokenExp time.Duration
	TokenIssuer     string
}

// JWTService signs HS256 access tokens and mints opaque refresh tokens
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config, now: time.Now}
}

// Claims is the payload of an access token
type Claims struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Roles  []string  `json:"roles"`
	jwt.RegisteredClaims
}

func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenPair is what a successful sign-in hands back. The refresh token is a
// random uuid that only means something to the token store.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	RefreshExpiresAt time.Time
}

func (s *JWTService) IssueTokens(user *models.User) (*TokenPair, error) {
	now := s.now()
	pair := &TokenPair{
		RefreshToken:     uuid.NewString(),
		AccessTTL:        s.config.AccessTokenExp,
		RefreshTTL:       s.config.RefreshTokenExp,
		RefreshExpiresAt: now.Add(s.config.RefreshTokenExp),
	}

	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.TokenIssuer,
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(pair.AccessTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	pair.AccessToken = signed
	return pair, nil
}

// ParseAccessToken verifies the signature and expiry of an access token and
// requires it to name a user
func (s *JWTService) ParseAccessToken(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case claims.UserID == uuid.Nil || claims.Email == "":
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *JWTService) keyFunc(*jwt.Token) (interface{}, error) {
	return []byte(s.config.SecretKey), nil
}

// ExtractBearerToken accepts "Bearer <token>" or a bare token
func ExtractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "Bearer" {
		return "", ErrInvalidFormat
	}
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		header = strings.TrimSpace(rest)
	}
	if header == "" {
		return "", ErrInvalidFormat
	}
	return header, nil
}
