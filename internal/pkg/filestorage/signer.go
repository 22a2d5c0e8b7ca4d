package filestorage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSignature is returned for tampered, expired or malformed file tokens
var ErrInvalidSignature = errors.New("invalid or expired file link")

// FilesPath is the route serving signed local downloads
const FilesPath = "/api/v1/files"

type fileClaims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

// URLSigner issues and checks the tokens of local download links
type URLSigner struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

// NewURLSigner creates a signer producing links under baseURL
func NewURLSigner(secret, baseURL string) *URLSigner {
	return &URLSigner{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// Token signs path for ttl
func (s *URLSigner) Token(path string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := fileClaims{
		Path: path,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign file token: %w", err)
	}
	return token, nil
}

// URL returns the full download link for path
func (s *URLSigner) URL(path string, ttl time.Duration) (string, error) {
	token, err := s.Token(path, ttl)
	if err != nil {
		return "", err
	}
	return s.baseURL + FilesPath + "?token=" + url.QueryEscape(token), nil
}

// Verify returns the path a token grants access to
func (s *URLSigner) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &fileClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", ErrInvalidSignature
	}
	claims, ok := parsed.Claims.(*fileClaims)
	if !ok || !parsed.Valid || claims.Path == "" {
		return "", ErrInvalidSignature
	}
	return claims.Path, nil
}
