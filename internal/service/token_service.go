package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"campus-records/internal/model"
)

// Claims is the verified content of a token: who the bearer is, which
// roles the token grants, and its validity window.
type Claims struct {
	Subject   string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies HS256-signed bearer tokens. The
// signing key is owned by the instance and fixed for the process
// lifetime; with no configured secret an ephemeral key is generated at
// startup, so outstanding tokens become unverifiable after a restart.
type TokenService struct {
	key    []byte
	ttl    time.Duration
	parser *jwt.Parser
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		slog.Info("no JWT secret configured; generated ephemeral signing key")
	}

	// Expiry is intentionally not validated here: Verify answers only
	// "is this token ours", IsExpired answers "is it still live".
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	return &TokenService{key: key, ttl: ttl, parser: parser}, nil
}

func (s *TokenService) Issue(subject string, roles []string) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   subject,
		"roles": roles,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks structure and signature and returns the embedded
// claims. Callers that care about token lifetime must follow up with
// IsExpired; Verify alone accepts an expired token on purpose.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	parsed, err := s.parser.Parse(tokenString, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, model.ErrMalformedToken
		}
		return nil, model.ErrInvalidSignature
	}
	if !parsed.Valid {
		return nil, model.ErrInvalidSignature
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrMalformedToken
	}

	subject, _ := claimsMap["sub"].(string)
	if subject == "" {
		return nil, model.ErrMalformedToken
	}

	claims := &Claims{Subject: subject, Roles: claimRoles(claimsMap)}
	if iat, ok := claimsMap["iat"].(float64); ok {
		claims.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if exp, ok := claimsMap["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}

	return claims, nil
}

// IsExpired compares the embedded expiry against the current time. A
// token whose expiry cannot be read at all counts as expired.
func (s *TokenService) IsExpired(tokenString string) bool {
	claims, err := s.Verify(tokenString)
	if err != nil || claims.ExpiresAt.IsZero() {
		return true
	}
	return claims.ExpiresAt.Before(time.Now().UTC())
}

func claimRoles(claimsMap jwt.MapClaims) []string {
	raw, ok := claimsMap["roles"].([]any)
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, entry := range raw {
		if name, ok := entry.(string); ok {
			roles = append(roles, name)
		}
	}
	return roles
}
