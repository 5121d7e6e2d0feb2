package common

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"skyatlas/airports/internal/constants"
)

var (
	ErrAdminTokenInvalid = errors.New("invalid admin token")
	ErrAdminRoleMissing  = errors.New("token does not carry the admin role")
)

// AdminClaims is the payload of an admin bearer token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminTokenSigner issues and validates HS256 admin bearer tokens.
type AdminTokenSigner struct {
	secretKey []byte
}

func NewAdminTokenSigner(secretKey []byte) *AdminTokenSigner {
	return &AdminTokenSigner{secretKey: secretKey}
}

// Issue mints an admin token for subject valid for ttl.
func (s *AdminTokenSigner) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Role: constants.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate parses tokenString and requires an unexpired HS256 signature and
// the admin role.
func (s *AdminTokenSigner) Validate(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAdminTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrAdminTokenInvalid
	}
	if claims.Role != constants.RoleAdmin {
		return nil, ErrAdminRoleMissing
	}
	return claims, nil
}
