// Package auth provides JWT issuance/validation and password hashing.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/i20tominaga/resident-app/internal/building"
)

// TokenExpiry is how long an issued token stays valid. Portal sessions are
// expected to span a working day.
const TokenExpiry = 24 * time.Hour

// DefaultLeeway absorbs small clock skew between the server and clients.
const DefaultLeeway = 30 * time.Second

// ErrInvalidToken is returned when token validation fails.
var ErrInvalidToken = errors.New("invalid token")

// ErrExpiredToken is returned when the token has expired.
var ErrExpiredToken = errors.New("token has expired")

// ErrEmptyUserID is returned when userID is empty.
var ErrEmptyUserID = errors.New("userID cannot be empty")

// Claims carries the portal's custom JWT claims. The role claim lets
// middleware gate staff-only routes without a user lookup.
type Claims struct {
	jwt.RegisteredClaims
	Role       string `json:"role"`
	BuildingID string `json:"building_id,omitempty"`
}

// JWTService signs and validates HS256 tokens.
type JWTService struct {
	secret []byte
	leeway time.Duration
}

// NewJWTService creates a JWTService with the default leeway.
func NewJWTService(secret string) *JWTService {
	return &JWTService{secret: []byte(secret), leeway: DefaultLeeway}
}

// NewJWTServiceWithLeeway creates a JWTService with custom leeway.
func NewJWTServiceWithLeeway(secret string, leeway time.Duration) *JWTService {
	return &JWTService{secret: []byte(secret), leeway: leeway}
}

// GenerateToken issues a token for the given user.
func (s *JWTService) GenerateToken(user *building.User) (string, error) {
	if user == nil || user.ID == "" {
		return "", ErrEmptyUserID
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
		},
		Role:       string(user.Role),
		BuildingID: user.BuildingID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses and validates a token, returning the claims if valid.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Only HS256 is accepted.
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithLeeway(s.leeway))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
