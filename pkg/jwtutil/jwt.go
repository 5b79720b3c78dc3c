package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"agrocore-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

// ErrNotInitialized is returned when the package has no signing configuration
var ErrNotInitialized = errors.New("JWT configuration not provided")

// UserClaims identifies the user; role and company are resolved per request
type UserClaims struct {
	Email  string `json:"email"`
	UserID uint   `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTUtil is a utility for JWT token operations
type JWTUtil struct {
	config *config.JWTConfig
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(cfg *config.JWTConfig) *JWTUtil {
	return &JWTUtil{config: cfg}
}

// GenerateToken creates a signed token for the user
func (j *JWTUtil) GenerateToken(email string, userID uint) (string, error) {
	if j == nil || j.config == nil {
		return "", ErrNotInitialized
	}

	expirationHours := j.config.ExpirationHours
	if expirationHours <= 0 {
		expirationHours = 24
	}

	now := time.Now()
	claims := UserClaims{
		Email:  email,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.SigningKey))
}

// ValidateToken validates and parses the JWT token
func (j *JWTUtil) ValidateToken(tokenString string) (*UserClaims, error) {
	if j == nil || j.config == nil {
		return nil, ErrNotInitialized
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.config.SigningKey), nil
		},
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

var defaultUtil *JWTUtil

// Initialize installs the package-level utility used by handlers and middleware
func Initialize(cfg *config.JWTConfig) {
	defaultUtil = NewJWTUtil(cfg)
}

// GenerateToken signs a token with the package-level utility
func GenerateToken(email string, userID uint) (string, error) {
	return defaultUtil.GenerateToken(email, userID)
}

// ValidateToken validates a token with the package-level utility
func ValidateToken(tokenString string) (*UserClaims, error) {
	return defaultUtil.ValidateToken(tokenString)
}
