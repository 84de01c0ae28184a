package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jim4golf/simsy-reporting-api/pkg/config"
)

// SessionClaims represents the JWT claims for an interactive session
type SessionClaims struct {
	Email         string `json:"email"`
	UserID        uint   `json:"user_id"`
	TenantID      string `json:"tenant_id,omitempty"`
	Role          string `json:"role,omitempty"`
	CustomerScope string `json:"customer_scope,omitempty"` // Narrows visibility to one customer under the tenant
	jwt.RegisteredClaims
}

// JWTUtil is a utility for JWT token operations
type JWTUtil struct {
	config *config.JWTConfig
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(cfg *config.JWTConfig) *JWTUtil {
	return &JWTUtil{
		config: cfg,
	}
}

// GenerateToken creates a signed session token and returns it along with its
// unique token ID. The token ID is the key under which the session store keeps
// the revocation marker for this session.
func (j *JWTUtil) GenerateToken(email string, userID uint, tenantID, role, customerScope string) (string, string, error) {
	if j.config == nil {
		return "", "", errors.New("JWT configuration not provided")
	}

	tokenID := uuid.New().String()
	claims := SessionClaims{
		Email:         email,
		UserID:        userID,
		TenantID:      tenantID,
		Role:          role,
		CustomerScope: customerScope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(j.config.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.config.SigningKey))
	if err != nil {
		return "", "", err
	}

	return signed, tokenID, nil
}

// ValidateToken validates and parses the JWT token
func (j *JWTUtil) ValidateToken(tokenString string) (*SessionClaims, error) {
	if j.config == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
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

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
