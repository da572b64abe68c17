package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"repairshop-service/pkg/config"
)

var (
	signingKey      []byte
	expirationHours int
)

// Initialize sets the signing key used for token validation and generation
func Initialize(cfg *config.JWTConfig) {
	signingKey = []byte(cfg.SigningKey)
	expirationHours = cfg.ExpirationHours
	if expirationHours <= 0 {
		expirationHours = 24
	}
}

// UserClaims represents the JWT claims for an authenticated request. The
// organization id is the tenant context every data access is scoped to.
type UserClaims struct {
	Email            string `json:"email"`
	UserID           uint   `json:"user_id"`
	OrganizationID   *uint  `json:"organization_id,omitempty"`
	OrganizationSlug string `json:"organization_slug,omitempty"`
	Role             string `json:"role,omitempty"` // User's role in the organization
	jwt.RegisteredClaims
}

// GenerateToken signs a token for the given user and organization. Used by
// provisioning flows and tests; login itself lives in the identity service.
func GenerateToken(userID uint, email string, orgID uint, role string) (string, error) {
	now := time.Now()
	claims := &UserClaims{
		Email:          email,
		UserID:         userID,
		OrganizationID: &orgID,
		Role:           role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expirationHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
