package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/config"
	"github.com/taller-labs/workshop-api/internal/domain"
)

var (
	// ErrInvalidToken is returned when a token fails signature or claim checks
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token is past its expiry
	ErrExpiredToken = errors.New("token expired")
)

// Claims are the JWT claims issued at login
type Claims struct {
	TenantID string `json:"tid"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HMAC-signed access tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenManager creates a token manager from auth configuration
func NewTokenManager(cfg *config.AuthConfig) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTLDuration(),
		issuer: cfg.Issuer,
	}
}

// Issue creates a signed token for the given employee
func (m *TokenManager) Issue(emp *domain.Employee) (string, error) {
	now := time.Now()
	claims := Claims{
		TenantID: emp.TenantID.String(),
		Name:     emp.Name,
		Email:    emp.Email,
		Role:     string(emp.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   emp.ID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token, returning the user context it carries
func (m *TokenManager) Validate(tokenString string) (*UserContext, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	employeeID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject claim", ErrInvalidToken)
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad tenant claim", ErrInvalidToken)
	}
	role := domain.EmployeeRole(claims.Role)
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: bad role claim", ErrInvalidToken)
	}

	return &UserContext{
		EmployeeID:  employeeID,
		TenantID:    tenantID,
		DisplayName: claims.Name,
		Email:       claims.Email,
		Role:        role,
	}, nil
}
