package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel validation failures. The middleware maps these onto the wire
// messages the mobile client expects.
var (
	// ErrTokenExpired is returned for a structurally valid token whose exp
	// claim is in the past.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for malformed tokens, wrong signatures and
	// non-HS256 algorithms.
	ErrTokenInvalid = errors.New("invalid token")
)

// DefaultTokenTTL is the lifetime of tokens minted by IssueToken.
const DefaultTokenTTL = 30 * 24 * time.Hour

// Claims carries the employee identity inside a bearer token.
type Claims struct {
	EmployeeID int64 `json:"employee_id"`
	jwt.RegisteredClaims
}

// TokenSigner mints and validates HS256 bearer tokens for the external API.
// Only symmetric HS256 signing is accepted; tokens signed with any other
// algorithm are rejected outright.
type TokenSigner struct {
	secret []byte
}

// NewTokenSigner creates a TokenSigner around the process secret.
func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret)}
}

// IssueToken mints a signed bearer token for the given employee.
func (s *TokenSigner) IssueToken(employeeID int64, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := &Claims{
		EmployeeID: employeeID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "nuzum",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses and verifies a bearer token, returning its claims.
// Expired tokens yield ErrTokenExpired; everything else wrong with the token
// yields ErrTokenInvalid.
func (s *TokenSigner) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
