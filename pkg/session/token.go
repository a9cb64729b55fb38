package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role int

const (
	RoleAdmin    Role = 1
	RoleProvider Role = 2
	RoleCustomer Role = 3
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleProvider || r == RoleCustomer
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleProvider:
		return "provider"
	case RoleCustomer:
		return "customer"
	default:
		return "role(" + strconv.Itoa(int(r)) + ")"
	}
}

type Claims struct {
	jwt.RegisteredClaims

	// The auth provider embeds the role id and account id as custom claims.
	Role      Role  `json:"role"`
	AccountID int64 `json:"accountId"`
}

type Session struct {
	AccountID int64
	Role      Role
	ExpiresAt time.Time

	// Token is the raw bearer token, forwarded to the backend unchanged.
	Token string
}

// Verify validates an HS256 session token issued by the auth provider and
// returns the identity it carries.
func Verify(tokenString string, secret string, now time.Time) (*Session, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	if secret == "" {
		return nil, fmt.Errorf("missing session secret")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	claims := &Claims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(now) {
		return nil, fmt.Errorf("token expired")
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("unknown role %d", int(claims.Role))
	}
	if claims.AccountID <= 0 {
		return nil, fmt.Errorf("missing account in token")
	}

	return &Session{
		AccountID: claims.AccountID,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
		Token:     tokenString,
	}, nil
}

// Sign issues a token; used by dev tooling and tests.
func Sign(secret string, accountID int64, role Role, expiresAt time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role:      role,
		AccountID: accountID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
