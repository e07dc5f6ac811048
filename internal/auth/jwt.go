package auth

import (
	"errors"
	"time"

	"todoapp/internal/identity"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid claims")
)

type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), expiry: expiry}
}

func (i *TokenIssuer) GenerateToken(claims identity.Claims) (string, error) {
	roles := claims.Roles
	if roles == nil {
		roles = []string{}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    claims.UserID,
		"roles":      roles,
		"first_name": claims.FirstName,
		"exp":        time.Now().Add(i.expiry).Unix(),
	})
	return token.SignedString(i.secret)
}

func (i *TokenIssuer) ParseToken(tokenStr string) (identity.Claims, error) {
	return ParseToken(tokenStr, i.secret)
}

// ParseToken validates an HS256 token signed with secret and decodes its claims.
func ParseToken(tokenStr string, secret []byte) (identity.Claims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return identity.Claims{}, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity.Claims{}, ErrInvalidClaims
	}
	userID, ok := mc["user_id"].(string)
	if !ok || userID == "" {
		return identity.Claims{}, ErrInvalidClaims
	}

	claims := identity.Claims{UserID: userID}
	if name, ok := mc["first_name"].(string); ok {
		claims.FirstName = name
	}
	if raw, ok := mc["roles"].([]interface{}); ok {
		for _, r := range raw {
			if role, ok := r.(string); ok {
				claims.Roles = append(claims.Roles, role)
			}
		}
	}
	return claims, nil
}
