package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Account types as encoded in platform tokens.
const (
	AccountTypeBusiness = 0
	AccountTypePersonal = 1
)

var (
	ErrMissingToken   = errors.New("auth: token required")
	ErrMalformedToken = errors.New("auth: malformed token")
	ErrMissingAccount = errors.New("auth: account id claim required")
)

// Claims mirrors the JWT payload issued by the platform's auth service.
type Claims struct {
	AccountID   int64  `json:"accountId"`
	Name        string `json:"name"`
	AccountType int    `json:"accountType"`
	jwt.RegisteredClaims
}

// ParseClaims extracts identity claims from an access token without verifying
// the signature. The client never holds the platform signing secret; every
// REST and websocket call is authenticated server-side with the raw token, so
// the parsed claims serve as display identity only.
func ParseClaims(tokenString string) (Claims, error) {
	token := strings.TrimSpace(tokenString)
	if token == "" {
		return Claims{}, ErrMissingToken
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.AccountID == 0 {
		return Claims{}, ErrMissingAccount
	}
	return *claims, nil
}
