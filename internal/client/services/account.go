package services

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access token claims the client reads. The token is
// verified by the server; the client only needs the account id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
}

// AccountID extracts the account id from an access token without verifying
// its signature. The subject claim wins over the legacy user id claim.
func AccountID(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", common.ErrInvalidToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if claims.Subject != "" {
		return claims.Subject, nil
	}
	if claims.UserID != "" {
		return claims.UserID, nil
	}
	return "", fmt.Errorf("%w: no subject", common.ErrInvalidToken)
}
