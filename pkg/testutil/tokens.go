package testutil

import (
	"errors"
	"net/http"

	id "lms/pkg/domain"
	"lms/pkg/platform/middleware/auth"
)

// TokenValidator is an in-memory auth.JWTValidator keyed by opaque token.
type TokenValidator map[string]auth.JWTClaims

// Issue registers a token for the caller and returns it.
func (v TokenValidator) Issue(userID id.UserID, role id.Role) string {
	token := "test-" + string(role) + "-" + userID.String()
	v[token] = auth.JWTClaims{UserID: userID.String(), Role: string(role)}
	return token
}

// ValidateToken implements auth.JWTValidator.
func (v TokenValidator) ValidateToken(token string) (*auth.JWTClaims, error) {
	claims, ok := v[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return &claims, nil
}

// WithBearer sets the Authorization header.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
