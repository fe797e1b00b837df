package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
)

var (
	userID    = id.NewUserID()
	expiresIn = time.Hour
)

func newService() *JWTService {
	return NewJWTService("test-signing-key", "test-issuer", expiresIn)
}

func Test_GenerateAccessToken(t *testing.T) {
	svc := newService()
	token, err := svc.GenerateAccessToken(userID, id.RoleStudent)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_MiddlewareClaims(t *testing.T) {
	svc := newService()
	token, err := svc.GenerateAccessToken(userID, id.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := newService().ValidateToken("invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	svc := newService()
	token, err := svc.GenerateAccessToken(userID, id.RoleStudent)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * expiresIn) }
	_, err = svc.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	token, err := NewJWTService("other-key", "test-issuer", expiresIn).GenerateAccessToken(userID, id.RoleStudent)
	require.NoError(t, err)

	_, err = newService().ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_WrongIssuer(t *testing.T) {
	token, err := NewJWTService("test-signing-key", "someone-else", expiresIn).GenerateAccessToken(userID, id.RoleStudent)
	require.NoError(t, err)

	_, err = newService().ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: userID.String(), Role: "admin"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newService().ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
