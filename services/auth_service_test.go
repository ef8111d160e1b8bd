package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthServiceLoginAndVerify(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pong-admin"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAuthService(string(hash), "test-secret")

	token, err := svc.Login("pong-admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, svc.VerifyToken(token))
}

func TestAuthServiceRejectsWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pong-admin"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAuthService(string(hash), "test-secret")

	_, err = svc.Login("guess")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceRejectsForeignToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pong-admin"), bcrypt.MinCost)
	require.NoError(t, err)

	issuer := NewAuthService(string(hash), "secret-a")
	verifier := NewAuthService(string(hash), "secret-b")

	token, err := issuer.Login("pong-admin")
	require.NoError(t, err)

	assert.ErrorIs(t, verifier.VerifyToken(token), ErrInvalidCredentials)
	assert.ErrorIs(t, verifier.VerifyToken("not-a-jwt"), ErrInvalidCredentials)
}
