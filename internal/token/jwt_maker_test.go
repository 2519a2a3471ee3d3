package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

func TestJWTMaker_CreateAndVerify(t *testing.T) {
	maker, err := NewJWTMaker(testSecretKey)
	require.NoError(t, err)

	tokenString, payload, err := maker.CreateToken("1", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)
	require.NotNil(t, payload)
	assert.Equal(t, "1", payload.UserID())

	verified, err := maker.VerifyToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "1", verified.UserID())
	assert.Equal(t, payload.ID, verified.ID)
}

func TestJWTMaker_RejectsShortSecret(t *testing.T) {
	_, err := NewJWTMaker("too-short")
	require.Error(t, err)
}

func TestJWTMaker_RejectsExpiredToken(t *testing.T) {
	maker, err := NewJWTMaker(testSecretKey)
	require.NoError(t, err)

	tokenString, _, err := maker.CreateToken("1", -time.Minute)
	require.NoError(t, err)

	_, err = maker.VerifyToken(tokenString)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTMaker_RejectsTamperedToken(t *testing.T) {
	maker, err := NewJWTMaker(testSecretKey)
	require.NoError(t, err)

	tokenString, _, err := maker.CreateToken("1", time.Minute)
	require.NoError(t, err)

	otherMaker, err := NewJWTMaker(strings.Repeat("x", 32))
	require.NoError(t, err)

	_, err = otherMaker.VerifyToken(tokenString)
	require.ErrorIs(t, err, ErrInvalidToken)
}
