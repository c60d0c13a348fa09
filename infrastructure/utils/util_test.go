package utils

import (
	"testing"
	"time"

	"linkedin-publisher/domain/model"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	raw, err := GenerateToken("cli", time.Hour, "s3cret")
	require.NoError(t, err)

	var claims model.BridgeClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "HS256", token.Method.Alg())
	assert.Equal(t, "cli", claims.Subject)
	assert.NotEmpty(t, claims.Id)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), claims.ExpiresAt, 5)
}

func TestGenerateToken_WrongSecretRejected(t *testing.T) {
	raw, err := GenerateToken("cli", time.Hour, "s3cret")
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(raw, &model.BridgeClaims{}, func(*jwt.Token) (interface{}, error) { return []byte("other"), nil })
	assert.Error(t, err)
}
