package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, exp, err := GenerateToken(7, "ana@example.com", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int32(7), claims.ClientID)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestParseExpiredToken(t *testing.T) {
	token, _, err := GenerateToken(7, "ana@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseGarbageToken(t *testing.T) {
	_, err := ParseToken("not.a.token")
	assert.Error(t, err)
}
