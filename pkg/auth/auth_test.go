package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	PasswordCost = bcrypt.MinCost

	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret-pass"))
	assert.True(t, errors.Is(CheckPassword(hash, "wrong"), ErrPasswordMismatch))
}

func TestConfirmationTokens(t *testing.T) {
	tokens := NewConfirmationTokens("test-secret")

	t.Run("Round trip", func(t *testing.T) {
		token, err := tokens.Issue("8c1f3c55-2f7e-4cf5-9a0e-2a3c1f1d7b10")
		require.NoError(t, err)

		uid, err := tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "8c1f3c55-2f7e-4cf5-9a0e-2a3c1f1d7b10", uid)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, err := NewConfirmationTokens("other-secret").Issue("u1")
		require.NoError(t, err)

		_, err = tokens.Verify(token)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("Expired", func(t *testing.T) {
		past := NewConfirmationTokens("test-secret")
		past.now = func() time.Time { return time.Now().Add(-ConfirmationTTL - time.Hour) }
		token, err := past.Issue("u1")
		require.NoError(t, err)

		_, err = tokens.Verify(token)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tokens.Verify("not-a-token")
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})
}
