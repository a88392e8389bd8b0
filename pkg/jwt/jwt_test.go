package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRoundTrip(t *testing.T) {
	m := NewManager("test-secret")
	accountID := uuid.New()

	token, err := m.Generate(accountID, time.Hour)
	require.NoError(t, err)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, accountID, got)
}

func TestManagerRejections(t *testing.T) {
	m := NewManager("test-secret")

	t.Run("expired token", func(t *testing.T) {
		token, err := m.Generate(uuid.New(), -time.Minute)
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewManager("other-secret")
		token, err := other.Generate(uuid.New(), time.Hour)
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := m.Verify("not-a-token")
		assert.Error(t, err)
	})
}
