package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseSession(t *testing.T) {
	tok, err := IssueToken("secret", "u1", "alice", "archivist", time.Hour)
	require.NoError(t, err)

	s, err := ParseSession(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "alice", s.Login)
	assert.Equal(t, "archivist", s.Role)
	assert.False(t, s.Expired(time.Now()))
	assert.True(t, s.Expired(time.Now().Add(2*time.Hour)))
}

func TestParseSession_Garbage(t *testing.T) {
	_, err := ParseSession("")
	assert.Error(t, err)
	_, err = ParseSession("not-a-jwt")
	assert.Error(t, err)
}

func TestVerifyToken(t *testing.T) {
	tok, err := IssueToken("secret", "u1", "bob", "viewer", time.Minute)
	require.NoError(t, err)

	c, err := VerifyToken("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "bob", c.Login)

	_, err = VerifyToken("other", tok)
	assert.Error(t, err)

	expired, err := IssueToken("secret", "u1", "bob", "viewer", -time.Minute)
	require.NoError(t, err)
	_, err = VerifyToken("secret", expired)
	assert.Error(t, err)
}

func TestSession_NilAndNoExpiry(t *testing.T) {
	var s *Session
	assert.False(t, s.Expired(time.Now()))
	assert.False(t, (&Session{}).Expired(time.Now()))
}
