package federation

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestCredentials_Header(t *testing.T) {
	var nilCreds *Credentials
	assert.Empty(t, nilCreds.Header())
	assert.True(t, nilCreds.IsZero())

	h := (&Credentials{Token: "abc", Username: "ignored"}).Header()
	assert.Equal(t, "Bearer abc", h.Get("Authorization"))

	h = (&Credentials{Username: "alice", Password: "secret"}).Header()
	assert.Equal(t, "Basic YWxpY2U6c2VjcmV0", h.Get("Authorization"))

	h = (&Credentials{Password: "orphan"}).Header()
	assert.Empty(t, h.Get("Authorization"))
}

func TestCredentials_TokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	c := &Credentials{Token: signedToken(t, exp)}

	got, ok := c.TokenExpiry()
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = (&Credentials{Token: "opaque-token"}).TokenExpiry()
	assert.False(t, ok)
}

func TestCredentials_WarnExpired(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	c := &Credentials{Token: signedToken(t, time.Now().Add(-time.Minute))}
	c.warnExpired(log, time.Now())
	assert.Contains(t, buf.String(), "auth token is expired")

	buf.Reset()
	c = &Credentials{Token: signedToken(t, time.Now().Add(time.Hour))}
	c.warnExpired(log, time.Now())
	assert.Empty(t, buf.String())
}
