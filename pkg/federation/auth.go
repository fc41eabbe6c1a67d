package federation

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IsZero reports whether no credentials are set.
func (c *Credentials) IsZero() bool {
	return c == nil || (c.Token == "" && c.Username == "" && c.Password == "")
}

// Header returns the handshake headers carrying the credentials.
func (c *Credentials) Header() http.Header {
	h := http.Header{}
	if c.IsZero() {
		return h
	}
	if c.Token != "" {
		h.Set("Authorization", "Bearer "+c.Token)
		return h
	}
	if c.Username != "" {
		raw := c.Username + ":" + c.Password
		h.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(raw)))
	}
	return h
}

// TokenExpiry returns the exp claim when Token is a JWT. The signature is not
// verified; the remote side does that.
func (c *Credentials) TokenExpiry() (time.Time, bool) {
	if c == nil || c.Token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.Token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// warnExpired logs when the configured token has already expired. The token
// is still sent.
func (c *Credentials) warnExpired(log *slog.Logger, now time.Time) {
	if exp, ok := c.TokenExpiry(); ok && exp.Before(now) {
		log.Warn("auth token is expired", "expiredAt", exp)
	}
}
