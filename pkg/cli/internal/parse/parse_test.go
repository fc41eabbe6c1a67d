package parse

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValue(t *testing.T) {
	tests := []struct {
		in         string
		delims     []rune
		key, value string
		ok         bool
	}{
		{"Accept:text/plain", nil, "Accept", "text/plain", true},
		{"a=b:c", []rune{'=', ':'}, "a", "b:c", true},
		{"url:https://x", nil, "url", "https://x", true},
		{"nodelim", nil, "", "", false},
	}
	for _, tt := range tests {
		k, v, ok := KeyValue(tt.in, tt.delims...)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.key, k, tt.in)
		assert.Equal(t, tt.value, v, tt.in)
	}
}

func TestHeaders(t *testing.T) {
	h, err := Headers([]string{
		"Authorization: Bearer abc",
		"accept:application/ld+json",
		"X-Tag: one",
		"X-Tag: two",
	})
	require.NoError(t, err)
	assert.Equal(t, http.Header{
		"Authorization": {"Bearer abc"},
		"Accept":        {"application/ld+json"},
		"X-Tag":         {"one", "two"},
	}, h)
}

func TestHeaders_Invalid(t *testing.T) {
	for _, in := range []string{"no-colon", ": empty key"} {
		_, err := Headers([]string{in})
		assert.Error(t, err, in)
	}
}
