package federation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    any
	}{
		{"object", `{"a":1}`, map[string]any{"a": int64(1)}},
		{"nested", `{"type":"Note","tags":["x"]}`, map[string]any{"type": "Note", "tags": []any{"x"}}},
		{"array", `[1,2]`, []any{int64(1), int64(2)}},
		{"plain text", "hello", map[string]any{"raw": "hello"}},
		{"truncated json", `{"a":`, map[string]any{"raw": `{"a":`}},
		{"empty", "", map[string]any{"raw": ""}},
		{"whitespace", "   ", map[string]any{"raw": "   "}},
		{"newline", "\n", map[string]any{"raw": "\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Decode(ProtocolActivityPub, []byte(tt.payload))
			assert.Equal(t, ProtocolActivityPub, msg.Protocol)
			assert.Equal(t, tt.want, msg.Content)
			assert.False(t, msg.ReceivedAt.IsZero())
		})
	}
}

func TestFilter(t *testing.T) {
	f, err := CompileFilter(`protocol == "activitypub" && content.a == 1`)
	require.NoError(t, err)
	assert.Contains(t, f.String(), "activitypub")

	ok, err := f.Match(Decode(ProtocolActivityPub, []byte(`{"a":1}`)))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Match(Decode(ProtocolMatrix, []byte(`{"a":1}`)))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.Match(Decode(ProtocolActivityPub, []byte(`{"a":2}`)))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilter_Empty(t *testing.T) {
	f, err := CompileFilter("")
	require.NoError(t, err)
	assert.Nil(t, f)

	ok, err := f.Match(Decode(ProtocolMatrix, []byte("anything")))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "", f.String())
}

func TestFilter_Invalid(t *testing.T) {
	_, err := CompileFilter(`protocol ==`)
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = CompileFilter(`"not a bool"`)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}
