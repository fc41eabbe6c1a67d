package output

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestJSONLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONLine(&buf, map[string]int{"a": 1}))
	require.NoError(t, JSONLine(&buf, map[string]int{"b": 2}))
	assert.Equal(t, "{\"a\":1}\n{\"b\":2}\n", buf.String())
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	tw := Table(&buf)
	fmt.Fprintln(tw, "NAME\tSTATUS")
	fmt.Fprintln(tw, "activitypub\tconnected")
	require.NoError(t, tw.Flush())
	assert.Equal(t, "NAME         STATUS\nactivitypub  connected\n", buf.String())
}

func TestWarn(t *testing.T) {
	var buf bytes.Buffer
	Warn(&buf, "%d protocols skipped", 2)
	assert.Equal(t, "Warning: 2 protocols skipped\n", buf.String())
}
