package fastcolor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteStringFixed(t *testing.T) {
	Enabled = false
	t.Cleanup(func() { Enabled = true })

	tests := []struct {
		s     string
		width int
		right bool
		want  string
	}{
		{"abc", 5, false, "abc  "},
		{"abc", 5, true, "  abc"},
		{"abcdef", 4, false, "abc~"},
		{"Café", 4, false, "Café"},
		{"abc", 0, false, ""},
	}
	for _, tt := range tests {
		var b strings.Builder
		FgBlue.WriteStringFixed(&b, tt.s, tt.width, tt.right)
		assert.Equal(t, tt.want, b.String(), tt.s)
	}
}

func TestColorSequences(t *testing.T) {
	var b strings.Builder
	FgRed.WriteStringFixed(&b, "-5", 3, true)
	assert.Equal(t, string(FgRed)+" -5"+string(Reset), b.String())

	b.Reset()
	Reset.WriteStringFixed(&b, "x", 1, false)
	assert.Equal(t, "x", b.String())

	c, err := hex("#ff0000")
	require.NoError(t, err)
	assert.Equal(t, Color("\x1b[38;2;255;0;0m"), c)

	_, err = hex("red")
	assert.Error(t, err)

	assert.Equal(t, Color("\x1b[38;2;217;51;51m"), FgRed)
}
