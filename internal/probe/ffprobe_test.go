package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	d := parseDuration("123.456\n")
	require.NotNil(t, d)
	assert.Equal(t, 123, *d)

	assert.Nil(t, parseDuration(""))
	assert.Nil(t, parseDuration("N/A"))
}

func TestParseResolution(t *testing.T) {
	r := parseResolution("1920,1080\n")
	require.NotNil(t, r)
	assert.Equal(t, 1920, r.Width)
	assert.Equal(t, 1080, r.Height)

	assert.Nil(t, parseResolution(""))
	assert.Nil(t, parseResolution("1920"))
	assert.Nil(t, parseResolution("w,h"))
}
