package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestParseVec3(t *testing.T) {
	v, err := ParseVec3(" 1.5, -2,3e2")
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{X: 1.5, Y: -2, Z: 300}, v)

	_, err = ParseVec3("1,2")
	assert.Error(t, err)
	_, err = ParseVec3("1,b,3")
	assert.Error(t, err)
}

func TestFmtVec3RoundTrips(t *testing.T) {
	v := r3.Vec{X: 0.25, Y: -7, Z: 1e6}
	parsed, err := ParseVec3(FmtVec3(v))
	require.NoError(t, err)
	assert.Equal(t, v, parsed)
}

func TestIsFloatEqual(t *testing.T) {
	assert.True(t, IsFloatEqual(1, 1+1e-9))
	assert.True(t, IsFloatEqual(1+1e-9, 1))
	assert.False(t, IsFloatEqual(1, 1.1))
}
