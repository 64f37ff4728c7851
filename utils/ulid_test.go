package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateULIDString(t *testing.T) {
	a := GenerateULIDString()
	b := GenerateULIDString()

	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

func TestParseULID(t *testing.T) {
	s := GenerateULIDString()

	parsed, err := ParseULID(s)
	require.NoError(t, err)
	assert.Equal(t, s, parsed.String())

	_, err = ParseULID("not-a-ulid")
	assert.Error(t, err)
}
