package safe_random

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomBytes(t *testing.T) {
	b, err := GenerateRandomBytes(32)
	require.NoError(t, err)
	assert.Len(t, b, 32)
	// 全零几乎不可能
	assert.NotEqual(t, make([]byte, 32), b)
}

func TestGenerateRandomHexString(t *testing.T) {
	s, err := GenerateRandomHexString(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)

	decoded, err := hex.DecodeString(s)
	require.NoError(t, err)
	assert.Len(t, decoded, 16)

	other, err := GenerateRandomHexString(16)
	require.NoError(t, err)
	assert.NotEqual(t, s, other)
}
