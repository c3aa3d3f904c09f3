package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	ms, err := parsePosition("12.3456\n")
	require.NoError(t, err)
	assert.Equal(t, int64(12346), ms)

	ms, err = parsePosition("0")
	require.NoError(t, err)
	assert.Equal(t, int64(0), ms)

	_, err = parsePosition("-1.5")
	assert.Error(t, err)

	_, err = parsePosition("No players found")
	assert.Error(t, err)
}
