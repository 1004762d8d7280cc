package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	require.NoError(t, err)
	b, err := GenerateSecret()
	require.NoError(t, err)

	assert.Len(t, a, 2*MinSecretLen)
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), MinSecretLen)
}
