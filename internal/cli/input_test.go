package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("  hello \n"))

	v, err := prompt(r, "Memo", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
	assert.Equal(t, "Memo: ", out.String())
}

func TestPromptPartialLineAtEOF(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("no newline"))

	v, err := prompt(r, "Memo", &out)
	require.NoError(t, err)
	assert.Equal(t, "no newline", v)
}

func TestPromptDefault(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("\n42\n"))

	v, err := promptDefault(r, "Amount", "10", &out)
	require.NoError(t, err)
	assert.Equal(t, "10", v, "empty answer keeps the default")

	v, err = promptDefault(r, "Amount", "10", &out)
	require.NoError(t, err)
	assert.Equal(t, "42", v)
}

func TestPromptSecret(t *testing.T) {
	orig := readPassword
	readPassword = func(fd int) ([]byte, error) { return []byte(" s3cret "), nil }
	t.Cleanup(func() { readPassword = orig })

	var out bytes.Buffer
	v, err := promptSecret(&out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)
	assert.Contains(t, out.String(), "Enter sync secret")
}
