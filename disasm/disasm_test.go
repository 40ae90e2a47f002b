package disasm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Cherser-s/grvk/amdil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassemble_HeaderAndMov(t *testing.T) {
	tokens := []uint32{
		uint32(0) | (0 << 8), // client/language
		uint32(0x0201) | (1 << 16),
		uint32(amdil.OpMov),
		0x0000, // dst: r0
		0x0001, // src: r1
	}

	k, err := amdil.DecodeStream(tokens, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Disassemble(k, &buf))

	out := buf.String()
	assert.True(t, strings.Contains(out, "shader_type=1"))
	assert.True(t, strings.Contains(out, "mov"))
	assert.True(t, strings.Contains(out, "r0"))
	assert.True(t, strings.Contains(out, "r1"))
}
