package grvk

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cherser-s/grvk/amdil"
)

func tokensToBytes(tokens []uint32) []byte {
	buf := make([]byte, len(tokens)*4)
	for i, t := range tokens {
		binary.LittleEndian.PutUint32(buf[i*4:], t)
	}
	return buf
}

// TestCompile_MinimalVertex mirrors the "minimal vertex" scenario: a
// shader that declares one input and one output, moves the input
// straight through, then ends.
func TestCompile_MinimalVertex(t *testing.T) {
	const shaderTypeVertex = 0
	tokens := []uint32{
		0,                                          // client type / language
		uint32(0x0201) | (shaderTypeVertex << 16), // version word
		uint32(amdil.OpDclOutput),
		0x00020000, // dst: o0
		uint32(amdil.OpDclInput),
		0x00010001, // dst: v1
		uint32(amdil.OpMov),
		0x00020000, // dst: o0
		0x00010001, // src: v1
		uint32(amdil.OpEndMain),
	}

	spv, err := Compile(nil, tokensToBytes(tokens), DefaultOptions())
	require.NoError(t, err)
	assert.NotEmpty(t, spv)

	// SPIR-V magic number, little-endian.
	assert.Equal(t, byte(0x03), spv[0])
	assert.Equal(t, byte(0x02), spv[1])
	assert.Equal(t, byte(0x23), spv[2])
	assert.Equal(t, byte(0x07), spv[3])
}

func TestDisassemble_MinimalVertex(t *testing.T) {
	const shaderTypeVertex = 0
	tokens := []uint32{
		0,
		uint32(0x0201) | (shaderTypeVertex << 16),
		uint32(amdil.OpMov),
		0x0000,
		0x0001,
		uint32(amdil.OpEndMain),
	}

	var buf bytes.Buffer
	require.NoError(t, Disassemble(tokensToBytes(tokens), &buf, DefaultOptions()))
	assert.Contains(t, buf.String(), "mov")
}

func TestCompile_RejectsMisalignedBlob(t *testing.T) {
	_, err := Compile(nil, []byte{0, 1, 2}, DefaultOptions())
	assert.Error(t, err)
}
