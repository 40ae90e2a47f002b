package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cherser-s/grvk/amdil"
)

// TestIndexedResourceSampler_NoIndexedArgs covers the common case: bit 12
// clear means the base resource/sampler ids from control bits 0-7/8-11
// pass through unchanged.
func TestIndexedResourceSampler_NoIndexedArgs(t *testing.T) {
	c := newTestContext()
	instr := &amdil.Instruction{Control: 0x0203} // resource 3, sampler 2
	resourceID, samplerID := c.indexedResourceSampler(instr)
	assert.Equal(t, 3, resourceID)
	assert.Equal(t, 2, samplerID)
}

// TestIndexedResourceSampler_SwizzleXY covers the indexed-args addend
// path driven purely by swizzle: X leaves the base alone, Y adds one.
func TestIndexedResourceSampler_SwizzleXY(t *testing.T) {
	c := newTestContext()
	instr := &amdil.Instruction{
		Control: 0x1003 | (1 << 12), // base resource 3, base sampler 0, indexed args set
		Sources: []amdil.Source{
			{RegisterType: amdil.RegTemp, RegisterNum: 9, Modifier: &amdil.SourceModifier{Swizzle: [4]amdil.ComponentSwizzle{amdil.SwizzleX, amdil.SwizzleX, amdil.SwizzleX, amdil.SwizzleX}}},
			{RegisterType: amdil.RegTemp, RegisterNum: 9, Modifier: &amdil.SourceModifier{Swizzle: [4]amdil.ComponentSwizzle{amdil.SwizzleY, amdil.SwizzleY, amdil.SwizzleY, amdil.SwizzleY}}},
		},
	}
	resourceID, samplerID := c.indexedResourceSampler(instr)
	assert.Equal(t, 3, resourceID) // +0 from swizzle X
	assert.Equal(t, 1, samplerID)  // +1 from swizzle Y
}

// TestIndexedResourceSampler_LiteralAddend covers the fallback path: a
// swizzle other than X/Y resolves the addend from the literal register
// that source names.
func TestIndexedResourceSampler_LiteralAddend(t *testing.T) {
	c := newTestContext()
	require.NoError(t, c.emitInstruction(&amdil.Instruction{
		Opcode:  amdil.OpDclLiteral,
		Sources: []amdil.Source{{RegisterType: amdil.RegLiteral, RegisterNum: 0}},
		Extras:  []uint32{0, 0, 5, 0}, // literal value 5 in lane Z
	}))

	instr := &amdil.Instruction{
		Control: 0x0002 | (1 << 12), // base resource 2, base sampler 0, indexed args set
		Sources: []amdil.Source{
			{RegisterType: amdil.RegLiteral, RegisterNum: 0, Modifier: &amdil.SourceModifier{Swizzle: [4]amdil.ComponentSwizzle{amdil.SwizzleZ}}},
			{RegisterType: amdil.RegTemp, RegisterNum: 9, Modifier: &amdil.SourceModifier{Swizzle: [4]amdil.ComponentSwizzle{amdil.SwizzleX}}},
		},
	}
	resourceID, samplerID := c.indexedResourceSampler(instr)
	assert.Equal(t, 7, resourceID) // base 2 + literal value 5
	assert.Equal(t, 0, samplerID)
}

// TestConstOffsetFromAddressOffset mirrors the worked example: each byte
// is sign-extended from int8 and halved via an arithmetic shift.
func TestConstOffsetFromAddressOffset(t *testing.T) {
	c := newTestContext()
	id := c.constOffsetFromAddressOffset(0x00010200)
	assert.NotZero(t, id)
}

// TestEmitSampleInstr_DeclaresResourceAndSampler mirrors a full SAMPLE
// lowering: the resource must be declared first (as DCL_RESOURCE would),
// after which a SAMPLE instruction resolves against it and lazily
// declares the sampler slot.
func TestEmitSampleInstr_DeclaresResourceAndSampler(t *testing.T) {
	c := newTestContext()

	require.NoError(t, c.emitInstruction(&amdil.Instruction{
		Opcode:  amdil.OpDclResource,
		Control: 0x0200, // 2D, resource id 0
		Extras:  []uint32{0},
	}))

	require.NoError(t, c.emitInstruction(&amdil.Instruction{
		Opcode:       amdil.OpSample,
		Destinations: []amdil.Destination{{RegisterType: amdil.RegTemp, RegisterNum: 0}},
		Sources:      []amdil.Source{{RegisterType: amdil.RegTemp, RegisterNum: 1}},
	}))

	assert.Contains(t, c.resources, 0)
	assert.Contains(t, c.samplers, 0)
}

// TestEmitLoadInstr_DeclaresResourceAndFetches mirrors LOAD: the integer
// x-lane of the source resolves the fetch address, with no sampler
// involved.
func TestEmitLoadInstr_DeclaresResourceAndFetches(t *testing.T) {
	c := newTestContext()

	require.NoError(t, c.emitInstruction(&amdil.Instruction{
		Opcode:  amdil.OpDclResource,
		Control: 0x0700, // Buffer, resource id 0
		Extras:  []uint32{0},
	}))

	require.NoError(t, c.emitInstruction(&amdil.Instruction{
		Opcode:       amdil.OpLoad,
		Control:      0x0000, // resource id 0
		Destinations: []amdil.Destination{{RegisterType: amdil.RegTemp, RegisterNum: 0}},
		Sources:      []amdil.Source{{RegisterType: amdil.RegTemp, RegisterNum: 1}},
	}))

	assert.Contains(t, c.resources, 0)
}

// TestEmitStructuredSrvLoad_UsesDeclaredStride mirrors SRV_STRUCT_LOAD:
// the resource's declared stride must back the index*stride+offset
// address computation.
func TestEmitStructuredSrvLoad_UsesDeclaredStride(t *testing.T) {
	c := newTestContext()

	require.NoError(t, c.emitInstruction(&amdil.Instruction{
		Opcode:  amdil.OpDclStructSRV,
		Control: 0x0000,
		Extras:  []uint32{16},
	}))
	res, ok := c.resources[0]
	require.True(t, ok)
	assert.NotZero(t, res.stride)

	require.NoError(t, c.emitInstruction(&amdil.Instruction{
		Opcode:       amdil.OpSrvStructLoad,
		Control:      0x0000,
		Destinations: []amdil.Destination{{RegisterType: amdil.RegTemp, RegisterNum: 0}},
		Sources:      []amdil.Source{{RegisterType: amdil.RegTemp, RegisterNum: 1}},
	}))
}

func TestEmitDeclStructuredSRV_MissingStride_Errors(t *testing.T) {
	c := newTestContext()
	err := c.emitInstruction(&amdil.Instruction{Opcode: amdil.OpDclStructSRV, Control: 0})
	assert.Error(t, err)
}
