package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cherser-s/grvk/amdil"
	"github.com/Cherser-s/grvk/spirv"
)

// TestEmitDot_Dp4_Broadcasts mirrors the DP4 scenario: DP4 r0, r1, r2 must
// lower to an OpDot of the two temp loads broadcast back across all four
// lanes of the destination.
func TestEmitDot_Dp4_Broadcasts(t *testing.T) {
	c := newTestContext()

	instr := &amdil.Instruction{
		Opcode:       amdil.OpDp4,
		Destinations: []amdil.Destination{{RegisterType: amdil.RegTemp, RegisterNum: 0}},
		Sources: []amdil.Source{
			{RegisterType: amdil.RegTemp, RegisterNum: 1},
			{RegisterType: amdil.RegTemp, RegisterNum: 2},
		},
	}
	require.NoError(t, c.emitInstruction(instr))

	// The destination register must now have a backing variable; a
	// second lookup through the same register should reuse it rather than
	// declare a fresh one.
	declared, ok := c.registers[regKey{Type: amdil.RegTemp, Num: 0}]
	require.True(t, ok)
	ptr := c.registerVariable(amdil.RegTemp, 0, storageClassForRegister(amdil.RegTemp))
	assert.NotZero(t, ptr)
	assert.Equal(t, declared, ptr)
}

// TestStoreDestination_Clamp mirrors the clamp-destination scenario: a
// destination modifier with Clamp set must route the stored value through
// FClamp(value, 0, 1) rather than storing it raw.
func TestStoreDestination_Clamp(t *testing.T) {
	c := newTestContext()

	src := amdil.Source{RegisterType: amdil.RegTemp, RegisterNum: 1}
	value, err := c.loadSource(src)
	require.NoError(t, err)

	dst := amdil.Destination{
		RegisterType: amdil.RegTemp,
		RegisterNum:  0,
		Modifier: &amdil.DestModifier{
			WriteMask: [4]amdil.WriteComponent{amdil.WriteWrite, amdil.WriteWrite, amdil.WriteWrite, amdil.WriteWrite},
			Clamp:     true,
		},
	}
	require.NoError(t, c.storeDestination(dst, value))
}

// TestEmitIntBinary_BitcastsBothOperands mirrors I_ADD: both float4-carried
// operands must be bitcast to int4 before OpIAdd and the sum bitcast back
// to float4 before storing, so the op never applies an int-typed SPIR-V
// instruction to a float4-typed id.
func TestEmitIntBinary_BitcastsBothOperands(t *testing.T) {
	c := newTestContext()
	instr := &amdil.Instruction{
		Destinations: []amdil.Destination{{RegisterType: amdil.RegTemp, RegisterNum: 0}},
		Sources: []amdil.Source{
			{RegisterType: amdil.RegTemp, RegisterNum: 1},
			{RegisterType: amdil.RegTemp, RegisterNum: 2},
		},
	}
	require.NoError(t, c.emitIntBinary(instr, spirv.OpIAdd, c.int4Type))
}

// TestEmitIntCompare_UnsignedUsesUintType mirrors U_GE: the comparison
// must bitcast both operands to uint4, not int4, before OpUGreaterThanEqual.
func TestEmitIntCompare_UnsignedUsesUintType(t *testing.T) {
	c := newTestContext()
	instr := &amdil.Instruction{
		Destinations: []amdil.Destination{{RegisterType: amdil.RegTemp, RegisterNum: 0}},
		Sources: []amdil.Source{
			{RegisterType: amdil.RegTemp, RegisterNum: 1},
			{RegisterType: amdil.RegTemp, RegisterNum: 2},
		},
	}
	require.NoError(t, c.emitIntCompare(instr, spirv.OpUGreaterThanEqual, c.uint4Type))
}

// TestEmitConvert_FtoI_RoundTripsThroughIntType mirrors FTOI: the result
// type passed to OpConvertFToS must be int4, with the int4 result bitcast
// back to float4 before storing (a bare float4 result type is invalid
// SPIR-V for this opcode).
func TestEmitConvert_FtoI_RoundTripsThroughIntType(t *testing.T) {
	c := newTestContext()
	instr := &amdil.Instruction{
		Destinations: []amdil.Destination{{RegisterType: amdil.RegTemp, RegisterNum: 0}},
		Sources:      []amdil.Source{{RegisterType: amdil.RegTemp, RegisterNum: 1}},
	}
	require.NoError(t, c.emitConvert(instr, spirv.OpConvertFToS))
}

// TestEmitConvert_ItoF_BitcastsOperandFirst mirrors ITOF: the source must
// be bitcast to int4 before OpConvertSToF, which otherwise cannot accept a
// float4-typed operand.
func TestEmitConvert_ItoF_BitcastsOperandFirst(t *testing.T) {
	c := newTestContext()
	instr := &amdil.Instruction{
		Destinations: []amdil.Destination{{RegisterType: amdil.RegTemp, RegisterNum: 0}},
		Sources:      []amdil.Source{{RegisterType: amdil.RegTemp, RegisterNum: 1}},
	}
	require.NoError(t, c.emitConvert(instr, spirv.OpConvertSToF))
}

// TestEmitCmovLogical_ComparesViaIntBitcast mirrors CMOV_LOGICAL: the
// condition must resolve via a bitcast-to-int4 compare against zero, not
// a direct float compare, matching the structured-control-flow opcodes'
// own condition-extraction convention.
func TestEmitCmovLogical_ComparesViaIntBitcast(t *testing.T) {
	c := newTestContext()
	instr := &amdil.Instruction{
		Destinations: []amdil.Destination{{RegisterType: amdil.RegTemp, RegisterNum: 0}},
		Sources: []amdil.Source{
			{RegisterType: amdil.RegTemp, RegisterNum: 1},
			{RegisterType: amdil.RegTemp, RegisterNum: 2},
			{RegisterType: amdil.RegTemp, RegisterNum: 3},
		},
	}
	require.NoError(t, c.emitCmovLogical(instr))
}

// TestEmitUBitExtract_ExtractsScalarWidthOffset mirrors U_BIT_EXTRACT:
// width/offset resolve from lane 0 of their sources, and the bitfield
// extract runs on the uint4-bitcast value.
func TestEmitUBitExtract_ExtractsScalarWidthOffset(t *testing.T) {
	c := newTestContext()
	instr := &amdil.Instruction{
		Opcode:       amdil.OpUBitExtract,
		Destinations: []amdil.Destination{{RegisterType: amdil.RegTemp, RegisterNum: 0}},
		Sources: []amdil.Source{
			{RegisterType: amdil.RegTemp, RegisterNum: 1},
			{RegisterType: amdil.RegTemp, RegisterNum: 2},
			{RegisterType: amdil.RegTemp, RegisterNum: 3},
		},
	}
	require.NoError(t, c.emitInstruction(instr))
}

// TestLoadSource_LiteralRegister mirrors literal-register resolution: a
// DCL_LITERAL-declared register must read back the declared components
// without touching the pointer-load path.
func TestLoadSource_LiteralRegister(t *testing.T) {
	c := newTestContext()

	decl := &amdil.Instruction{
		Opcode:  amdil.OpDclLiteral,
		Sources: []amdil.Source{{RegisterType: amdil.RegLiteral, RegisterNum: 0}},
		Extras:  []uint32{0x3F800000, 0, 0, 0}, // 1.0, 0, 0, 0
	}
	require.NoError(t, c.emitInstruction(decl))

	comps, ok := c.literals[0]
	require.True(t, ok)
	raw, ok := c.literalRaw[0]
	require.True(t, ok)
	assert.Equal(t, uint32(0x3F800000), raw[0])
	assert.NotZero(t, comps[0])

	value, err := c.loadSource(amdil.Source{RegisterType: amdil.RegLiteral, RegisterNum: 0})
	require.NoError(t, err)
	assert.NotZero(t, value)
}
