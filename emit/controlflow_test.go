package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cherser-s/grvk/amdil"
)

func newTestContext() *Context {
	kernel := &amdil.Kernel{Header: amdil.Header{ShaderType: 0}}
	return NewContext(kernel, nil, nil)
}

func movInstr(dstReg, srcReg int) *amdil.Instruction {
	return &amdil.Instruction{
		Opcode:       amdil.OpMov,
		Destinations: []amdil.Destination{{RegisterType: amdil.RegTemp, RegisterNum: dstReg}},
		Sources:      []amdil.Source{{RegisterType: amdil.RegTemp, RegisterNum: srcReg}},
	}
}

// TestEmitIf_ElseEndIf_StackBalance mirrors the IF/ELSE/ENDIF scenario: the
// control-flow stack must be empty again once ENDIF closes what IF opened,
// and both branches must lower without error.
func TestEmitIf_ElseEndIf_StackBalance(t *testing.T) {
	c := newTestContext()

	cond := amdil.Source{RegisterType: amdil.RegTemp, RegisterNum: 0}
	require.NoError(t, c.emitIf(&amdil.Instruction{Sources: []amdil.Source{cond}}, true))
	assert.Len(t, c.controlStack, 1)

	require.NoError(t, c.emitInstruction(movInstr(1, 2)))
	require.NoError(t, c.emitElse())
	assert.Len(t, c.controlStack, 1)

	require.NoError(t, c.emitInstruction(movInstr(1, 3)))
	require.NoError(t, c.emitEndIf())
	assert.Empty(t, c.controlStack)
}

// TestEmitIf_NoElse_SynthesizesEmptyElse covers an IF/ENDIF with no ELSE:
// emitEndIf must still terminate the reserved else label.
func TestEmitIf_NoElse_SynthesizesEmptyElse(t *testing.T) {
	c := newTestContext()
	cond := amdil.Source{RegisterType: amdil.RegTemp, RegisterNum: 0}
	require.NoError(t, c.emitIf(&amdil.Instruction{Sources: []amdil.Source{cond}}, false))
	require.NoError(t, c.emitInstruction(movInstr(1, 2)))
	require.NoError(t, c.emitEndIf())
	assert.Empty(t, c.controlStack)
}

// TestEmitWhile_BreakContinue_StackBalance mirrors the WHILE/BREAK scenario:
// a loop body containing both a conditional break and a continue must
// resolve against the same loop frame, and ENDLOOP must leave the stack
// balanced.
func TestEmitWhile_BreakContinue_StackBalance(t *testing.T) {
	c := newTestContext()

	require.NoError(t, c.emitWhile())
	assert.Len(t, c.controlStack, 1)

	cond := amdil.Source{RegisterType: amdil.RegTemp, RegisterNum: 0}
	require.NoError(t, c.emitBreakConditional(&amdil.Instruction{Sources: []amdil.Source{cond}}, true))
	require.NoError(t, c.emitInstruction(movInstr(1, 2)))
	require.NoError(t, c.emitContinue())

	require.NoError(t, c.emitEndLoop())
	assert.Empty(t, c.controlStack)
}

// TestEmitBreak_OutsideLoop_IsFatal covers the control-flow mismatch case:
// BREAK with no enclosing WHILE must fail instead of panicking or silently
// branching nowhere.
func TestEmitBreak_OutsideLoop_IsFatal(t *testing.T) {
	c := newTestContext()
	err := c.emitBreak()
	assert.Error(t, err)
}

// TestEmitElse_WithoutIf_IsFatal covers the control-flow mismatch case for
// a stray ELSE.
func TestEmitElse_WithoutIf_IsFatal(t *testing.T) {
	c := newTestContext()
	err := c.emitElse()
	assert.Error(t, err)
}

// TestEmitEndIf_OnLoopFrame_IsFatal covers ENDIF closing a WHILE frame
// instead of an IF frame: popIfElse must reject it.
func TestEmitEndIf_OnLoopFrame_IsFatal(t *testing.T) {
	c := newTestContext()
	require.NoError(t, c.emitWhile())
	err := c.emitEndIf()
	assert.Error(t, err)
}

// TestNearestLoop_ReachesThroughNestedIf covers BREAK inside an IF nested
// in a WHILE: nearestLoop must see past the IF frame to the loop beneath.
func TestNearestLoop_ReachesThroughNestedIf(t *testing.T) {
	c := newTestContext()
	require.NoError(t, c.emitWhile())

	cond := amdil.Source{RegisterType: amdil.RegTemp, RegisterNum: 0}
	require.NoError(t, c.emitIf(&amdil.Instruction{Sources: []amdil.Source{cond}}, true))
	require.NoError(t, c.emitBreak())
	require.NoError(t, c.emitEndIf())

	require.NoError(t, c.emitEndLoop())
	assert.Empty(t, c.controlStack)
}
