package emit

import (
	"fmt"

	"github.com/Cherser-s/grvk/amdil"
	"github.com/Cherser-s/grvk/spirv"
)

// extractConditionBit reduces a source to the single int the structured
// control-flow opcodes branch on: lane X of the loaded value, bitcast to
// int32 so the float-bitmask boolean convention (0x00000000/0xFFFFFFFF)
// compares correctly against zero.
func (c *Context) extractConditionBit(src amdil.Source) (uint32, error) {
	v, err := c.loadSource(src)
	if err != nil {
		return 0, err
	}
	lane := c.builder.AddCompositeExtract(c.floatType, v, 0)
	return c.builder.AddBitcast(c.intType, lane), nil
}

func (c *Context) pushIfElse(f *ifElseFrame) {
	c.controlStack = append(c.controlStack, controlFrame{ifElse: f})
}

func (c *Context) pushLoop(f *loopFrame) {
	c.controlStack = append(c.controlStack, controlFrame{loop: f})
}

func (c *Context) popFrame() (controlFrame, error) {
	if len(c.controlStack) == 0 {
		return controlFrame{}, fmt.Errorf("control-flow stack underflow")
	}
	n := len(c.controlStack) - 1
	f := c.controlStack[n]
	c.controlStack = c.controlStack[:n]
	return f, nil
}

func (c *Context) popIfElse() (*ifElseFrame, error) {
	f, err := c.popFrame()
	if err != nil {
		return nil, c.sink.Fatal("emit: %w", err)
	}
	if f.ifElse == nil {
		return nil, c.sink.Fatal("emit: control-flow mismatch: expected an enclosing IF")
	}
	return f.ifElse, nil
}

func (c *Context) popLoop() (*loopFrame, error) {
	f, err := c.popFrame()
	if err != nil {
		return nil, c.sink.Fatal("emit: %w", err)
	}
	if f.loop == nil {
		return nil, c.sink.Fatal("emit: control-flow mismatch: expected an enclosing WHILE")
	}
	return f.loop, nil
}

// nearestLoop finds the innermost enclosing loop frame without popping,
// so BREAK/CONTINUE reach through nested IF/ELSE frames to the loop they
// belong to.
func (c *Context) nearestLoop() (*loopFrame, error) {
	for i := len(c.controlStack) - 1; i >= 0; i-- {
		if c.controlStack[i].loop != nil {
			return c.controlStack[i].loop, nil
		}
	}
	return nil, c.sink.Fatal("emit: control-flow mismatch: BREAK/CONTINUE outside an enclosing WHILE")
}

func (c *Context) intCompareToZero(bits uint32, nonZero bool) uint32 {
	zero := c.builder.AddConstant(c.intType, 0)
	op := spirv.OpIEqual
	if nonZero {
		op = spirv.OpINotEqual
	}
	return c.builder.AddBinaryOp(op, c.boolType, bits, zero)
}

// emitIf lowers IF_LOGICALZ/IF_LOGICALNZ: a SelectionMerge guarding a
// BranchConditional into freshly allocated then/else labels, per
// amdilc_compiler.c's emitIf.
func (c *Context) emitIf(instr *amdil.Instruction, nonZero bool) error {
	if len(instr.Sources) != 1 {
		return fmt.Errorf("if_logicalz/nz: expected 1 source")
	}
	bits, err := c.extractConditionBit(instr.Sources[0])
	if err != nil {
		return err
	}
	cond := c.intCompareToZero(bits, nonZero)

	endLabel := c.builder.AllocID()
	elseLabel := c.builder.AllocID()
	thenLabel := c.builder.AllocID()

	c.builder.AddSelectionMerge(endLabel, spirv.SelectionControlNone)
	c.builder.AddBranchConditional(cond, thenLabel, elseLabel)
	c.builder.AddLabelAt(thenLabel)

	c.pushIfElse(&ifElseFrame{elseLabel: elseLabel, endLabel: endLabel})
	return nil
}

// emitElse lowers ELSE: closes the then-block with a branch to the shared
// end label, opens the else block at its reserved label.
func (c *Context) emitElse() error {
	frame, err := c.popIfElse()
	if err != nil {
		return err
	}
	c.builder.AddBranch(frame.endLabel)
	c.builder.AddLabelAt(frame.elseLabel)
	frame.sawElse = true
	c.pushIfElse(frame)
	return nil
}

// emitEndIf lowers ENDIF. When no ELSE was seen, it synthesizes an empty
// else block at the reserved label so the BranchConditional from emitIf
// always targets a terminated block, per §4.D.
func (c *Context) emitEndIf() error {
	frame, err := c.popIfElse()
	if err != nil {
		return err
	}
	if !frame.sawElse {
		c.builder.AddBranch(frame.endLabel)
		c.builder.AddLabelAt(frame.elseLabel)
	}
	c.builder.AddBranch(frame.endLabel)
	c.builder.AddLabelAt(frame.endLabel)
	return nil
}

// emitWhile lowers WHILE: branches into a header block carrying the
// LoopMerge, then into a fresh body-begin label, per amdilc_compiler.c's
// emitWhile.
func (c *Context) emitWhile() error {
	header := c.builder.AllocID()
	cont := c.builder.AllocID()
	brk := c.builder.AllocID()
	begin := c.builder.AllocID()

	c.builder.AddBranch(header)
	c.builder.AddLabelAt(header)
	c.builder.AddLoopMerge(brk, cont, spirv.LoopControlNone)
	c.builder.AddBranch(begin)
	c.builder.AddLabelAt(begin)

	c.pushLoop(&loopFrame{headerLabel: header, continueLabel: cont, breakLabel: brk})
	return nil
}

// emitEndLoop lowers ENDLOOP: branches to the continue block, which
// branches back to the header, then opens the break label.
func (c *Context) emitEndLoop() error {
	frame, err := c.popLoop()
	if err != nil {
		return err
	}
	c.builder.AddBranch(frame.continueLabel)
	c.builder.AddLabelAt(frame.continueLabel)
	c.builder.AddBranch(frame.headerLabel)
	c.builder.AddLabelAt(frame.breakLabel)
	return nil
}

// emitBreak lowers unconditional BREAK: branch to the nearest loop's break
// label, then open a fresh label so later instructions in the same block
// stay well-formed dead code.
func (c *Context) emitBreak() error {
	frame, err := c.nearestLoop()
	if err != nil {
		return err
	}
	c.builder.AddBranch(frame.breakLabel)
	fresh := c.builder.AllocID()
	c.builder.AddLabelAt(fresh)
	return nil
}

// emitBreakConditional lowers BREAK_LOGICALZ/BREAK_LOGICALNZ: a conditional
// branch to the break label, falling through to a fresh label otherwise.
func (c *Context) emitBreakConditional(instr *amdil.Instruction, nonZero bool) error {
	if len(instr.Sources) != 1 {
		return fmt.Errorf("break_logicalz/nz: expected 1 source")
	}
	bits, err := c.extractConditionBit(instr.Sources[0])
	if err != nil {
		return err
	}
	cond := c.intCompareToZero(bits, nonZero)

	frame, err := c.nearestLoop()
	if err != nil {
		return err
	}
	fresh := c.builder.AllocID()
	c.builder.AddBranchConditional(cond, frame.breakLabel, fresh)
	c.builder.AddLabelAt(fresh)
	return nil
}

// emitContinue lowers CONTINUE: branch to the nearest loop's continue
// label, then open a fresh label for any following dead code.
func (c *Context) emitContinue() error {
	frame, err := c.nearestLoop()
	if err != nil {
		return err
	}
	c.builder.AddBranch(frame.continueLabel)
	fresh := c.builder.AllocID()
	c.builder.AddLabelAt(fresh)
	return nil
}
