package emit

import (
	"github.com/Cherser-s/grvk/amdil"
	"github.com/Cherser-s/grvk/spirv"
)

// registerVariable returns (creating if necessary) the pointer variable
// backing a register: a float4 variable in the given storage class.
// Temp, input and output registers are the usual callers, but loadSource
// sends every non-literal source register here, whatever its type.
func (c *Context) registerVariable(regType amdil.RegisterType, num int, storage spirv.StorageClass) uint32 {
	key := regKey{Type: regType, Num: num}
	if id, ok := c.registers[key]; ok {
		return id
	}
	ptrType := c.builder.AddTypePointer(storage, c.float4Type)
	id := c.builder.AddVariable(ptrType, storage)
	c.registers[key] = id
	if storage == spirv.StorageClassInput || storage == spirv.StorageClassOutput {
		c.addInterface(id)
	}
	return id
}

// loadSource reads a Source operand, applying its swizzle, negate, and
// abs modifiers, and returns a float4-typed value. Literal registers are
// resolved directly from their declared constants instead of through a
// pointer load; a source's immediate word is not read. Unhandled modifier bits (invert/bias/x2/sign/divComp/clamp) are
// reported via EmitWarning and otherwise ignored.
func (c *Context) loadSource(src amdil.Source) (uint32, error) {
	var value uint32

	switch src.RegisterType {
	case amdil.RegLiteral:
		comps, ok := c.literals[src.RegisterNum]
		if !ok {
			c.sink.EmitError("emit: literal register l%d referenced before declaration", src.RegisterNum)
			return c.builder.AddConstantComposite(c.float4Type,
				c.builder.AddConstantFloat32(c.floatType, 0),
				c.builder.AddConstantFloat32(c.floatType, 0),
				c.builder.AddConstantFloat32(c.floatType, 0),
				c.builder.AddConstantFloat32(c.floatType, 0)), nil
		}
		value = c.builder.AddConstantComposite(c.float4Type, comps[0], comps[1], comps[2], comps[3])
	default:
		storage := storageClassForRegister(src.RegisterType)
		ptr := c.registerVariable(src.RegisterType, src.RegisterNum, storage)
		value = c.builder.AddLoad(c.float4Type, ptr)
	}

	if src.Modifier != nil {
		mod := src.Modifier
		components := make([]uint32, 4)
		anySwizzle := false
		for i := 0; i < 4; i++ {
			components[i] = uint32(mod.Swizzle[i])
			if uint32(mod.Swizzle[i]) != uint32(i) {
				anySwizzle = true
			}
		}
		if anySwizzle {
			// Swizzle values 4 and 5 select the constant 0.0/1.0 lanes.
			zeroOne := c.builder.AddConstantComposite(
				c.builder.AddTypeVector(c.floatType, 2),
				c.builder.AddConstantFloat32(c.floatType, 0),
				c.builder.AddConstantFloat32(c.floatType, 1))
			value = c.builder.AddVectorShuffle(c.float4Type, value, zeroOne, components)
		}

		if mod.Abs {
			value = c.builder.AddExtInst(c.float4Type, c.glslExtSet, spirv.GLSLstd450FAbs, value)
		}

		anyNegate := false
		for _, n := range mod.Negate {
			if n {
				anyNegate = true
			}
		}
		if anyNegate {
			// Take negated lanes from the FNegate result, the rest from value.
			negated := c.builder.AddUnaryOp(spirv.OpFNegate, c.float4Type, value)
			lanes := make([]uint32, 4)
			for i := 0; i < 4; i++ {
				lanes[i] = uint32(i)
				if mod.Negate[i] {
					lanes[i] = uint32(i) + 4
				}
			}
			value = c.builder.AddVectorShuffle(c.float4Type, value, negated, lanes)
		}

		if mod.Invert || mod.Bias || mod.X2 || mod.Sign || mod.DivComp != 0 || mod.Clamp {
			c.sink.EmitWarning("emit: unhandled source modifier flags on register %d (invert=%v bias=%v x2=%v sign=%v divComp=%d clamp=%v)",
				src.RegisterNum, mod.Invert, mod.Bias, mod.X2, mod.Sign, mod.DivComp, mod.Clamp)
		}
	}

	return value, nil
}

// storeDestination writes value into dst, applying clamp, the per-
// component NOWRITE passthrough, and the per-component forced-0/1
// override, in that order, per amdilc_compiler.c's storeDestination.
// A nonzero ShiftScale is reported through EmitWarning and not applied.
func (c *Context) storeDestination(dst amdil.Destination, value uint32) error {
	storage := storageClassForRegister(dst.RegisterType)
	ptr := c.registerVariable(dst.RegisterType, dst.RegisterNum, storage)

	if dst.Modifier != nil {
		mod := dst.Modifier

		if mod.ShiftScale != 0 {
			c.sink.EmitWarning("emit: destination shift/scale modifier (%d) on register %d is not applied", mod.ShiftScale, dst.RegisterNum)
		}

		if mod.Clamp {
			zero := c.builder.AddConstantComposite(c.float4Type,
				c.builder.AddConstantFloat32(c.floatType, 0),
				c.builder.AddConstantFloat32(c.floatType, 0),
				c.builder.AddConstantFloat32(c.floatType, 0),
				c.builder.AddConstantFloat32(c.floatType, 0))
			one := c.builder.AddConstantComposite(c.float4Type,
				c.builder.AddConstantFloat32(c.floatType, 1),
				c.builder.AddConstantFloat32(c.floatType, 1),
				c.builder.AddConstantFloat32(c.floatType, 1),
				c.builder.AddConstantFloat32(c.floatType, 1))
			value = c.builder.AddExtInst(c.float4Type, c.glslExtSet, spirv.GLSLstd450FClamp, value, zero, one)
		}

		anyNoWrite := false
		for _, comp := range mod.WriteMask {
			if comp == amdil.WriteNone {
				anyNoWrite = true
				break
			}
		}
		if anyNoWrite {
			// Select components from {dst.x, dst.y, dst.z, dst.w, value.x..w}.
			existing := c.builder.AddLoad(c.float4Type, ptr)
			components := make([]uint32, 4)
			for i := 0; i < 4; i++ {
				if mod.WriteMask[i] == amdil.WriteNone {
					components[i] = uint32(i)
				} else {
					components[i] = uint32(i) + 4
				}
			}
			value = c.builder.AddVectorShuffle(c.float4Type, existing, value, components)
		}

		anyForced := false
		for _, comp := range mod.WriteMask {
			if comp == amdil.WriteForce0 || comp == amdil.WriteForce1 {
				anyForced = true
				break
			}
		}
		if anyForced {
			// Select components from {value.x..w, 0.0, 1.0}.
			zeroOne := c.builder.AddConstantComposite(
				c.builder.AddTypeVector(c.floatType, 2),
				c.builder.AddConstantFloat32(c.floatType, 0),
				c.builder.AddConstantFloat32(c.floatType, 1))
			components := make([]uint32, 4)
			for i := 0; i < 4; i++ {
				switch mod.WriteMask[i] {
				case amdil.WriteForce0:
					components[i] = 4
				case amdil.WriteForce1:
					components[i] = 5
				default:
					components[i] = uint32(i)
				}
			}
			value = c.builder.AddVectorShuffle(c.float4Type, value, zeroOne, components)
		}
	}

	c.builder.AddStore(ptr, value)
	return nil
}

func storageClassForRegister(regType amdil.RegisterType) spirv.StorageClass {
	switch regType {
	case amdil.RegInput:
		return spirv.StorageClassInput
	case amdil.RegOutput:
		return spirv.StorageClassOutput
	default:
		return spirv.StorageClassPrivate
	}
}
