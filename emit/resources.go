package emit

import (
	"github.com/Cherser-s/grvk/spirv"
)

// declareResource handles DCL_RESOURCE: decodes the dimension and format
// nibbles out of the control word and extras[0], declares the matching
// OpTypeImage/OpVariable pair, and decorates it with DescriptorSet = the
// kernel's shader type and Binding = the AMDIL resource id (the mapping
// itself is not consulted), per amdilc_compiler.c's emitResource.
func (c *Context) declareResource(id int, control uint32, extras []uint32) {
	dim, arrayed := dimensionFromControl(control)

	var elem spirv.ResourceElementType
	var fmtx, fmty, fmtz, fmtw byte
	if len(extras) > 0 {
		e := extras[0]
		elem = spirv.ResourceElementType((e >> 16) & 0x3)
		fmtx = byte((e >> 20) & 0x7)
		fmty = byte((e >> 23) & 0x7)
		fmtz = byte((e >> 26) & 0x7)
		fmtw = byte((e >> 29) & 0x7)
	}
	format := spirv.ResourceFormatToImageFormat(elem, fmtx, fmty, fmtz, fmtw)

	arrayedWord := uint32(0)
	if arrayed {
		arrayedWord = 1
	}

	if dim == spirv.DimBuffer {
		c.builder.AddCapability(spirv.CapabilitySampledBuffer)
	}

	imageType := c.builder.AddTypeImage(c.floatType, dim, 0, arrayedWord, 0, 1, format)
	ptrType := c.builder.AddTypePointer(spirv.StorageClassUniformConstant, imageType)
	v := c.builder.AddVariable(ptrType, spirv.StorageClassUniformConstant)

	c.builder.AddDecorate(v, spirv.DecorationDescriptorSet, uint32(c.kernel.Header.ShaderType))
	c.builder.AddDecorate(v, spirv.DecorationBinding, uint32(id))
	c.addInterface(v)

	c.resources[id] = &resource{variable: v, imageType: imageType, dim: dim}
}

// declareStructuredSRV handles DCL_STRUCT_SRV: a structured buffer
// modeled as an integer Buffer-dimension image, with its byte stride
// recorded as a constant for SRV_STRUCT_LOAD's address arithmetic, per
// amdilc_compiler.c's emitStructuredSrv.
func (c *Context) declareStructuredSRV(id int, strideValue uint32) {
	imageType := c.builder.AddTypeImage(c.intType, spirv.DimBuffer, 0, 0, 0, 1, spirv.ImageFormatR32i)
	ptrType := c.builder.AddTypePointer(spirv.StorageClassUniformConstant, imageType)
	v := c.builder.AddVariable(ptrType, spirv.StorageClassUniformConstant)

	c.builder.AddCapability(spirv.CapabilitySampledBuffer)
	c.builder.AddDecorate(v, spirv.DecorationDescriptorSet, uint32(c.kernel.Header.ShaderType))
	c.builder.AddDecorate(v, spirv.DecorationBinding, uint32(id))
	c.addInterface(v)

	stride := c.builder.AddConstant(c.intType, strideValue)
	c.resources[id] = &resource{variable: v, imageType: imageType, dim: spirv.DimBuffer, stride: stride}
}

// declareSampler ensures a sampler variable exists for the given slot,
// creating it lazily the first time a sample instruction references it.
func (c *Context) declareSampler(id int) *sampler {
	if s, ok := c.samplers[id]; ok {
		return s
	}
	samplerType := c.builder.AddTypeSampler()
	ptrType := c.builder.AddTypePointer(spirv.StorageClassUniformConstant, samplerType)
	v := c.builder.AddVariable(ptrType, spirv.StorageClassUniformConstant)
	c.builder.AddDecorate(v, spirv.DecorationDescriptorSet, uint32(c.kernel.Header.ShaderType))
	c.builder.AddDecorate(v, spirv.DecorationBinding, uint32(id))
	c.addInterface(v)
	s := &sampler{variable: v}
	c.samplers[id] = s
	return s
}

// dimensionFromControl decodes the resource-dimension nibble AMDIL's
// DCL_RESOURCE control field carries in bits 8-11, with the array bit
// folded in as a separate value, per amdilc_compiler.c's getSpvImage.
func dimensionFromControl(control uint32) (spirv.Dim, bool) {
	nibble := (control >> 8) & 0xF
	switch nibble {
	case 0:
		return spirv.Dim1D, false
	case 1:
		return spirv.Dim1D, true
	case 2:
		return spirv.Dim2D, false
	case 3:
		return spirv.Dim2D, true
	case 4:
		return spirv.Dim3D, false
	case 5:
		return spirv.DimCube, false
	case 6:
		return spirv.DimCube, true
	case 7:
		return spirv.DimBuffer, false
	default:
		return spirv.Dim2D, false
	}
}

// emitSample lowers a sample family instruction: it builds the combined
// sampled-image operand from the resource and sampler slots named by the
// trailing indexed-resource-sampler sources and issues the matching
// OpImageSample* opcode.
func (c *Context) emitSample(opcode spirv.OpCode, resourceID, samplerID int, coordinate uint32, operands spirv.ImageOperands, operandWords ...uint32) (uint32, error) {
	res, ok := c.resources[resourceID]
	if !ok {
		c.sink.EmitError("emit: sample instruction references undeclared resource t%d", resourceID)
		return c.builder.AddConstantComposite(c.float4Type,
			c.builder.AddConstantFloat32(c.floatType, 0),
			c.builder.AddConstantFloat32(c.floatType, 0),
			c.builder.AddConstantFloat32(c.floatType, 0),
			c.builder.AddConstantFloat32(c.floatType, 0)), nil
	}
	samp := c.declareSampler(samplerID)

	imageVal := c.builder.AddLoad(res.imageType, res.variable)
	samplerType := c.builder.AddTypeSampler()
	samplerVal := c.builder.AddLoad(samplerType, samp.variable)

	sampledImageType := c.builder.AddTypeSampledImage(res.imageType)
	sampledImage := c.builder.AddSampledImage(sampledImageType, imageVal, samplerVal)

	return c.builder.AddImageSample(opcode, c.float4Type, sampledImage, coordinate, operands, operandWords...), nil
}

// emitFetch performs LOAD's image fetch: a direct image load with no
// sampler, addressed by integer texel coordinate.
func (c *Context) emitFetch(resourceID int, coordinate uint32) (uint32, error) {
	res, ok := c.resources[resourceID]
	if !ok {
		c.sink.EmitError("emit: fetch instruction references undeclared resource t%d", resourceID)
		return c.builder.AddConstantComposite(c.float4Type,
			c.builder.AddConstantFloat32(c.floatType, 0),
			c.builder.AddConstantFloat32(c.floatType, 0),
			c.builder.AddConstantFloat32(c.floatType, 0),
			c.builder.AddConstantFloat32(c.floatType, 0)), nil
	}
	imageVal := c.builder.AddLoad(res.imageType, res.variable)
	return c.builder.AddImageFetch(c.float4Type, imageVal, coordinate, spirv.ImageOperandsNone), nil
}
