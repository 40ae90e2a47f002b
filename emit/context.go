// Package emit lowers a decoded AMDIL kernel into a SPIR-V module.
package emit

import (
	"fmt"

	"github.com/Cherser-s/grvk/amdil"
	"github.com/Cherser-s/grvk/diag"
	"github.com/Cherser-s/grvk/mapping"
	"github.com/Cherser-s/grvk/spirv"
)

// regKey identifies one AMDIL register for the purpose of caching its
// SPIR-V variable.
type regKey struct {
	Type amdil.RegisterType
	Num  int
}

// resource records the image/buffer type and variable backing a declared
// SRV or UAV slot.
type resource struct {
	variable uint32
	imageType uint32
	dim      spirv.Dim
	stride   uint32 // structured SRVs only; 0 for typed images
}

// sampler records the sampler variable backing a declared sampler slot.
type sampler struct {
	variable uint32
}

// controlFrame is one entry on the structured control-flow stack.
// exactly one of ifElse/loop is populated.
type controlFrame struct {
	ifElse *ifElseFrame
	loop   *loopFrame
}

type ifElseFrame struct {
	elseLabel uint32
	endLabel  uint32
	sawElse   bool
}

type loopFrame struct {
	headerLabel   uint32
	continueLabel uint32
	breakLabel    uint32
}

// Context holds all state accumulated while lowering one kernel.
type Context struct {
	kernel  *amdil.Kernel
	builder *spirv.ModuleBuilder
	sink    *diag.Sink
	mapping *mapping.DescriptorSetMapping

	voidType  uint32
	boolType  uint32
	intType   uint32
	uintType  uint32
	floatType uint32
	int4Type  uint32
	uint4Type uint32
	float4Type uint32
	bool4Type uint32

	glslExtSet uint32

	entryPointID uint32
	interfaceIDs []uint32

	registers map[regKey]uint32 // register -> pointer variable id
	resources map[int]*resource
	samplers  map[int]*sampler

	literals    map[int][4]uint32 // register num -> 4 literal SPIR-V constant ids
	literalRaw  map[int][4]uint32 // register num -> 4 literal raw bit patterns, for compile-time arithmetic

	controlStack []controlFrame

	samplerRequested bool
}

// NewContext builds the type/capability/memory-model prelude common to
// every kernel and returns a Context ready to receive instructions.
func NewContext(kernel *amdil.Kernel, m *mapping.DescriptorSetMapping, sink *diag.Sink) *Context {
	if sink == nil {
		sink = diag.Default
	}
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	c := &Context{
		kernel:    kernel,
		builder:   b,
		sink:      sink,
		mapping:   m,
		registers: make(map[regKey]uint32),
		resources: make(map[int]*resource),
		samplers:  make(map[int]*sampler),
		literals:   make(map[int][4]uint32),
		literalRaw: make(map[int][4]uint32),
	}

	c.voidType = b.AddTypeVoid()
	c.boolType = b.AddTypeBool()
	c.intType = b.AddTypeInt(32, true)
	c.uintType = b.AddTypeInt(32, false)
	c.floatType = b.AddTypeFloat(32)
	c.int4Type = b.AddTypeVector(c.intType, 4)
	c.uint4Type = b.AddTypeVector(c.uintType, 4)
	c.float4Type = b.AddTypeVector(c.floatType, 4)
	c.bool4Type = b.AddTypeVector(c.boolType, 4)

	c.glslExtSet = b.AddExtInstImport("GLSL.std.450")

	return c
}

// Compile lowers every instruction in the kernel's stream and returns the
// finished SPIR-V binary.
func (c *Context) Compile() ([]byte, error) {
	fnType := c.builder.AddTypeFunction(c.voidType)
	c.entryPointID = c.builder.AddFunction(fnType, c.voidType, spirv.FunctionControlNone)
	c.builder.AddLabel()

	for i := range c.kernel.Instructions {
		if err := c.emitInstruction(&c.kernel.Instructions[i]); err != nil {
			return nil, fmt.Errorf("emit: instruction %d: %w", i, err)
		}
	}

	if len(c.controlStack) != 0 {
		return nil, c.sink.Fatal("emit: %d unclosed control-flow frame(s) at end of kernel", len(c.controlStack))
	}

	c.builder.AddReturn()
	c.builder.AddFunctionEnd()

	c.emitEntryPoint()

	return c.builder.Build(), nil
}

// emitEntryPoint declares the OpEntryPoint and its execution mode, per
// the kernel's shader stage, with the interface list built from every
// input/output/resource/sampler variable touched while emitting.
func (c *Context) emitEntryPoint() {
	model := executionModelForShaderType(c.kernel.Header.ShaderType)
	c.builder.AddEntryPoint(model, c.entryPointID, "main", c.interfaceIDs)
	if model == spirv.ExecutionModelFragment {
		c.builder.AddExecutionMode(c.entryPointID, spirv.ExecutionModeOriginUpperLeft)
	}
}

// executionModelForShaderType maps the AMDIL shader-type header field to
// a SPIR-V execution model, per amdilc_compiler.c's emitEntryPoint.
func executionModelForShaderType(shaderType uint32) spirv.ExecutionModel {
	switch shaderType {
	case 0:
		return spirv.ExecutionModelVertex
	case 1:
		return spirv.ExecutionModelFragment
	case 2:
		return spirv.ExecutionModelGeometry
	case 3:
		return spirv.ExecutionModelGLCompute
	case 4:
		return spirv.ExecutionModelTessellationControl
	case 5:
		return spirv.ExecutionModelTessellationEvaluation
	default:
		return spirv.ExecutionModelVertex
	}
}

func (c *Context) addInterface(id uint32) {
	for _, existing := range c.interfaceIDs {
		if existing == id {
			return
		}
	}
	c.interfaceIDs = append(c.interfaceIDs, id)
}
