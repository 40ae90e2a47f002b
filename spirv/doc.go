// Package spirv builds SPIR-V binary modules.
//
// SPIR-V is the standard intermediate language for GPU shaders, used by
// Vulkan, OpenCL, and other APIs. This package provides a low-level
// binary writer for constructing SPIR-V modules programmatically using
// ModuleBuilder:
//
//	builder := spirv.NewModuleBuilder(spirv.Version1_3)
//	builder.AddCapability(spirv.CapabilityShader)
//	builder.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
//
//	floatType := builder.AddTypeFloat(32)
//	vec4Type := builder.AddTypeVector(floatType, 4)
//
//	binary := builder.Build()
//
// Repeated calls to an AddType*/AddConstant* method with the same
// operands return the same id instead of emitting a duplicate
// declaration, since a SPIR-V module may declare a given type or
// constant only once. AddTypeStruct is the exception: every call
// declares a new struct type.
//
// # SPIR-V Structure
//
// SPIR-V modules consist of:
//   - Header (magic, version, generator, bound, schema)
//   - Capabilities (required features)
//   - Extensions (optional extensions)
//   - Extended instruction imports (GLSL.std.450, etc.)
//   - Memory model (addressing and memory model)
//   - Entry points (shader entry functions)
//   - Execution modes (shader configuration)
//   - Debug information (names, source info)
//   - Annotations (decorations)
//   - Types and constants
//   - Global variables
//   - Functions (code)
//
// # References
//
// SPIR-V Specification: https://registry.khronos.org/SPIR-V/specs/unified1/SPIRV.html
package spirv
