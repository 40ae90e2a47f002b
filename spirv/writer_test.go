package spirv

import (
	"encoding/binary"
	"testing"
)

func TestModuleBuilder_MinimalModule(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)
	builder.AddCapability(CapabilityShader)
	builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	data := builder.Build()
	if len(data) < 20 {
		t.Fatalf("module too small: got %d bytes, want at least 20", len(data))
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != MagicNumber {
		t.Errorf("invalid magic number: got 0x%08X, want 0x%08X", magic, MagicNumber)
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	expectedVersion := uint32(1<<16 | 3<<8)
	if version != expectedVersion {
		t.Errorf("invalid version: got 0x%08X, want 0x%08X", version, expectedVersion)
	}
}

func TestModuleBuilder_TypeInterning(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)

	f1 := builder.AddTypeFloat(32)
	f2 := builder.AddTypeFloat(32)
	if f1 != f2 {
		t.Errorf("expected identical float types to share an id, got %d and %d", f1, f2)
	}

	vec1 := builder.AddTypeVector(f1, 4)
	vec2 := builder.AddTypeVector(f2, 4)
	if vec1 != vec2 {
		t.Errorf("expected identical vector types to share an id, got %d and %d", vec1, vec2)
	}

	f64 := builder.AddTypeFloat(64)
	if f64 == f1 {
		t.Errorf("expected different-width float types to get different ids")
	}
}

func TestModuleBuilder_ConstantInterning(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)
	floatType := builder.AddTypeFloat(32)

	c1 := builder.AddConstantFloat32(floatType, 1.0)
	c2 := builder.AddConstantFloat32(floatType, 1.0)
	if c1 != c2 {
		t.Errorf("expected identical constants to share an id, got %d and %d", c1, c2)
	}

	c3 := builder.AddConstantFloat32(floatType, 2.0)
	if c3 == c1 {
		t.Errorf("expected different constant values to get different ids")
	}
}

func TestModuleBuilder_LabelAtPreallocatedID(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)

	endLabel := builder.AllocID()
	builder.AddBranch(endLabel)
	builder.AddLabelAt(endLabel)

	if len(builder.functions) != 2 {
		t.Fatalf("expected branch and label instructions, got %d", len(builder.functions))
	}
	labelInstr := builder.functions[1]
	if labelInstr.Opcode != OpLabel {
		t.Fatalf("expected OpLabel, got opcode %d", labelInstr.Opcode)
	}
	if labelInstr.Words[0] != endLabel {
		t.Errorf("expected label at preallocated id %d, got %d", endLabel, labelInstr.Words[0])
	}
}

func TestModuleBuilder_ImageTypeAndSample(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)
	floatType := builder.AddTypeFloat(32)
	imageType := builder.AddTypeImage(floatType, Dim2D, 0, 0, 0, 1, ImageFormatUnknown)
	sampledImageType := builder.AddTypeSampledImage(imageType)

	if imageType == 0 || sampledImageType == 0 {
		t.Fatalf("expected non-zero ids for image types")
	}

	imageType2 := builder.AddTypeImage(floatType, Dim2D, 0, 0, 0, 1, ImageFormatUnknown)
	if imageType != imageType2 {
		t.Errorf("expected identical image type declarations to share an id")
	}
}

func TestModuleBuilder_AddBranch(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)
	target := builder.AllocID()
	builder.AddBranch(target)
	if len(builder.functions) != 1 || builder.functions[0].Opcode != OpBranch {
		t.Fatalf("expected single OpBranch instruction")
	}
}
