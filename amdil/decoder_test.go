package amdil

import "testing"

func buildHeader(shaderType uint32) []uint32 {
	lang := uint32(0) | (0 << 8)
	version := uint32(0x0201) | (shaderType << 16)
	return []uint32{lang, version}
}

func TestDecodeStream_HeaderOnly(t *testing.T) {
	tokens := buildHeader(1)
	k, err := DecodeStream(tokens, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.Header.ShaderType != 1 {
		t.Errorf("expected shader type 1, got %d", k.Header.ShaderType)
	}
	if len(k.Instructions) != 0 {
		t.Errorf("expected no instructions, got %d", len(k.Instructions))
	}
}

func TestDecodeStream_SimpleMov(t *testing.T) {
	tokens := buildHeader(0)
	// mov r0, r1: opcode word, dest word0, src word0.
	tokens = append(tokens,
		uint32(OpMov),
		0x0000, // dest: regnum 0, temp, no modifier
		0x0001, // src: regnum 1, temp, no modifier
	)

	k, err := DecodeStream(tokens, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(k.Instructions) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(k.Instructions))
	}
	instr := k.Instructions[0]
	if instr.Opcode != OpMov {
		t.Errorf("expected OpMov, got %v", instr.Opcode)
	}
	if len(instr.Destinations) != 1 || instr.Destinations[0].RegisterNum != 0 {
		t.Fatalf("unexpected destination: %+v", instr.Destinations)
	}
	if len(instr.Sources) != 1 || instr.Sources[0].RegisterNum != 1 {
		t.Fatalf("unexpected source: %+v", instr.Sources)
	}
}

func TestDecodeDestination_Modifier(t *testing.T) {
	tokens := buildHeader(0)
	word0 := uint32(0) | (1 << 22) // regnum 0, modifierPresent
	word1 := uint32(0x1) | (0x1 << 2) | (0x1 << 4) | (0x1 << 6) | (1 << 8) | (0x3 << 9)
	tokens = append(tokens, uint32(OpMov), word0, word1, 0x0002)

	k, err := DecodeStream(tokens, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dst := k.Instructions[0].Destinations[0]
	if dst.Modifier == nil {
		t.Fatalf("expected modifier to be decoded")
	}
	if !dst.Modifier.Clamp {
		t.Errorf("expected clamp bit set")
	}
	if dst.Modifier.ShiftScale != 3 {
		t.Errorf("expected shift/scale 3, got %d", dst.Modifier.ShiftScale)
	}
}

func TestDecodeSource_RelativeAddressing(t *testing.T) {
	tokens := buildHeader(0)
	outerWord0 := uint32(5) | (uint32(AddressRelative) << 23)
	innerWord0 := uint32(2)
	tokens = append(tokens, uint32(OpMov), 0x0000, outerWord0, innerWord0)

	k, err := DecodeStream(tokens, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src := k.Instructions[0].Sources[0]
	if src.RelativeSrc == nil {
		t.Fatalf("expected relative source to be decoded")
	}
	if src.RelativeSrc.RegisterNum != 2 {
		t.Errorf("expected relative source register 2, got %d", src.RelativeSrc.RegisterNum)
	}
}

func TestResolveSourceCount_IndexedResourceSampler(t *testing.T) {
	d := &Decoder{}
	oi, _ := LookupOpcodeInfo(OpSample)
	n := d.resolveSourceCount(OpSample, oi, Instruction{Control: 1 << 12})
	if n != oi.SrcCount+2 {
		t.Errorf("expected %d sources for non-UAV indexed op, got %d", oi.SrcCount+2, n)
	}

	uavOi, _ := LookupOpcodeInfo(OpUAVLoad)
	un := d.resolveSourceCount(OpUAVLoad, uavOi, Instruction{Control: 1 << 12})
	if un != uavOi.SrcCount+1 {
		t.Errorf("expected %d sources for UAV indexed op, got %d", uavOi.SrcCount+1, un)
	}
}

func TestResolveExtraCount_DclConstBuffer(t *testing.T) {
	d := &Decoder{}
	oi, _ := LookupOpcodeInfo(OpDclConstBuffer)
	if n := d.resolveExtraCount(OpDclConstBuffer, oi, Instruction{HasPrimaryModifier: true, PrimaryModifier: 4}); n != 4 {
		t.Errorf("expected 4 extras for immediate const buffer sized 4, got %d", n)
	}
	if n := d.resolveExtraCount(OpDclConstBuffer, oi, Instruction{}); n != 0 {
		t.Errorf("expected 0 extras for non-immediate const buffer, got %d", n)
	}
}

func TestDecodeInstruction_PrimarySecondaryModifierWords(t *testing.T) {
	tokens := buildHeader(0)
	// ADD has no indexed-resource-sampler flag, so only the primary (bit
	// 15) and secondary (bit 14) modifier words should be consumed, never
	// resource_format/address_offset.
	control := uint32(1<<15 | 1<<14)
	tokens = append(tokens,
		uint32(OpAdd)|(control<<16),
		0xAAAA, // primary modifier
		0xBBBB, // secondary modifier
		0x0000, // dest
		0x0001, // src a
		0x0002, // src b
	)

	k, err := DecodeStream(tokens, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	instr := k.Instructions[0]
	if !instr.HasPrimaryModifier || instr.PrimaryModifier != 0xAAAA {
		t.Fatalf("expected primary modifier 0xAAAA, got has=%v val=%#x", instr.HasPrimaryModifier, instr.PrimaryModifier)
	}
	if !instr.HasSecondaryModifier || instr.SecondaryModifier != 0xBBBB {
		t.Fatalf("expected secondary modifier 0xBBBB, got has=%v val=%#x", instr.HasSecondaryModifier, instr.SecondaryModifier)
	}
	if instr.HasResourceFormat || instr.HasAddressOffset {
		t.Fatalf("non-indexed opcode should never consume resource_format/address_offset")
	}
}

func TestDecodeInstruction_ResourceFormatAndAddressOffset(t *testing.T) {
	tokens := buildHeader(0)
	oi, ok := LookupOpcodeInfo(OpSample)
	if !ok || !oi.HasIndexedResourceSampler {
		t.Fatalf("expected OpSample to carry the indexed-resource-sampler flag")
	}
	// bits 12 (resource_format) and 13 (address_offset) set, plus bit 12
	// doubling as the indexed-args flag that adds 2 trailing sources.
	control := uint32(1<<12 | 1<<13)
	tokens = append(tokens,
		uint32(OpSample)|(control<<16),
		0x00000007, // resource_format
		0x00010200, // address_offset
		0x0000,     // dest
		0x0001,     // coordinate src
		0x0002,     // resource index src
		0x0003,     // sampler index src
	)

	k, err := DecodeStream(tokens, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	instr := k.Instructions[0]
	if !instr.HasResourceFormat || instr.ResourceFormat != 0x00000007 {
		t.Fatalf("expected resource_format 0x7, got has=%v val=%#x", instr.HasResourceFormat, instr.ResourceFormat)
	}
	if !instr.HasAddressOffset || instr.AddressOffset != 0x00010200 {
		t.Fatalf("expected address_offset 0x00010200, got has=%v val=%#x", instr.HasAddressOffset, instr.AddressOffset)
	}
	if len(instr.Sources) != oi.SrcCount+2 {
		t.Fatalf("expected %d sources (base + 2 indexed), got %d", oi.SrcCount+2, len(instr.Sources))
	}
}

func TestDecodeStream_UnknownOpcodeIsSkipped(t *testing.T) {
	tokens := buildHeader(0)
	tokens = append(tokens, 0x7FF) // out of range opcode, zero operands

	k, err := DecodeStream(tokens, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(k.Instructions) != 1 {
		t.Fatalf("expected unknown opcode to still produce an instruction, got %d", len(k.Instructions))
	}
}

func TestDecodeStream_TruncatedStreamErrors(t *testing.T) {
	tokens := buildHeader(0)
	tokens = append(tokens, uint32(OpMov), 0x0000) // missing source word
	if _, err := DecodeStream(tokens, nil); err == nil {
		t.Fatalf("expected error for truncated stream")
	}
}
