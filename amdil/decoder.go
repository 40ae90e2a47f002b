package amdil

import (
	"fmt"

	"github.com/Cherser-s/grvk/diag"
)

// Decoder walks a binary AMDIL token stream and produces a Kernel. It
// never aborts on an unknown opcode or an unhandled flag: an unknown
// opcode is logged through Sink and recorded with no operands (only its
// opcode word is consumed), and an extended-register flag is logged while
// decoding continues.
type Decoder struct {
	tokens []uint32
	pos    int
	sink   *diag.Sink
}

// NewDecoder wraps a token stream. sink may be nil, in which case
// diag.Default is used.
func NewDecoder(tokens []uint32, sink *diag.Sink) *Decoder {
	if sink == nil {
		sink = diag.Default
	}
	return &Decoder{tokens: tokens, sink: sink}
}

func (d *Decoder) eof() bool { return d.pos >= len(d.tokens) }

func (d *Decoder) next() (uint32, error) {
	if d.eof() {
		return 0, fmt.Errorf("amdil: token stream exhausted at offset %d", d.pos)
	}
	t := d.tokens[d.pos]
	d.pos++
	return t, nil
}

func (d *Decoder) peek() (uint32, bool) {
	if d.eof() {
		return 0, false
	}
	return d.tokens[d.pos], true
}

// DecodeStream decodes the header followed by every instruction up to the
// end of the stream, per amdilc_decoder.c's ilcDecodeStream.
func DecodeStream(tokens []uint32, sink *diag.Sink) (*Kernel, error) {
	d := NewDecoder(tokens, sink)
	header, err := d.decodeHeader()
	if err != nil {
		return nil, err
	}
	k := &Kernel{Header: header}
	for !d.eof() {
		instr, err := d.decodeInstruction()
		if err != nil {
			return nil, err
		}
		k.Instructions = append(k.Instructions, instr)
	}
	return k, nil
}

// decodeHeader consumes the language token (client type, language) and
// the version token (version, shader type, multipass/realtime flags), per
// decodeIlLang/decodeIlVersion.
func (d *Decoder) decodeHeader() (Header, error) {
	langToken, err := d.next()
	if err != nil {
		return Header{}, fmt.Errorf("amdil: reading language token: %w", err)
	}
	var h Header
	h.ClientType = langToken & 0xFF
	h.Language = (langToken >> 8) & 0xFF

	versionToken, err := d.next()
	if err != nil {
		return Header{}, fmt.Errorf("amdil: reading version token: %w", err)
	}
	h.Version = versionToken & 0xFFFF
	h.ShaderType = (versionToken >> 16) & 0xFF
	h.IsMultipass = (versionToken>>24)&0x1 != 0
	h.IsRealtime = (versionToken>>25)&0x1 != 0
	return h, nil
}

// decodeInstruction consumes one opcode+control word, the optional
// primary/secondary modifier and resource-format/address-offset words,
// then its destination, source, and extra operands in that order, per
// amdilc_decoder.c's decodeInstruction. The instruction word packs a
// 16-bit opcode in bits 0-15 and a 16-bit control field in bits 16-31;
// every control-bit test below (12-15) addresses that field, matching
// the original's GET_BIT(instr->control, N) after it right-shifts control
// down to bit 0.
func (d *Decoder) decodeInstruction() (Instruction, error) {
	word, err := d.next()
	if err != nil {
		return Instruction{}, fmt.Errorf("amdil: reading opcode word: %w", err)
	}
	op := Opcode(word & 0xFFFF)
	control := (word >> 16) & 0xFFFF

	oi, known := LookupOpcodeInfo(op)
	if !known {
		d.sink.DecodeWarning("amdil: unknown opcode %d at token %d, skipping with zero operands", word&0xFFFF, d.pos-1)
		return Instruction{Opcode: op, Control: control}, nil
	}

	instr := Instruction{Opcode: op, Control: control}

	if op != OpDclResource && control&(1<<15) != 0 {
		v, err := d.next()
		if err != nil {
			return Instruction{}, fmt.Errorf("amdil: reading primary modifier for %s: %w", op, err)
		}
		instr.HasPrimaryModifier = true
		instr.PrimaryModifier = v
	}
	if control&(1<<14) != 0 {
		v, err := d.next()
		if err != nil {
			return Instruction{}, fmt.Errorf("amdil: reading secondary modifier for %s: %w", op, err)
		}
		instr.HasSecondaryModifier = true
		instr.SecondaryModifier = v
	}
	if oi.HasIndexedResourceSampler {
		if control&(1<<12) != 0 {
			v, err := d.next()
			if err != nil {
				return Instruction{}, fmt.Errorf("amdil: reading resource format for %s: %w", op, err)
			}
			instr.HasResourceFormat = true
			instr.ResourceFormat = v
		}
		if control&(1<<13) != 0 {
			v, err := d.next()
			if err != nil {
				return Instruction{}, fmt.Errorf("amdil: reading address offset for %s: %w", op, err)
			}
			instr.HasAddressOffset = true
			instr.AddressOffset = v
		}
	}

	for i := 0; i < oi.DstCount; i++ {
		dst, err := d.decodeDestination()
		if err != nil {
			return Instruction{}, err
		}
		instr.Destinations = append(instr.Destinations, dst)
	}

	srcCount := d.resolveSourceCount(op, oi, instr)
	for i := 0; i < srcCount; i++ {
		src, err := d.decodeSource()
		if err != nil {
			return Instruction{}, err
		}
		instr.Sources = append(instr.Sources, src)
	}

	extraCount := d.resolveExtraCount(op, oi, instr)
	for i := 0; i < extraCount; i++ {
		v, err := d.next()
		if err != nil {
			return Instruction{}, fmt.Errorf("amdil: reading extra word for %s: %w", op, err)
		}
		instr.Extras = append(instr.Extras, v)
	}

	return instr, nil
}

// resolveSourceCount applies the dynamic adjustments on top of an
// opcode's static SrcCount: the indexed-resource/sampler pair (bit 12 of
// the control field) adds 1 source for UAV/SRV memory ops or 2 for
// sample/load ops that need both a resource and a sampler index, and a
// non-immediate DCL_CONST_BUFFER carries one extra source.
func (d *Decoder) resolveSourceCount(op Opcode, oi OpcodeInfo, instr Instruction) int {
	n := oi.SrcCount
	control := instr.Control
	if oi.HasIndexedResourceSampler && control&(1<<12) != 0 {
		if isUAVOrSRVOperation(op) {
			n++
		} else {
			n += 2
		}
	}
	if op == OpDclConstBuffer && !instr.HasPrimaryModifier {
		n++
	}
	return n
}

// resolveExtraCount applies the two opcodes whose extra-word count
// depends on control-word flags rather than being fixed: an immediate
// DCL_CONST_BUFFER carries its element count as extra words (the count
// comes from the already-consumed primary modifier), and
// DCL_NUM_THREAD_PER_GROUP carries a variable word count packed in the
// control field's low 14 bits.
func (d *Decoder) resolveExtraCount(op Opcode, oi OpcodeInfo, instr Instruction) int {
	switch op {
	case OpDclConstBuffer:
		if instr.HasPrimaryModifier {
			return oi.ExtraCount + int(instr.PrimaryModifier)
		}
		return oi.ExtraCount
	case OpDclNumThreadPerGroup:
		return oi.ExtraCount + int(instr.Control&0x3FFF)
	default:
		return oi.ExtraCount
	}
}

// decodeDestination consumes a destination word0 and, if modifierPresent
// is set, its word1. Layout: registerNum(0-15), registerType(16-21),
// modifierPresent(22), relativeAddress(23-24), dimension(25),
// hasImmediate(26), extended(31).
func (d *Decoder) decodeDestination() (Destination, error) {
	word0, err := d.next()
	if err != nil {
		return Destination{}, fmt.Errorf("amdil: reading destination word0: %w", err)
	}
	dst := Destination{
		RegisterNum:     int(word0 & 0xFFFF),
		RegisterType:    RegisterType((word0 >> 16) & 0x3F),
		RelativeAddress: RelativeAddressMode((word0 >> 23) & 0x3),
		Dimension:       int((word0 >> 25) & 0x1),
		HasImmediate:    (word0>>26)&0x1 != 0,
		Extended:        (word0>>31)&0x1 != 0,
	}
	if dst.Extended {
		d.sink.DecodeWarning("amdil: extended register addressing on destination %s%d is not handled", dst.RegisterType, dst.RegisterNum)
	}

	if (word0>>22)&0x1 != 0 {
		word1, err := d.next()
		if err != nil {
			return Destination{}, fmt.Errorf("amdil: reading destination word1: %w", err)
		}
		mod := &DestModifier{}
		for i := 0; i < 4; i++ {
			mod.WriteMask[i] = WriteComponent((word1 >> (uint(i) * 2)) & 0x3)
		}
		mod.Clamp = (word1>>8)&0x1 != 0
		mod.ShiftScale = int((word1 >> 9) & 0xF)
		dst.Modifier = mod
	}

	if dst.HasImmediate {
		imm, err := d.next()
		if err != nil {
			return Destination{}, fmt.Errorf("amdil: reading destination immediate: %w", err)
		}
		dst.Immediate = imm
	}

	return dst, nil
}

// decodeSource mirrors decodeDestination's word0 layout, with a
// differently-shaped word1 and an optional single level of relative
// addressing recursion when RelativeAddress==AddressRelative and
// Dimension==0, per amdilc_decoder.c's decodeSource.
func (d *Decoder) decodeSource() (Source, error) {
	word0, err := d.next()
	if err != nil {
		return Source{}, fmt.Errorf("amdil: reading source word0: %w", err)
	}
	src := Source{
		RegisterNum:     int(word0 & 0xFFFF),
		RegisterType:    RegisterType((word0 >> 16) & 0x3F),
		RelativeAddress: RelativeAddressMode((word0 >> 23) & 0x3),
		Dimension:       int((word0 >> 25) & 0x1),
		HasImmediate:    (word0>>26)&0x1 != 0,
		Extended:        (word0>>31)&0x1 != 0,
	}
	if src.Extended {
		d.sink.DecodeWarning("amdil: extended register addressing on source %s%d is not handled", src.RegisterType, src.RegisterNum)
	}

	if (word0>>22)&0x1 != 0 {
		word1, err := d.next()
		if err != nil {
			return Source{}, fmt.Errorf("amdil: reading source word1: %w", err)
		}
		mod := &SourceModifier{}
		for i := 0; i < 4; i++ {
			mod.Swizzle[i] = ComponentSwizzle((word1 >> (uint(i) * 3)) & 0x7)
		}
		for i := 0; i < 4; i++ {
			mod.Negate[i] = (word1>>(12+uint(i)))&0x1 != 0
		}
		mod.Invert = (word1>>16)&0x1 != 0
		mod.Bias = (word1>>17)&0x1 != 0
		mod.X2 = (word1>>18)&0x1 != 0
		mod.Sign = (word1>>19)&0x1 != 0
		mod.Abs = (word1>>20)&0x1 != 0
		mod.DivComp = int((word1 >> 21) & 0x3)
		mod.Clamp = (word1>>23)&0x1 != 0
		src.Modifier = mod
	}

	if src.RelativeAddress == AddressRelative && src.Dimension == 0 {
		rel, err := d.decodeSource()
		if err != nil {
			return Source{}, fmt.Errorf("amdil: reading relative source: %w", err)
		}
		src.RelativeSrc = &rel
	}

	if src.HasImmediate {
		imm, err := d.next()
		if err != nil {
			return Source{}, fmt.Errorf("amdil: reading source immediate: %w", err)
		}
		src.Immediate = imm
	}

	return src, nil
}
