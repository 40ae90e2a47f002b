package amdil

// RegisterType identifies which register file a Destination or Source
// refers to (temp, input, output, const buffer, literal, and so on).
// Grounded in amdilc_decoder.c's registerType nibble (bits 16-21 of word0).
type RegisterType int

const (
	RegTemp RegisterType = iota
	RegInput
	RegOutput
	RegConstBuffer
	RegLiteral
	RegUAV
	RegResource
	RegSampler
	RegLDS
	RegImmediateConstBuffer
)

// RelativeAddressMode tags whether a register index is absolute or offset
// by another register (bits 23-24 of word0).
type RelativeAddressMode int

const (
	AddressAbsolute RelativeAddressMode = iota
	AddressRelative
	AddressRelativeSecond
)

// ComponentSwizzle selects one of the four vector lanes a source reads, or
// the constant-zero/one lanes used by absent-source swizzles.
type ComponentSwizzle int

const (
	SwizzleX ComponentSwizzle = iota
	SwizzleY
	SwizzleZ
	SwizzleW
)

// WriteComponent is the 2-bit per-component destination write control
// decoded from a Destination's word1, per amdilc.h's IL_MODCOMP_* enum:
// a component either writes the computed value, keeps the register's
// existing lane untouched, or forces a literal 0.0/1.0 regardless of the
// computed value.
type WriteComponent int

const (
	WriteWrite WriteComponent = iota
	WriteNone
	WriteForce0
	WriteForce1
)

// DestModifier carries the optional word1 of a Destination: per-component
// write mask, clamp, and shift/scale.
type DestModifier struct {
	WriteMask [4]WriteComponent
	Clamp     bool
	ShiftScale int
}

// SourceModifier carries the optional word1 of a Source: per-component
// swizzle, per-component negate, and the scalar modifier flags.
type SourceModifier struct {
	Swizzle [4]ComponentSwizzle
	Negate  [4]bool
	Invert  bool
	Bias    bool
	X2      bool
	Sign    bool
	Abs     bool
	DivComp int
	Clamp   bool
}

// Destination is a decoded AMDIL destination operand.
type Destination struct {
	RegisterType    RegisterType
	RegisterNum     int
	RelativeAddress RelativeAddressMode
	Dimension       int
	Modifier        *DestModifier
	Immediate       uint32
	HasImmediate    bool
	Extended        bool
}

// Source is a decoded AMDIL source operand. RelativeSrc is non-nil only
// when the operand is itself addressed relative to another register
// (AMDIL permits exactly one level of this nesting).
type Source struct {
	RegisterType    RegisterType
	RegisterNum     int
	RelativeAddress RelativeAddressMode
	Dimension       int
	Modifier        *SourceModifier
	Immediate       uint32
	HasImmediate    bool
	Extended        bool
	RelativeSrc     *Source
}

// Instruction is one decoded AMDIL opcode with its operands. Extras holds
// the opcode-specific trailing words (literal components, resource format
// nibbles, structured-buffer strides) that don't fit the dst/src shape.
//
// Control is the 16-bit opcode-specific flag field (the instruction
// word's high 16 bits); every bit test in §4.C (primary/secondary
// modifier presence, indexed-resource-sampler, const-buffer kind, …)
// reads this field, never the raw instruction word.
type Instruction struct {
	Opcode  Opcode
	Control uint32

	HasPrimaryModifier bool
	PrimaryModifier    uint32
	HasSecondaryModifier bool
	SecondaryModifier    uint32

	HasResourceFormat bool
	ResourceFormat    uint32
	HasAddressOffset  bool
	AddressOffset     uint32

	Destinations []Destination
	Sources      []Source
	Extras       []uint32
}

// Header identifies the client and shader-stage metadata carried in the
// AMDIL stream's first tokens.
type Header struct {
	ClientType  uint32
	Language    uint32
	Version     uint32
	ShaderType  uint32
	IsMultipass bool
	IsRealtime  bool
}

// Kernel is a fully decoded AMDIL shader: header plus instruction stream.
type Kernel struct {
	Header       Header
	Instructions []Instruction
}
