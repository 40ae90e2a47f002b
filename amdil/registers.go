package amdil

// String renders the register-file prefix the disassembler and error
// messages use, matching AMDIL's conventional one- or two-letter
// register sigils (r/v/o/cb/l/u/t/s/g/icb).
func (t RegisterType) String() string {
	switch t {
	case RegTemp:
		return "r"
	case RegInput:
		return "v"
	case RegOutput:
		return "o"
	case RegConstBuffer:
		return "cb"
	case RegLiteral:
		return "l"
	case RegUAV:
		return "u"
	case RegResource:
		return "t"
	case RegSampler:
		return "s"
	case RegLDS:
		return "g"
	case RegImmediateConstBuffer:
		return "icb"
	default:
		return "?"
	}
}

// String renders a swizzle component as its AMDIL source letter.
func (s ComponentSwizzle) String() string {
	switch s {
	case SwizzleX:
		return "x"
	case SwizzleY:
		return "y"
	case SwizzleZ:
		return "z"
	case SwizzleW:
		return "w"
	default:
		return "?"
	}
}
