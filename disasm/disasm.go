// Package disasm renders a decoded AMDIL kernel back out as a readable
// instruction listing. It only ever reads the Kernel it is given; it
// never allocates SPIR-V state or touches the emitter.
package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/Cherser-s/grvk/amdil"
)

// Disassemble walks kernel's instruction stream in order and writes one
// line per instruction (plus a header line) to w.
func Disassemble(kernel *amdil.Kernel, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "; client_type=%d language=%d version=%#x shader_type=%d multipass=%v realtime=%v\n",
		kernel.Header.ClientType, kernel.Header.Language, kernel.Header.Version,
		kernel.Header.ShaderType, kernel.Header.IsMultipass, kernel.Header.IsRealtime); err != nil {
		return fmt.Errorf("disasm: writing header: %w", err)
	}

	for i := range kernel.Instructions {
		if err := writeInstruction(w, &kernel.Instructions[i]); err != nil {
			return fmt.Errorf("disasm: instruction %d: %w", i, err)
		}
	}
	return nil
}

func writeInstruction(w io.Writer, instr *amdil.Instruction) error {
	var b strings.Builder
	b.WriteString(instr.Opcode.String())

	if instr.HasPrimaryModifier {
		fmt.Fprintf(&b, " primod=%#x", instr.PrimaryModifier)
	}
	if instr.HasSecondaryModifier {
		fmt.Fprintf(&b, " secmod=%#x", instr.SecondaryModifier)
	}
	if instr.HasResourceFormat {
		fmt.Fprintf(&b, " fmt=%#x", instr.ResourceFormat)
	}
	if instr.HasAddressOffset {
		fmt.Fprintf(&b, " offset=%#x", instr.AddressOffset)
	}

	for _, dst := range instr.Destinations {
		b.WriteByte(' ')
		writeDestination(&b, dst)
	}
	for i, src := range instr.Sources {
		if i > 0 || len(instr.Destinations) > 0 {
			b.WriteString(",")
		}
		b.WriteByte(' ')
		writeSource(&b, src)
	}
	for _, e := range instr.Extras {
		fmt.Fprintf(&b, " [%#x]", e)
	}

	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

func writeDestination(b *strings.Builder, dst amdil.Destination) {
	fmt.Fprintf(b, "%s%d", dst.RegisterType, dst.RegisterNum)
	if dst.Modifier != nil {
		b.WriteByte('.')
		for i, comp := range dst.Modifier.WriteMask {
			switch comp {
			case amdil.WriteWrite:
				b.WriteString(amdil.ComponentSwizzle(i).String())
			case amdil.WriteForce0:
				b.WriteByte('0')
			case amdil.WriteForce1:
				b.WriteByte('1')
			default: // WriteNone
			}
		}
		if dst.Modifier.Clamp {
			b.WriteString("_sat")
		}
		if dst.Modifier.ShiftScale != 0 {
			fmt.Fprintf(b, "_shift%d", dst.Modifier.ShiftScale)
		}
	}
	if dst.HasImmediate {
		fmt.Fprintf(b, "(%#x)", dst.Immediate)
	}
}

func writeSource(b *strings.Builder, src amdil.Source) {
	if src.Modifier != nil && src.Modifier.Negate[0] {
		b.WriteByte('-')
	}
	if src.Modifier != nil && src.Modifier.Abs {
		b.WriteString("|")
	}
	fmt.Fprintf(b, "%s%d", src.RegisterType, src.RegisterNum)
	if src.RelativeSrc != nil {
		b.WriteByte('[')
		writeSource(b, *src.RelativeSrc)
		b.WriteByte(']')
	}
	if src.Modifier != nil {
		b.WriteByte('.')
		for i := 0; i < 4; i++ {
			b.WriteString(src.Modifier.Swizzle[i].String())
		}
	}
	if src.Modifier != nil && src.Modifier.Abs {
		b.WriteString("|")
	}
	if src.Modifier != nil {
		var flags []string
		if src.Modifier.Invert {
			flags = append(flags, "invert")
		}
		if src.Modifier.Bias {
			flags = append(flags, "bias")
		}
		if src.Modifier.X2 {
			flags = append(flags, "x2")
		}
		if src.Modifier.Sign {
			flags = append(flags, "sign")
		}
		if src.Modifier.Clamp {
			flags = append(flags, "sat")
		}
		if len(flags) > 0 {
			fmt.Fprintf(b, "_%s", strings.Join(flags, "_"))
		}
	}
	if src.HasImmediate {
		fmt.Fprintf(b, "(%#x)", src.Immediate)
	}
}
