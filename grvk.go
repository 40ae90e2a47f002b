// Package grvk cross-compiles AMD IL (AMDIL) binary shader token streams
// into SPIR-V modules, and disassembles AMDIL token streams back into a
// readable instruction listing.
package grvk

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Cherser-s/grvk/amdil"
	"github.com/Cherser-s/grvk/diag"
	"github.com/Cherser-s/grvk/disasm"
	"github.com/Cherser-s/grvk/emit"
	"github.com/Cherser-s/grvk/mapping"
	"github.com/sirupsen/logrus"
)

// CompileOptions configures one Compile call. The zero value is usable:
// a nil Sink falls back to diag.Default.
type CompileOptions struct {
	// Sink receives every decode/emit diagnostic raised while compiling.
	// Nil falls back to diag.Default.
	Sink *diag.Sink
}

// DefaultOptions returns the options used when a caller has no reason to
// override anything: diagnostics go to the package-level logrus logger.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		Sink: diag.New(logrus.StandardLogger()),
	}
}

// Compile decodes an AMDIL blob (little-endian 32-bit tokens) and lowers
// it to a SPIR-V binary. m is handed to the emitter but not consulted:
// declared resources and samplers get DescriptorSet = the shader type and
// Binding = their AMDIL slot id.
func Compile(m *mapping.DescriptorSetMapping, code []byte, opts CompileOptions) ([]byte, error) {
	sink := opts.Sink
	if sink == nil {
		sink = diag.Default
	}

	tokens, err := tokenizeLE(code)
	if err != nil {
		return nil, fmt.Errorf("grvk: %w", err)
	}

	kernel, err := amdil.DecodeStream(tokens, sink)
	if err != nil {
		return nil, fmt.Errorf("grvk: decode: %w", err)
	}

	ctx := emit.NewContext(kernel, m, sink)
	words, err := ctx.Compile()
	if err != nil {
		return nil, fmt.Errorf("grvk: emit: %w", err)
	}
	return words, nil
}

// Disassemble decodes an AMDIL blob and writes a human-readable listing
// of it to w.
func Disassemble(code []byte, w io.Writer, opts CompileOptions) error {
	sink := opts.Sink
	if sink == nil {
		sink = diag.Default
	}

	tokens, err := tokenizeLE(code)
	if err != nil {
		return fmt.Errorf("grvk: %w", err)
	}

	kernel, err := amdil.DecodeStream(tokens, sink)
	if err != nil {
		return fmt.Errorf("grvk: decode: %w", err)
	}
	return disasm.Disassemble(kernel, w)
}

// tokenizeLE reinterprets a byte blob as little-endian 32-bit tokens.
func tokenizeLE(code []byte) ([]uint32, error) {
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("amdil blob length %d is not a multiple of 4", len(code))
	}
	tokens := make([]uint32, len(code)/4)
	for i := range tokens {
		tokens[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return tokens, nil
}
