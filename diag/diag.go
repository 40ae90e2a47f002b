// Package diag implements the decode/emit diagnostic taxonomy used across
// the compiler: warnings are logged and execution continues, errors are
// logged and the affected instruction is skipped, and fatal conditions
// abort the compilation with a returned error.
package diag

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Sink receives diagnostics raised while decoding or emitting a kernel.
// The package logger (Default) is used when a caller does not supply one.
type Sink struct {
	entry *logrus.Entry
}

// Default is the package-level sink used when callers don't configure one.
var Default = New(logrus.StandardLogger())

// New wraps a logrus.Logger as a Sink.
func New(logger *logrus.Logger) *Sink {
	return &Sink{entry: logrus.NewEntry(logger)}
}

// WithFields returns a Sink that attaches the given fields to every entry,
// e.g. diag.Default.WithFields(logrus.Fields{"stage": "pixel"}).
func (s *Sink) WithFields(fields logrus.Fields) *Sink {
	return &Sink{entry: s.entry.WithFields(fields)}
}

// DecodeWarning logs an unknown opcode, unhandled addressing mode, or
// unhandled dimension/extended flag. Decoding continues afterward.
func (s *Sink) DecodeWarning(format string, args ...any) {
	s.entry.Warnf(format, args...)
}

// EmitWarning logs an unhandled modifier or flag; the transform it
// describes is simply omitted.
func (s *Sink) EmitWarning(format string, args ...any) {
	s.entry.Warnf(format, args...)
}

// EmitError logs a missing register/resource/sampler lookup. The caller
// skips the instruction that triggered it but the kernel keeps compiling.
func (s *Sink) EmitError(format string, args ...any) {
	s.entry.Errorf(format, args...)
}

// Fatal logs a structured control-flow mismatch or other unrecoverable
// condition and returns an error the caller must propagate out of Compile.
func (s *Sink) Fatal(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	s.entry.Error(err)
	return err
}
