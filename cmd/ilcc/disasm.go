package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Cherser-s/grvk"
)

func newDisasmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm <input.amdil>",
		Short: "Disassemble an AMDIL blob to a readable instruction listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("ilcc disasm: reading %s: %w", args[0], err)
			}
			if err := grvk.Disassemble(code, os.Stdout, grvk.DefaultOptions()); err != nil {
				return fmt.Errorf("ilcc disasm: %w", err)
			}
			return nil
		},
	}
	return cmd
}
