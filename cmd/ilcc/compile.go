package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Cherser-s/grvk"
	"github.com/Cherser-s/grvk/mapping"
)

func newCompileCmd() *cobra.Command {
	var stage string
	var mappingPath string
	var outPath string

	cmd := &cobra.Command{
		Use:   "compile <input.amdil>",
		Short: "Compile an AMDIL blob to a SPIR-V binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("ilcc compile: reading %s: %w", args[0], err)
			}

			var m *mapping.DescriptorSetMapping
			if mappingPath != "" {
				raw, err := os.ReadFile(mappingPath)
				if err != nil {
					return fmt.Errorf("ilcc compile: reading mapping %s: %w", mappingPath, err)
				}
				m, err = mapping.ParseJSON(raw)
				if err != nil {
					return fmt.Errorf("ilcc compile: parsing mapping %s: %w", mappingPath, err)
				}
			}

			if _, err := stageExecutionModel(stage); err != nil {
				return fmt.Errorf("ilcc compile: %w", err)
			}

			spv, err := grvk.Compile(m, code, grvk.DefaultOptions())
			if err != nil {
				return fmt.Errorf("ilcc compile: %w", err)
			}

			if outPath == "" {
				outPath = args[0] + ".spv"
			}
			if err := os.WriteFile(outPath, spv, 0o644); err != nil {
				return fmt.Errorf("ilcc compile: writing %s: %w", outPath, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&stage, "stage", "vertex", "shader stage: vertex|pixel|geometry|compute|hull|domain")
	cmd.Flags().StringVar(&mappingPath, "mapping", "", "path to a descriptor-set mapping JSON document")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output SPIR-V file (default: <input>.spv)")
	return cmd
}

// stageExecutionModel validates the --stage flag against the shader
// stages the emitter understands; the AMDIL blob's own header carries
// the authoritative shader-type word, so this only rejects typos early.
func stageExecutionModel(stage string) (string, error) {
	switch stage {
	case "vertex", "pixel", "geometry", "compute", "hull", "domain":
		return stage, nil
	default:
		return "", fmt.Errorf("unknown shader stage %q", stage)
	}
}

