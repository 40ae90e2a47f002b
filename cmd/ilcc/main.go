// Command ilcc compiles AMDIL shader blobs to SPIR-V and disassembles
// them back to a readable listing.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "ilcc",
		Short:         "AMDIL to SPIR-V shader cross-compiler",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log decode/emit diagnostics at debug level")

	root.AddCommand(newCompileCmd(), newDisasmCmd())
	return root
}
