package cmd

import (
	"fmt"

	"github.com/fakturo/fakturo/internal/reference"
	"github.com/spf13/cobra"
)

var (
	refBillID   uint64
	refClientID uint64
	refYear     int
	refCheck    string
)

var referenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "Generate or check a structured creditor reference",
	RunE: func(cmd *cobra.Command, args []string) error {
		if refCheck != "" {
			if !reference.Valid(refCheck) {
				return fmt.Errorf("reference %q is not valid", refCheck)
			}
			fmt.Printf("%s is valid\n", refCheck)
			return nil
		}

		gen := reference.NewGenerator(cfg.Reference.ClientOffset, cfg.Reference.BillOffset)
		fmt.Println(gen.Generate(refBillID, refClientID, refYear))
		return nil
	},
}

func init() {
	referenceCmd.Flags().Uint64Var(&refBillID, "bill-id", 0, "bill identifier")
	referenceCmd.Flags().Uint64Var(&refClientID, "client-id", 0, "client identifier")
	referenceCmd.Flags().IntVar(&refYear, "year", 0, "issue year")
	referenceCmd.Flags().StringVar(&refCheck, "check", "", "validate an existing reference instead of generating one")
	rootCmd.AddCommand(referenceCmd)
}
