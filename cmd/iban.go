package cmd

import (
	"fmt"

	"github.com/fakturo/fakturo/internal/iban"
	"github.com/spf13/cobra"
)

var ibanCmd = &cobra.Command{
	Use:   "iban <account>",
	Short: "Validate an IBAN account number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !iban.IsValid(args[0]) {
			return fmt.Errorf("%q is not a valid IBAN", args[0])
		}
		fmt.Printf("%s is valid\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ibanCmd)
}
