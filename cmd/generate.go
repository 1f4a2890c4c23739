package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fakturo/fakturo/internal/domain/bill"
	"github.com/fakturo/fakturo/internal/domain/client"
	"github.com/fakturo/fakturo/internal/pdf"
	"github.com/fakturo/fakturo/internal/service"
	"github.com/fakturo/fakturo/internal/typst"
	"github.com/spf13/cobra"
)

var (
	billFile   string
	clientFile string
	outFile    string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an invoice PDF from a bill and a client description",
	RunE: func(cmd *cobra.Command, args []string) error {
		var b bill.Bill
		if err := readJSON(billFile, &b); err != nil {
			return err
		}
		var c client.Client
		if err := readJSON(clientFile, &c); err != nil {
			return err
		}

		compiler := typst.NewCompiler(log, cfg.Pdf.TypstBinary)
		generator := pdf.NewGenerator(cfg, log, compiler)

		res, err := generator.GenerateInvoicePdf(cmd.Context(), &b, &c, service.CreditorAddress(cfg))
		if err != nil {
			return err
		}

		if err := os.WriteFile(outFile, res.PDF, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outFile, err)
		}
		fmt.Printf("wrote %s (%d bytes, generated at %s)\n", outFile, len(res.PDF), res.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func init() {
	generateCmd.Flags().StringVar(&billFile, "bill", "", "path to the bill JSON file")
	generateCmd.Flags().StringVar(&clientFile, "client", "", "path to the client JSON file")
	generateCmd.Flags().StringVarP(&outFile, "out", "o", "invoice.pdf", "output PDF path")
	generateCmd.MarkFlagRequired("bill")
	generateCmd.MarkFlagRequired("client")
	rootCmd.AddCommand(generateCmd)
}
