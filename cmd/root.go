package cmd

import (
	"fmt"
	"os"

	"github.com/fakturo/fakturo/internal/config"
	"github.com/fakturo/fakturo/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	cfg *config.Configuration
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:     "fakturo",
	Short:   "Generate invoice PDFs from structured bills",
	Long:    "Fakturo renders bills into PDF documents through an embedded typst compiler,\nincluding structured payment references and IBAN validation.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()

		var err error
		cfg, err = config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log, err = logger.NewLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
