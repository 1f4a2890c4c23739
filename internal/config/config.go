package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fakturo/fakturo/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging" validate:"required"`
	Pdf        PdfConfig        `mapstructure:"pdf" validate:"required"`
	Creditor   CreditorConfig   `mapstructure:"creditor" validate:"required"`
	Reference  ReferenceConfig  `mapstructure:"reference"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

type PdfConfig struct {
	// TemplateDir holds the invoice template and any auxiliary files it references
	TemplateDir  string `mapstructure:"template_dir" validate:"required"`
	TemplateName string `mapstructure:"template_name" validate:"required"`
	// PackageCacheDir is the root of the typst package cache
	// (<cache>/<namespace>/<name>/<version>/)
	PackageCacheDir string `mapstructure:"package_cache_dir" validate:"required"`
	TypstBinary     string `mapstructure:"typst_binary" validate:"required"`
	Currency        string `mapstructure:"currency" validate:"required,len=3"`
	// CreationDate is the fixed calendar date (YYYY-MM-DD) embedded in rendered
	// documents so identical inputs compile to byte-identical output. The true
	// generation time lives on the bill record, not inside the PDF.
	CreationDate string   `mapstructure:"creation_date" validate:"required"`
	FontDirs     []string `mapstructure:"font_dirs"`
}

// CreditorConfig describes the payee printed on every invoice,
// including the fallback account when a bill carries none.
type CreditorConfig struct {
	Name           string `mapstructure:"name" validate:"required"`
	Street         string `mapstructure:"street"`
	BuildingNumber string `mapstructure:"building_number"`
	PostalCode     string `mapstructure:"postal_code" validate:"required"`
	City           string `mapstructure:"city" validate:"required"`
	Country        string `mapstructure:"country" validate:"required,len=2"`
	IBAN           string `mapstructure:"iban" validate:"required"`
}

// ReferenceConfig holds the offsets mixed into the structured payment
// reference. Changing them changes every reference generated from then on,
// so they are configuration rather than constants.
type ReferenceConfig struct {
	ClientOffset uint64 `mapstructure:"client_offset"`
	BillOffset   uint64 `mapstructure:"bill_offset"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/fakturo")

	v.SetEnvPrefix("FAKTURO")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("pdf.template_dir", "assets/templates")
	v.SetDefault("pdf.template_name", "invoice.typ")
	v.SetDefault("pdf.package_cache_dir", defaultPackageCacheDir())
	v.SetDefault("pdf.typst_binary", "typst")
	v.SetDefault("pdf.currency", "CHF")
	v.SetDefault("pdf.creation_date", "2024-01-01")
	v.SetDefault("creditor.name", "Fakturo AG")
	v.SetDefault("creditor.street", "Bahnhofstrasse")
	v.SetDefault("creditor.building_number", "1")
	v.SetDefault("creditor.postal_code", "8000")
	v.SetDefault("creditor.city", "Zurich")
	v.SetDefault("creditor.country", "CH")
	v.SetDefault("creditor.iban", "CH93 0076 2011 6238 5295 7")
	v.SetDefault("reference.client_offset", 420)
	v.SetDefault("reference.bill_offset", 4200)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := c.Pdf.CreationTime(); err != nil {
		return fmt.Errorf("invalid pdf.creation_date: %w", err)
	}
	return nil
}

// CreationTime parses the fixed document date.
func (p PdfConfig) CreationTime() (time.Time, error) {
	return time.Parse("2006-01-02", p.CreationDate)
}

// GetDefaultConfig returns a default configuration for local development.
// This is useful for running scripts or other non-web applications.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Pdf: PdfConfig{
			TemplateDir:     "assets/templates",
			TemplateName:    "invoice.typ",
			PackageCacheDir: defaultPackageCacheDir(),
			TypstBinary:     "typst",
			Currency:        "CHF",
			CreationDate:    "2024-01-01",
		},
		Creditor: CreditorConfig{
			Name:           "Fakturo AG",
			Street:         "Bahnhofstrasse",
			BuildingNumber: "1",
			PostalCode:     "8000",
			City:           "Zurich",
			Country:        "CH",
			IBAN:           "CH93 0076 2011 6238 5295 7",
		},
		Reference: ReferenceConfig{
			ClientOffset: 420,
			BillOffset:   4200,
		},
	}
}

func defaultPackageCacheDir() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = "."
	}
	return filepath.Join(cacheDir, "typst", "packages")
}
