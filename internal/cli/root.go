// Package cli implements the invoice-extractor commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/a3tai/invoice-extractor/internal/config"
	"github.com/a3tai/invoice-extractor/internal/invoice"
	"github.com/a3tai/invoice-extractor/internal/logger"
	"github.com/a3tai/invoice-extractor/internal/pdf/layout"
	"github.com/a3tai/invoice-extractor/internal/pdf/wrapper"
)

// Set by build flags
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "invoice-extractor",
	Short: "Extract export invoice fields from PDFs into a spreadsheet",
	Long: `Reads the second page of export invoice PDFs and records the invoice
number and date, buyer name and address, invoice value and exchange rate as
rows of an XLSX workbook.

Every flag can also be set through the environment with the INVOICE_ prefix,
for example INVOICE_UPLOAD_DIR=/srv/uploads.`,
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
}

// SetBuildInfo records the values injected at link time
func SetBuildInfo(v, built, commit string) {
	if v != "" {
		version = v
	}
	if built != "" {
		buildTime = built
	}
	if commit != "" {
		gitCommit = commit
	}
}

// ExecuteContext runs the root command
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// app holds what every command builds from the configuration
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	extractor *invoice.Extractor
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if version != "dev" {
		cfg.Version = version
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	tmpl := invoice.DefaultTemplate()
	if cfg.TemplatePath != "" {
		if tmpl, err = invoice.LoadTemplate(cfg.TemplatePath); err != nil {
			return nil, err
		}
	}

	detector, err := layout.NewTableDetector(cfg.TableDetector)
	if err != nil {
		return nil, err
	}

	opener := wrapper.NewOpener(wrapper.OpenerConfig{
		TableDetector: detector,
		Preflight:     cfg.Preflight,
		MaxFileSize:   cfg.MaxFileSize,
		Logger:        log,
	})

	log.Debug("configuration loaded",
		zap.Stringer("config", cfg),
		zap.String("template", tmpl.Name),
	)

	return &app{
		cfg:       cfg,
		logger:    log,
		extractor: invoice.NewExtractor(opener, invoice.WithTemplate(tmpl), invoice.WithLogger(log)),
	}, nil
}

func (a *app) close() {
	logger.Sync(a.logger)
}

// printFields writes one "label: value" line per invoice field
func printFields(cmd *cobra.Command, result invoice.Result) {
	out := cmd.OutOrStdout()
	for i, value := range result.Values() {
		fmt.Fprintf(out, "%s: %s\n", invoice.FieldLabels[i], value)
	}
}
