package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/a3tai/invoice-extractor/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serves the extraction tools over the Model Context Protocol on stdin and
stdout. Tool paths are resolved inside --upload-dir. Logs go to stderr.

Tools:
  invoice_extract_file    extract the fields of one PDF
  invoice_extract_batch   extract a directory into a spreadsheet
  invoice_list_uploads    list the PDFs a batch would process`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.cfg.EnsureUploadDir(); err != nil {
		return err
	}

	server, err := mcp.NewServer(a.cfg, a.extractor, mcp.WithLogger(a.logger))
	if err != nil {
		return err
	}

	if err := server.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		return err
	}
	a.logger.Info("MCP server stopped", zap.String("name", a.cfg.ServerName))
	return nil
}
