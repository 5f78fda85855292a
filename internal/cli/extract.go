package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/a3tai/invoice-extractor/internal/batch"
	"github.com/a3tai/invoice-extractor/internal/sheet"
)

var extractCmd = &cobra.Command{
	Use:   "extract <input.pdf> <output.xlsx>",
	Short: "Extract one invoice into a new spreadsheet",
	Long: `Extracts the invoice fields from a single PDF, prints them and writes
them as record 1 of a new workbook, replacing any existing file at the output
path. Unlike batch, a document that cannot be read is an error and nothing is
written.`,
	Args: cobra.ExactArgs(2),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	input, output := args[0], args[1]

	result, err := a.extractor.ExtractFile(input)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	shaping := batch.ShapingNumbered
	rec := batch.Record{Result: result, Source: filepath.Base(input)}
	workbook := sheet.NewWorkbook(output,
		sheet.WithSheet(a.cfg.Sheet),
		sheet.WithReplace(),
		sheet.WithLogger(a.logger),
	)
	if err := workbook.Write(shaping.Header(), [][]any{shaping.Row(1, rec)}); err != nil {
		return err
	}

	printFields(cmd, result)
	fmt.Fprintf(cmd.OutOrStdout(), "Spreadsheet written to %s\n", output)
	return nil
}
