package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/a3tai/invoice-extractor/internal/batch"
	"github.com/a3tai/invoice-extractor/internal/sheet"
)

var batchCmd = &cobra.Command{
	Use:   "batch [<output.xlsx> <input.pdf>...]",
	Short: "Extract many invoices into one spreadsheet",
	Long: `Extracts every listed PDF, in order, and appends one row per document to
the output workbook. With --scan the PDFs directly inside --upload-dir are
processed in name order and rows go to --output.

Documents that cannot be read are reported and skipped; they do not change
the exit status. Serial numbers continue from the records already in the
workbook.

Examples:
  invoice-extractor batch results/march.xlsx a.pdf b.pdf
  invoice-extractor batch --scan --upload-dir uploads -o results/invoices.xlsx`,
	Args: batchArgs,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Bool("scan", false, "Process every PDF in the upload directory")
	rootCmd.AddCommand(batchCmd)
}

func batchArgs(cmd *cobra.Command, args []string) error {
	scan, err := cmd.Flags().GetBool("scan")
	if err != nil {
		return err
	}
	if scan {
		return cobra.NoArgs(cmd, args)
	}
	if len(args) < 2 {
		return errors.New("requires an output spreadsheet and at least one input PDF (or --scan)")
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	scan, err := cmd.Flags().GetBool("scan")
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	var output string
	var paths []string
	if scan {
		output = a.cfg.Output
		paths, err = batch.ScanDirectory(a.cfg.UploadDir)
	} else {
		output = args[0]
		paths, err = batch.ExplicitList(args[1:])
	}
	if err != nil {
		return err
	}

	shaping, err := batch.ParseShaping(a.cfg.ShapingFor(scan))
	if err != nil {
		return err
	}

	runner := newReportingRunner(cmd, a, shaping)
	workbook := sheet.NewWorkbook(output, sheet.WithSheet(a.cfg.Sheet), sheet.WithLogger(a.logger))

	summary, err := runner.Run(paths, workbook)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed %d of %d document(s), %d failed\n",
		summary.Succeeded, summary.Attempted, len(summary.Failed))
	fmt.Fprintf(out, "Done: spreadsheet written to %s\n", output)
	return nil
}

// newReportingRunner returns a runner that prints a line per document
func newReportingRunner(cmd *cobra.Command, a *app, shaping batch.Shaping) *batch.Runner {
	out := cmd.OutOrStdout()
	return batch.NewRunner(a.extractor, shaping,
		batch.WithLogger(a.logger),
		batch.OnStart(func(path string) {
			fmt.Fprintf(out, "Processing: %s\n", path)
		}),
		batch.OnOutcome(func(o batch.Outcome) {
			if !o.OK() {
				fmt.Fprintf(out, "Failed: %s | %v\n", o.Path, o.Err)
			}
		}),
	)
}

