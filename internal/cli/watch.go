package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/a3tai/invoice-extractor/internal/batch"
	"github.com/a3tai/invoice-extractor/internal/sheet"
	"github.com/a3tai/invoice-extractor/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process PDFs as they arrive in the upload directory",
	Long: `Watches --upload-dir and appends a row to --output for every PDF that
appears, one document at a time. The workbook is saved after each document.
Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Bool("initial", false, "Also process the PDFs already in the upload directory")
	watchCmd.Flags().Duration("settle", watch.DefaultSettle, "How long a file must stay unchanged before it is processed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	initial, err := cmd.Flags().GetBool("initial")
	if err != nil {
		return err
	}
	settle, err := cmd.Flags().GetDuration("settle")
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.cfg.EnsureUploadDir(); err != nil {
		return err
	}

	shaping, err := batch.ParseShaping(a.cfg.ShapingFor(true))
	if err != nil {
		return err
	}

	runner := newReportingRunner(cmd, a, shaping)
	workbook := sheet.NewWorkbook(a.cfg.Output, sheet.WithSheet(a.cfg.Sheet), sheet.WithLogger(a.logger))

	out := cmd.OutOrStdout()
	w := watch.New(a.cfg.UploadDir, runner, workbook,
		watch.WithSettle(settle),
		watch.WithInitialScan(initial),
		watch.WithLogger(a.logger),
		watch.OnSummary(func(s *batch.Summary) {
			if s.Succeeded > 0 {
				fmt.Fprintf(out, "Recorded in %s\n", workbook.Path())
			}
		}),
	)

	fmt.Fprintf(out, "Watching %s, writing to %s\n", a.cfg.UploadDir, a.cfg.Output)
	return w.Run(cmd.Context())
}
