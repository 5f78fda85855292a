package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/a3tai/invoice-extractor/internal/pdf/pdftest"
)

// execute runs the root command with args, starting from default flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetCommand(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{}, args...))
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetCommand(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.SilenceUsage = false
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetCommand(c)
	}
}

// writeInvoice writes a two-page export invoice with the given number.
func writeInvoice(t *testing.T, dir, name, number string) string {
	t.Helper()
	return pdftest.Write(t, dir, name,
		pdftest.Page{Texts: []pdftest.Text{{X: 50, Y: 800, S: "PACKING LIST"}}},
		pdftest.Page{Texts: []pdftest.Text{
			{X: 50, Y: 760, S: number + " 05/06/2024"},
			{X: 50, Y: 630, S: "EXPORTER"},
			{X: 300, Y: 630, S: "BUYER DETAILS"},
			{X: 300, Y: 618, S: "Acme GmbH"},
			{X: 300, Y: 606, S: "Hauptstr 1, Berlin C"},
			{X: 50, Y: 400, S: "INVOICE VALUE"},
			{X: 50, Y: 388, S: "12500.00"},
			{X: 300, Y: 200, S: "1 EUR INR 90.25"},
		}},
	)
}

func writeCorrupt(t *testing.T, dir, name string) string {
	t.Helper()
	return pdftest.WriteBytes(t, dir, name, []byte("this is not a pdf file at all"))
}

func quietFlags(args ...string) []string {
	return append(args, "--log-level=error")
}

func outputIn(dir string) string {
	return filepath.Join(dir, "results", "invoices.xlsx")
}
