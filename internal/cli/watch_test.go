package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/invoice-extractor/internal/sheet"
)

func TestWatchCmd_Use(t *testing.T) {
	assert.Equal(t, "watch", watchCmd.Use)
	assert.NotNil(t, watchCmd.Flags().Lookup("initial"))
	assert.NotNil(t, watchCmd.Flags().Lookup("settle"))
}

// withContext runs fn with ctx installed on every command.
func withContext(ctx context.Context, fn func()) {
	for _, c := range rootCmd.Commands() {
		c.SetContext(ctx)
	}
	rootCmd.SetContext(ctx)
	defer func() {
		for _, c := range rootCmd.Commands() {
			c.SetContext(context.Background())
		}
		rootCmd.SetContext(context.Background())
	}()
	fn()
}

func TestWatchCmd_InitialScanThenStop(t *testing.T) {
	dir := t.TempDir()
	uploads := filepath.Join(dir, "uploads")
	require.NoError(t, os.MkdirAll(uploads, 0o755))
	writeInvoice(t, uploads, "a.pdf", "EXP-001")
	output := outputIn(dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out string
	var err error
	withContext(ctx, func() {
		out, err = execute(t, quietFlags("watch", "--initial", "--upload-dir", uploads, "-o", output)...)
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Watching "+uploads)
	assert.Contains(t, out, "Processing: "+filepath.Join(uploads, "a.pdf"))

	rows, err := sheet.NewWorkbook(output).Rows()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "EXP-001 05/06/2024", rows[1][1])
}

func TestWatchCmd_CreatesUploadDir(t *testing.T) {
	dir := t.TempDir()
	uploads := filepath.Join(dir, "new", "uploads")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var err error
	withContext(ctx, func() {
		_, err = execute(t, quietFlags("watch", "--upload-dir", uploads, "-o", outputIn(dir))...)
	})
	require.NoError(t, err)

	info, statErr := os.Stat(uploads)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}
