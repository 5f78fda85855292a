package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/a3tai/invoice-extractor/internal/config"
	"github.com/a3tai/invoice-extractor/internal/invoice"
	pdferrors "github.com/a3tai/invoice-extractor/internal/pdf/errors"
	"github.com/a3tai/invoice-extractor/internal/sheet"
)

// stubExtractor returns a fixed result per file name; broken.pdf fails.
type stubExtractor struct {
	calls []string
}

func (e *stubExtractor) ExtractFile(path string) (invoice.Result, error) {
	e.calls = append(e.calls, path)
	name := filepath.Base(path)
	if name == "broken.pdf" {
		return invoice.Result{}, pdferrors.NewOpenError(path, errors.New("malformed xref"))
	}
	return invoice.Result{
		InvoiceNumberAndDate: "EXP-" + strings.TrimSuffix(name, ".pdf") + " 01/02/2024",
		BuyerAddress:         "Acme GmbH Berlin",
		InvoiceValue:         "100.00",
	}, nil
}

func newTestServer(t *testing.T, files ...string) (*Server, *config.Config, *stubExtractor) {
	t.Helper()

	tempDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.UploadDir = filepath.Join(tempDir, "uploads")
	cfg.Output = filepath.Join(tempDir, "results", "invoices.xlsx")

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		t.Fatalf("failed to create upload dir: %v", err)
	}
	for _, name := range files {
		path := filepath.Join(cfg.UploadDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}
	}

	extractor := &stubExtractor{}
	server, err := NewServer(cfg, extractor)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return server, cfg, extractor
}

func newRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.UploadDir = t.TempDir()

	tests := []struct {
		name        string
		config      *config.Config
		extractor   *stubExtractor
		expectError bool
	}{
		{name: "valid config", config: cfg, extractor: &stubExtractor{}},
		{name: "nil config", config: nil, extractor: &stubExtractor{}, expectError: true},
		{name: "nil extractor", config: cfg, extractor: nil, expectError: true},
		{name: "empty upload dir", config: &config.Config{}, extractor: &stubExtractor{}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var server *Server
			var err error
			if tt.extractor == nil {
				server, err = NewServer(tt.config, nil)
			} else {
				server, err = NewServer(tt.config, tt.extractor)
			}

			if tt.expectError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if server.mcpServer == nil {
				t.Error("MCP server should be initialized")
			}
			if server.config != tt.config {
				t.Error("server config should match the provided config")
			}
		})
	}
}

func TestServer_HandleExtractFile(t *testing.T) {
	server, cfg, extractor := newTestServer(t, "EXP-1.pdf", "broken.pdf")

	tests := []struct {
		name      string
		args      map[string]interface{}
		wantError bool
		wantText  []string
	}{
		{
			name: "relative path",
			args: map[string]interface{}{"path": "EXP-1.pdf"},
			wantText: []string{
				"Invoice No & Dt: EXP-EXP-1 01/02/2024",
				"Buyers Name & Address: Acme GmbH Berlin",
				"Invoice Value: 100.00",
				"Exchange Rate: (not found)",
			},
		},
		{
			name:     "absolute path inside upload dir",
			args:     map[string]interface{}{"path": filepath.Join(cfg.UploadDir, "EXP-1.pdf")},
			wantText: []string{"Invoice Value: 100.00"},
		},
		{
			name:      "extraction failure",
			args:      map[string]interface{}{"path": "broken.pdf"},
			wantError: true,
			wantText:  []string{"DOCUMENT_OPEN", "malformed xref"},
		},
		{
			name:      "missing path argument",
			args:      map[string]interface{}{},
			wantError: true,
		},
		{
			name:      "missing file",
			args:      map[string]interface{}{"path": "absent.pdf"},
			wantError: true,
		},
		{
			name:      "outside upload dir",
			args:      map[string]interface{}{"path": "../results/x.pdf"},
			wantError: true,
			wantText:  []string{"outside the upload directory"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.handleExtractFile(context.Background(), newRequest(tt.args))
			if err != nil {
				t.Fatalf("handler failed: %v", err)
			}
			if result == nil {
				t.Fatal("result should not be nil")
			}
			if result.IsError != tt.wantError {
				t.Errorf("IsError = %v, want %v (%s)", result.IsError, tt.wantError, extractTextFromResult(result))
			}

			text := extractTextFromResult(result)
			for _, want := range tt.wantText {
				if !strings.Contains(text, want) {
					t.Errorf("result %q missing %q", text, want)
				}
			}
		})
	}

	for _, call := range extractor.calls {
		if !filepath.IsAbs(call) {
			t.Errorf("extractor called with relative path %s", call)
		}
	}
}

func TestServer_HandleExtractBatch(t *testing.T) {
	server, cfg, _ := newTestServer(t, "b.pdf", "a.pdf", "broken.pdf", "notes.txt")

	result, err := server.handleExtractBatch(context.Background(), newRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	text := extractTextFromResult(result)
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", text)
	}

	for _, want := range []string{
		"Spreadsheet: " + cfg.Output,
		"Attempted: 3, succeeded: 2, failed: 1",
		"Serials: 1-2",
		"broken.pdf [DOCUMENT_OPEN]",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("result %q missing %q", text, want)
		}
	}

	rows, err := sheet.NewWorkbook(cfg.Output, sheet.WithSheet(cfg.Sheet)).Rows()
	if err != nil {
		t.Fatalf("failed to read spreadsheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("spreadsheet has %d rows, want 3: %v", len(rows), rows)
	}
	if rows[0][0] != "SN" || rows[0][len(rows[0])-1] != "Source File" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "1" || rows[1][len(rows[1])-1] != "a.pdf" {
		t.Errorf("unexpected first row %v", rows[1])
	}
	if rows[2][0] != "2" || rows[2][len(rows[2])-1] != "b.pdf" {
		t.Errorf("unexpected second row %v", rows[2])
	}

	// A second run continues the numbering
	result, err = server.handleExtractBatch(context.Background(), newRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if text := extractTextFromResult(result); !strings.Contains(text, "Serials: 3-4") {
		t.Errorf("second run result %q missing continued serials", text)
	}
}

func TestServer_HandleExtractBatch_Arguments(t *testing.T) {
	server, cfg, _ := newTestServer(t, "q1/a.pdf")

	tests := []struct {
		name       string
		args       map[string]interface{}
		wantError  bool
		wantOutput string
	}{
		{
			name:       "sub directory and output name",
			args:       map[string]interface{}{"directory": "q1", "output": "q1.xlsx"},
			wantOutput: filepath.Join(filepath.Dir(cfg.Output), "q1.xlsx"),
		},
		{
			name:      "output with directory",
			args:      map[string]interface{}{"directory": "q1", "output": "../q1.xlsx"},
			wantError: true,
		},
		{
			name:      "output not xlsx",
			args:      map[string]interface{}{"directory": "q1", "output": "q1.csv"},
			wantError: true,
		},
		{
			name:      "directory outside upload dir",
			args:      map[string]interface{}{"directory": ".."},
			wantError: true,
		},
		{
			name:      "directory without pdfs",
			args:      map[string]interface{}{},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.handleExtractBatch(context.Background(), newRequest(tt.args))
			if err != nil {
				t.Fatalf("handler failed: %v", err)
			}
			if result.IsError != tt.wantError {
				t.Fatalf("IsError = %v, want %v (%s)", result.IsError, tt.wantError, extractTextFromResult(result))
			}
			if tt.wantOutput != "" {
				if _, err := os.Stat(tt.wantOutput); err != nil {
					t.Errorf("expected spreadsheet at %s: %v", tt.wantOutput, err)
				}
			}
		})
	}
}

func TestServer_HandleListUploads(t *testing.T) {
	server, _, _ := newTestServer(t, "b.pdf", "A.PDF", "notes.txt", "q1/c.pdf")

	result, err := server.handleListUploads(context.Background(), newRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	text := extractTextFromResult(result)
	if !strings.Contains(text, "Found 2 PDF file(s)") {
		t.Errorf("unexpected listing %q", text)
	}
	if !strings.Contains(text, "1. A.PDF") || !strings.Contains(text, "2. b.pdf") {
		t.Errorf("listing %q not sorted by name", text)
	}
	if strings.Contains(text, "notes.txt") || strings.Contains(text, "c.pdf") {
		t.Errorf("listing %q should hold top-level PDFs only", text)
	}

	result, err = server.handleListUploads(context.Background(), newRequest(map[string]interface{}{"directory": "q1"}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if text := extractTextFromResult(result); !strings.Contains(text, "1. c.pdf") {
		t.Errorf("sub directory listing %q missing c.pdf", text)
	}
}

func TestServer_outputPath(t *testing.T) {
	server, cfg, _ := newTestServer(t)

	got, err := server.outputPath("")
	if err != nil || got != cfg.Output {
		t.Errorf("outputPath(\"\") = %s, %v; want %s", got, err, cfg.Output)
	}

	got, err = server.outputPath("March.XLSX")
	if err != nil {
		t.Fatalf("outputPath(March.XLSX) unexpected error: %v", err)
	}
	if want := filepath.Join(filepath.Dir(cfg.Output), "March.XLSX"); got != want {
		t.Errorf("outputPath(March.XLSX) = %s, want %s", got, want)
	}
}

// Helper function to extract text from a CallToolResult
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
