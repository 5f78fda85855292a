package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/a3tai/invoice-extractor/internal/batch"
	"github.com/a3tai/invoice-extractor/internal/config"
	"github.com/a3tai/invoice-extractor/internal/invoice"
	"github.com/a3tai/invoice-extractor/internal/pdf/security"
	"github.com/a3tai/invoice-extractor/internal/sheet"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Tool names
const (
	ToolExtractFile  = "invoice_extract_file"
	ToolExtractBatch = "invoice_extract_batch"
	ToolListUploads  = "invoice_list_uploads"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	extractor batch.DocumentExtractor
	validator *security.PathValidator
	logger    *zap.Logger
	mcpServer *server.MCPServer

	// batchMu serializes batch runs so two calls never append to the same
	// workbook at once.
	batchMu sync.Mutex
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new MCP server instance. Paths received from clients
// are confined to cfg.UploadDir.
func NewServer(cfg *config.Config, extractor batch.DocumentExtractor, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}

	validator, err := security.NewPathValidator(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		extractor: extractor,
		validator: validator,
		logger:    zap.NewNop(),
		mcpServer: mcpServer,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractFileTool := mcp.NewTool(
		ToolExtractFile,
		mcp.WithDescription("Extract invoice number and date, buyer name and address, invoice value and exchange rate from an export invoice PDF"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("PDF path, relative to the upload directory"),
		),
	)
	s.mcpServer.AddTool(extractFileTool, s.handleExtractFile)

	extractBatchTool := mcp.NewTool(
		ToolExtractBatch,
		mcp.WithDescription("Extract every PDF in a directory and append the results to a spreadsheet"),
		mcp.WithString("directory",
			mcp.Description("Directory to scan, relative to the upload directory (uses the upload directory if empty)"),
		),
		mcp.WithString("output",
			mcp.Description("Spreadsheet file name, written next to the configured output (uses the configured output if empty)"),
		),
	)
	s.mcpServer.AddTool(extractBatchTool, s.handleExtractBatch)

	listUploadsTool := mcp.NewTool(
		ToolListUploads,
		mcp.WithDescription("List the PDF files waiting in the upload directory"),
		mcp.WithString("directory",
			mcp.Description("Directory to list, relative to the upload directory (uses the upload directory if empty)"),
		),
	)
	s.mcpServer.AddTool(listUploadsTool, s.handleListUploads)
}

// Handler functions
func (s *Server) handleExtractFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved, err := s.validator.ResolveFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.extractor.ExtractFile(resolved)
	if err != nil {
		s.logger.Warn("extraction failed", zap.String("file", resolved), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatResult(resolved, result)), nil
}

func (s *Server) handleExtractBatch(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := s.validator.ResolveDirectory(request.GetString("directory", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	output, err := s.outputPath(request.GetString("output", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	paths, err := batch.ScanDirectory(dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(paths) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no PDF files found in %s", dir)), nil
	}

	shaping, err := batch.ParseShaping(s.config.ShapingFor(true))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	runner := batch.NewRunner(s.extractor, shaping, batch.WithLogger(s.logger))
	workbook := sheet.NewWorkbook(output, sheet.WithSheet(s.config.Sheet), sheet.WithLogger(s.logger))

	summary, err := runner.Run(paths, workbook)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSummary(dir, output, summary)), nil
}

func (s *Server) handleListUploads(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := s.validator.ResolveDirectory(request.GetString("directory", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	paths, err := batch.ScanDirectory(dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", len(paths), dir)
	for i, path := range paths {
		text += fmt.Sprintf("%d. %s\n", i+1, filepath.Base(path))
	}
	return mcp.NewToolResultText(text), nil
}

// outputPath places name next to the configured output. Clients choose the
// file name only.
func (s *Server) outputPath(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return s.config.Output, nil
	}

	base := filepath.Base(name)
	if base != name {
		return "", fmt.Errorf("output must be a file name, got %s", name)
	}
	if !strings.EqualFold(filepath.Ext(base), ".xlsx") {
		return "", fmt.Errorf("output must be an .xlsx file, got %s", name)
	}
	return filepath.Join(filepath.Dir(s.config.Output), base), nil
}

// Formatting methods
func formatResult(path string, result invoice.Result) string {
	text := fmt.Sprintf("Invoice fields for: %s\n", path)
	for i, value := range result.Values() {
		if value == "" {
			value = "(not found)"
		}
		text += fmt.Sprintf("%s: %s\n", invoice.FieldLabels[i], value)
	}
	return text
}

func formatSummary(dir, output string, summary *batch.Summary) string {
	text := fmt.Sprintf("Batch %s\n", summary.RunID)
	text += fmt.Sprintf("Directory: %s\n", dir)
	text += fmt.Sprintf("Spreadsheet: %s\n", output)
	text += fmt.Sprintf("Attempted: %d, succeeded: %d, failed: %d\n",
		summary.Attempted, summary.Succeeded, len(summary.Failed))

	if summary.LastSerial > 0 {
		text += fmt.Sprintf("Serials: %d-%d\n", summary.FirstSerial, summary.LastSerial)
	}

	if len(summary.Failed) > 0 {
		text += "\nFailed:\n"
		for _, f := range summary.Failed {
			text += fmt.Sprintf("- %s [%s] %s\n", filepath.Base(f.Path), f.Kind, f.Error)
		}
	}
	return text
}

// Run serves MCP over stdin and stdout until ctx is cancelled or stdin
// closes.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve serves MCP over the given streams
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("starting MCP server",
		zap.String("name", s.config.ServerName),
		zap.String("version", s.config.Version),
		zap.String("upload_dir", s.validator.Root()),
	)

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))

	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
