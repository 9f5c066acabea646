package mcp

import (
	"context"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jstrip/jstrip/internal/batch"
	"github.com/jstrip/jstrip/internal/config"
	"github.com/jstrip/jstrip/internal/inspect"
	"github.com/jstrip/jstrip/internal/scrub"
	"github.com/jstrip/jstrip/internal/security"
)

// Server exposes the scrub engine over the Model Context Protocol
type Server struct {
	config    *config.Config
	engine    *scrub.Engine
	scanner   *inspect.Scanner
	validator *inspect.Validator
	paths     *security.PathValidator
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, engine *scrub.Engine) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}

	paths, err := security.NewPathValidator(cfg.RootDirectory)
	if err != nil {
		return nil, fmt.Errorf("invalid root directory: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		engine:    engine,
		scanner:   inspect.NewScanner(cfg.MaxFileSize),
		validator: inspect.NewValidator(cfg.MaxFileSize),
		paths:     paths,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	pdfStripFileTool := mcp.NewTool(
		"pdf_strip_file",
		mcp.WithDescription("Remove all JavaScript from a PDF file, writing a sanitized copy"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithString("output",
			mcp.Description("Output path for the sanitized PDF (defaults to <stem>_nojs.pdf beside the input)"),
		),
	)
	s.mcpServer.AddTool(pdfStripFileTool, s.handlePDFStripFile)

	pdfStripDirectoryTool := mcp.NewTool(
		"pdf_strip_directory",
		mcp.WithDescription("Mirror a directory tree, sanitizing every PDF and copying everything else verbatim"),
		mcp.WithString("directory",
			mcp.Required(),
			mcp.Description("Directory to mirror; the sanitized copy lands in a sibling JStripped_ folder"),
		),
	)
	s.mcpServer.AddTool(pdfStripDirectoryTool, s.handlePDFStripDirectory)

	pdfScanFileTool := mcp.NewTool(
		"pdf_scan_file",
		mcp.WithDescription("Check whether a PDF file contains JavaScript without modifying it"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfScanFileTool, s.handlePDFScanFile)

	pdfValidateFileTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription("Validate if a file is a readable PDF"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfValidateFileTool, s.handlePDFValidateFile)

	pdfSearchDirectoryTool := mcp.NewTool(
		"pdf_search_directory",
		mcp.WithDescription("Search for PDF files in a directory with optional substring matching"),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses the server root if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query matched against file names"),
		),
	)
	s.mcpServer.AddTool(pdfSearchDirectoryTool, s.handlePDFSearchDirectory)
}

// resolvePath normalizes a tool-supplied path and enforces root containment.
func (s *Server) resolvePath(path string) (string, error) {
	return s.paths.NormalizePath(path)
}

// Handler functions
func (s *Server) handlePDFStripFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in, err := s.resolvePath(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := batch.SingleFileOutput(in)
	args := request.GetArguments()
	if o, ok := args["output"].(string); ok && o != "" {
		out, err = s.resolvePath(o)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	outcome, err := s.engine.CleanFile(in, out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write %s: %v", out, err)), nil
	}

	responseText := fmt.Sprintf("Processed %s\n", in)
	responseText += fmt.Sprintf("Output: %s\n", out)
	responseText += fmt.Sprintf("Outcome: %s\n", outcome)
	switch outcome {
	case scrub.OutcomeCleaned:
		responseText += "JavaScript was found and removed."
	case scrub.OutcomeCopiedClean:
		responseText += "No JavaScript found; the file was copied unchanged."
	case scrub.OutcomeCopiedEncrypted:
		responseText += "The file is password protected and was copied unchanged."
	case scrub.OutcomeCopiedError:
		responseText += "The file could not be parsed as a PDF and was copied unchanged."
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFStripDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	directory, err := request.RequireString("directory")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	srcRoot, err := s.resolvePath(directory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outRoot := batch.OutputRoot(srcRoot)
	if err := s.paths.ValidatePath(outRoot); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	runner := batch.NewRunner(s.engine, s.scanner, !s.config.SkipNonPDF)
	events, err := runner.Run(ctx, srcRoot, outRoot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var summary *batch.Summary
	for ev := range events {
		if ev.Kind == batch.EventDone {
			summary = ev.Summary
		}
	}
	if summary == nil {
		return mcp.NewToolResultError("run produced no summary"), nil
	}

	responseText := fmt.Sprintf("Mirrored %s into %s\n\n%s", srcRoot, outRoot, summary.String())
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFScanFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved, err := s.resolvePath(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	hasJS, err := s.engine.DetectFile(resolved)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to inspect %s: %v", resolved, err)), nil
	}

	var responseText string
	if hasJS {
		responseText = fmt.Sprintf("%s contains JavaScript. Use pdf_strip_file to produce a sanitized copy.", resolved)
	} else {
		responseText = fmt.Sprintf("%s contains no detectable JavaScript.", resolved)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved, err := s.resolvePath(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.validator.ValidateFile(resolved)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable", result.Path)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.RootDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	resolved, err := s.resolvePath(directory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}

	result, err := s.scanner.SearchDirectory(resolved, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No PDF files found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatSearchDirectoryResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods
func (s *Server) formatSearchDirectoryResult(result *inspect.SearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting jstrip MCP server in stdio mode")
		log.Printf("Root directory: %s", s.config.RootDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// The mark3labs transport only speaks stdio for now.
	log.Printf("Server mode not yet implemented with mark3labs/mcp-go")
	log.Printf("Falling back to stdio mode")
	return s.runStdioMode(ctx)
}
