package mcp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jstrip/jstrip/internal/config"
	"github.com/jstrip/jstrip/internal/scrub"
)

// rawPDF assembles a one-page PDF image, splicing extra entries into the
// catalog, and computing the cross-reference table over the body objects.
func rawPDF(catalogExtra string, extraObjects ...string) []byte {
	objects := append([]string{
		fmt.Sprintf("<< /Type /Catalog /Pages 2 0 R %s>>", catalogExtra),
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}, extraObjects...)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xrefOffset)
	return buf.Bytes()
}

func infectedPDF() []byte {
	return rawPDF("/OpenAction 4 0 R ", "<< /S /JavaScript /JS (app.alert) >>")
}

func cleanPDF() []byte {
	return rawPDF("")
}

func testConfig(root string) *config.Config {
	return &config.Config{
		Mode:          "stdio",
		Host:          "127.0.0.1",
		Port:          8080,
		RootDirectory: root,
		Version:       "1.0.0",
		ServerName:    "test-server",
		LogLevel:      "info",
		MaxFileSize:   1024 * 1024,
	}
}

func newTestServer(t *testing.T, root string) *Server {
	t.Helper()
	s, err := NewServer(testConfig(root), scrub.NewEngine(1024*1024))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return s
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

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

func TestNewServer(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name        string
		config      *config.Config
		engine      *scrub.Engine
		expectError bool
	}{
		{
			name:        "valid stdio mode config",
			config:      testConfig(tempDir),
			engine:      scrub.NewEngine(1024 * 1024),
			expectError: false,
		},
		{
			name: "valid server mode config",
			config: func() *config.Config {
				cfg := testConfig(tempDir)
				cfg.Mode = "server"
				return cfg
			}(),
			engine:      scrub.NewEngine(1024 * 1024),
			expectError: false,
		},
		{
			name:        "nil engine",
			config:      testConfig(tempDir),
			engine:      nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, err := NewServer(tt.config, tt.engine)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if !tt.expectError {
				if srv == nil {
					t.Fatal("server should not be nil")
				}
				if srv.config != tt.config {
					t.Error("server config not set correctly")
				}
				if srv.engine != tt.engine {
					t.Error("server engine not set correctly")
				}
				if srv.mcpServer == nil {
					t.Error("mcpServer should be initialized")
				}
			}
		})
	}
}

func TestServer_HandlePDFStripFile(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "malicious.pdf")
	if err := os.WriteFile(testFile, infectedPDF(), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	srv := newTestServer(t, tempDir)

	result, err := srv.handlePDFStripFile(context.Background(), callRequest(map[string]interface{}{
		"path": testFile,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "Outcome: cleaned") {
		t.Errorf("expected cleaned outcome, got: %s", resultText)
	}

	out := filepath.Join(tempDir, "malicious_nojs.pdf")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("sanitized output missing: %v", err)
	}
	if strings.Contains(string(data), "/OpenAction") {
		t.Error("sanitized output still references /OpenAction")
	}
}

func TestServer_HandlePDFStripFile_CustomOutput(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "doc.pdf")
	if err := os.WriteFile(testFile, cleanPDF(), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	out := filepath.Join(tempDir, "safe.pdf")

	srv := newTestServer(t, tempDir)

	result, err := srv.handlePDFStripFile(context.Background(), callRequest(map[string]interface{}{
		"path":   testFile,
		"output": out,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "Outcome: copied_clean") {
		t.Errorf("expected copied_clean outcome, got: %s", resultText)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestServer_HandlePDFStripFile_OutsideRoot(t *testing.T) {
	tempDir := t.TempDir()
	outside := t.TempDir()
	testFile := filepath.Join(outside, "escape.pdf")
	if err := os.WriteFile(testFile, cleanPDF(), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	srv := newTestServer(t, tempDir)

	result, err := srv.handlePDFStripFile(context.Background(), callRequest(map[string]interface{}{
		"path": testFile,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	if !result.IsError {
		t.Errorf("expected error result for path outside root, got: %s", extractTextFromResult(result))
	}
}

func TestServer_HandlePDFStripDirectory(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "inbox")
	if err := os.MkdirAll(src, 0o750); err != nil {
		t.Fatalf("failed to create source dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "a.pdf"), infectedPDF(), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "b.pdf"), cleanPDF(), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	srv := newTestServer(t, tempDir)

	result, err := srv.handlePDFStripDirectory(context.Background(), callRequest(map[string]interface{}{
		"directory": src,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "PDFs processed: 2") {
		t.Errorf("expected summary with 2 PDFs, got: %s", resultText)
	}
	if !strings.Contains(resultText, "cleaned (JS removed): 1") {
		t.Errorf("expected one cleaned PDF in summary, got: %s", resultText)
	}

	outRoot := filepath.Join(tempDir, "JStripped_inbox")
	if _, err := os.Stat(filepath.Join(outRoot, "a.pdf")); err != nil {
		t.Errorf("mirrored output missing: %v", err)
	}
}

func TestServer_HandlePDFScanFile(t *testing.T) {
	tempDir := t.TempDir()
	infected := filepath.Join(tempDir, "infected.pdf")
	clean := filepath.Join(tempDir, "clean.pdf")
	if err := os.WriteFile(infected, infectedPDF(), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	if err := os.WriteFile(clean, cleanPDF(), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	srv := newTestServer(t, tempDir)

	result, err := srv.handlePDFScanFile(context.Background(), callRequest(map[string]interface{}{
		"path": infected,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if text := extractTextFromResult(result); !strings.Contains(text, "contains JavaScript") {
		t.Errorf("expected JavaScript verdict, got: %s", text)
	}

	result, err = srv.handlePDFScanFile(context.Background(), callRequest(map[string]interface{}{
		"path": clean,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if text := extractTextFromResult(result); !strings.Contains(text, "no detectable JavaScript") {
		t.Errorf("expected clean verdict, got: %s", text)
	}
}

func TestServer_HandlePDFValidateFile(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.pdf")
	if err := os.WriteFile(testFile, make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	srv := newTestServer(t, tempDir)

	result, err := srv.handlePDFValidateFile(context.Background(), callRequest(map[string]interface{}{
		"path": testFile,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	// The file should be invalid since it's not a real PDF
	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "PDF validation failed") {
		t.Errorf("expected validation to fail, got: %s", resultText)
	}
}

func TestServer_HandlePDFSearchDirectory(t *testing.T) {
	tempDir := t.TempDir()
	testFiles := []string{"doc1.pdf", "doc2.pdf", "report.txt"}
	for _, filename := range testFiles {
		filePath := filepath.Join(tempDir, filename)
		if err := os.WriteFile(filePath, make([]byte, 1024), 0o644); err != nil {
			t.Fatalf("failed to create test file %s: %v", filename, err)
		}
	}

	srv := newTestServer(t, tempDir)

	result, err := srv.handlePDFSearchDirectory(context.Background(), callRequest(map[string]interface{}{
		"directory": tempDir,
		"query":     "",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "Found 2 PDF file(s)") {
		t.Errorf("content should mention 2 PDF files, got: %s", resultText)
	}

	// Query narrows the listing
	result, err = srv.handlePDFSearchDirectory(context.Background(), callRequest(map[string]interface{}{
		"directory": tempDir,
		"query":     "doc1",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	resultText = extractTextFromResult(result)
	if !strings.Contains(resultText, "Found 1 PDF file(s)") {
		t.Errorf("content should mention 1 PDF file, got: %s", resultText)
	}
}

func TestServer_HandlePDFSearchDirectory_DefaultsToRoot(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tempDir, "only.pdf"), make([]byte, 64), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	srv := newTestServer(t, tempDir)

	result, err := srv.handlePDFSearchDirectory(context.Background(), callRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "Found 1 PDF file(s)") {
		t.Errorf("expected the root directory listing, got: %s", resultText)
	}
}

func TestServer_MissingRequiredArgument(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	result, err := srv.handlePDFStripFile(context.Background(), callRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for missing path argument")
	}
}
