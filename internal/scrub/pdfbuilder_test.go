package scrub

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/require"
)

// buildPDF assembles a minimal but well-formed PDF from body objects.
// objects[i] becomes object number i+1; the helper wraps each in
// "n 0 obj ... endobj", computes the cross-reference table and emits a
// trailer with object 1 as the document root.
func buildPDF(objects ...string) []byte {
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

// catalogObj renders the root dictionary with extra entries spliced in.
func catalogObj(extra string) string {
	return fmt.Sprintf("<< /Type /Catalog /Pages 2 0 R %s>>", extra)
}

// pageObjs returns the standard two-object page tree (objects 2 and 3), with
// extra entries spliced into the page dictionary.
func pageObjs(pageExtra string) []string {
	return []string{
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] %s>>", pageExtra),
	}
}

// cleanPDF is the baseline one-page document without any trigger.
func cleanPDF() []byte {
	objs := append([]string{catalogObj("")}, pageObjs("")...)
	return buildPDF(objs...)
}

// writeTempPDF writes raw bytes to a file under t.TempDir.
func writeTempPDF(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// openTestContext loads a crafted PDF image into a pdfcpu context. The
// underlying file stays open for the lifetime of the test.
func openTestContext(t *testing.T, data []byte) *model.Context {
	t.Helper()
	path := writeTempPDF(t, "in.pdf", data)
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	e := NewEngine(0)
	ctx, err := e.openContext(f)
	require.NoError(t, err)
	return ctx
}
