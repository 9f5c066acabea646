// Package scrub implements detection and removal of JavaScript-bearing
// constructs in PDF documents. It operates on the indirect-object graph
// provided by pdfcpu: the catalog, the page tree, annotation and form field
// dictionaries, and the JavaScript name tree. Removal is purely subtractive;
// non-JavaScript actions and all unrelated document structure are preserved.
package scrub

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Engine is the single source of truth for JavaScript detection and
// scrubbing. Front ends (CLI, MCP server, batch runner) are thin callers.
type Engine struct {
	maxFileSize int64
}

// NewEngine creates a scrub engine. Files larger than maxFileSize are never
// parsed; they fall through to the verbatim-copy error outcome.
func NewEngine(maxFileSize int64) *Engine {
	return &Engine{
		maxFileSize: maxFileSize,
	}
}

// GetMaxFileSize returns the maximum file size limit
func (e *Engine) GetMaxFileSize() int64 {
	return e.maxFileSize
}

// openContext reads the PDF object graph from an open file. The returned
// context stays valid only while f remains open.
func (e *Engine) openContext(f *os.File) (*model.Context, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return ctx, nil
}

// isPasswordError reports whether an open failure was caused by missing or
// wrong credentials rather than corruption. pdfcpu does not export a stable
// sentinel for this, so the error chain's wording is inspected.
func isPasswordError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}

// derefDict resolves o one level to a concrete dictionary. Any failure to
// dereference, or a non-dictionary result, yields nil: traversal treats the
// object as absent and moves on.
func derefDict(ctx *model.Context, o types.Object) types.Dict {
	d, err := ctx.DereferenceDict(o)
	if err != nil {
		return nil
	}
	return d
}

// derefArray resolves o one level to a concrete array, nil on any failure.
func derefArray(ctx *model.Context, o types.Object) types.Array {
	a, err := ctx.DereferenceArray(o)
	if err != nil {
		return nil
	}
	return a
}

// isJSAction reports whether d is an action dictionary whose subtype S is the
// name JavaScript. Anything else, including actions with unresolvable
// subtypes, is not a JavaScript action and must be preserved.
func isJSAction(ctx *model.Context, d types.Dict) bool {
	o, found := d.Find("S")
	if !found {
		return false
	}
	resolved, err := ctx.Dereference(o)
	if err != nil {
		return false
	}
	name, ok := resolved.(types.Name)
	return ok && name.Value() == "JavaScript"
}
