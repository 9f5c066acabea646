// Package batch mirrors an input tree into a sanitized output tree: PDFs go
// through the scrub engine, everything else is optionally copied verbatim,
// and the structure, including empty directories, is recreated. Progress is
// reported as an ordered event stream so front ends can render it however
// they like.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jstrip/jstrip/internal/inspect"
	"github.com/jstrip/jstrip/internal/scrub"
)

// Directory permissions for mirrored trees
const dirPerm = 0o750

// Runner drives one mirror-tree batch over the scrub engine. Each file is an
// independent unit of work; cancellation is honored between files only, so an
// in-flight file always reaches one of its terminal outcomes.
type Runner struct {
	engine     *scrub.Engine
	scanner    *inspect.Scanner
	copyNonPDF bool
}

// NewRunner creates a batch runner. copyNonPDF controls whether non-PDF files
// are mirrored alongside the sanitized PDFs.
func NewRunner(engine *scrub.Engine, scanner *inspect.Scanner, copyNonPDF bool) *Runner {
	return &Runner{
		engine:     engine,
		scanner:    scanner,
		copyNonPDF: copyNonPDF,
	}
}

// Run scans srcRoot, then processes it into outRoot in the background. The
// returned channel delivers the ordered event stream and is closed after the
// final done event; its buffer covers every event the run can emit, so the
// worker never blocks on a slow consumer.
func (r *Runner) Run(ctx context.Context, srcRoot, outRoot string) (<-chan Event, error) {
	scan, err := r.scanner.ScanTree(srcRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input tree: %w", err)
	}

	if err := os.MkdirAll(outRoot, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create output root: %w", err)
	}

	// At most three events per file plus meta, done and one cancel notice.
	events := make(chan Event, 3*scan.Total()+3)
	go r.run(ctx, scan, outRoot, events)
	return events, nil
}

func (r *Runner) run(ctx context.Context, scan *inspect.TreeScan, outRoot string, events chan<- Event) {
	defer close(events)

	total := len(scan.PDFs)
	nonPDFs := 0
	if r.copyNonPDF {
		nonPDFs = len(scan.NonPDFs)
		total += nonPDFs
	}
	events <- Event{Kind: EventMeta, Total: total, PDFs: len(scan.PDFs), NonPDFs: nonPDFs}

	summary := &Summary{}

	// Recreate every source directory up front so empty ones are mirrored
	// too. MkdirAll is idempotent; racing a parallel run is harmless.
	for _, dir := range scan.Dirs {
		if rel, err := filepath.Rel(scan.Root, dir); err == nil {
			_ = os.MkdirAll(filepath.Join(outRoot, rel), dirPerm)
		}
	}

	processed := 0

	for _, src := range scan.PDFs {
		if ctx.Err() != nil {
			summary.Cancelled = true
			events <- Event{Kind: EventLog, Message: "[CANCELLED] " + r.rel(scan.Root, src.Path)}
			break
		}

		rel := r.rel(scan.Root, src.Path)
		dst := filepath.Join(outRoot, rel)
		_ = os.MkdirAll(filepath.Dir(dst), dirPerm)

		outcome, err := r.engine.CleanFile(src.Path, dst)
		summary.PDFTotal++
		processed++

		switch outcome {
		case scrub.OutcomeCleaned:
			summary.Cleaned++
			events <- Event{Kind: EventLog, Message: "[CLEANED] " + rel}
		case scrub.OutcomeCopiedClean:
			summary.CopiedClean++
			events <- Event{Kind: EventLog, Message: "[COPIED CLEAN] " + rel}
		case scrub.OutcomeCopiedEncrypted:
			summary.CopiedEncrypted++
			events <- Event{Kind: EventLog, Message: "[COPIED ENCRYPTED] " + rel}
		default:
			summary.CopiedError++
			events <- Event{Kind: EventLog, Message: "[" + strings.ToUpper(string(outcome)) + "] " + rel}
		}
		if err != nil {
			// Even the fallback copy failed; the outcome is already tallied.
			events <- Event{Kind: EventLog, Message: "[WRITE FAILED] " + rel + ": " + err.Error()}
		}
		events <- Event{Kind: EventProgress, Processed: processed}
	}

	if r.copyNonPDF && !summary.Cancelled {
		for _, src := range scan.NonPDFs {
			if ctx.Err() != nil {
				summary.Cancelled = true
				events <- Event{Kind: EventLog, Message: "[CANCELLED] " + r.rel(scan.Root, src.Path)}
				break
			}

			rel := r.rel(scan.Root, src.Path)
			dst := filepath.Join(outRoot, rel)
			_ = os.MkdirAll(filepath.Dir(dst), dirPerm)

			processed++
			if err := scrub.CopyFile(src.Path, dst); err != nil {
				summary.NonPDFErrors++
				events <- Event{Kind: EventLog, Message: "[ERROR NONPDF] " + rel}
			} else {
				summary.NonPDFCopied++
				events <- Event{Kind: EventLog, Message: "[COPIED NONPDF] " + rel}
			}
			events <- Event{Kind: EventProgress, Processed: processed}
		}
	}

	events <- Event{Kind: EventDone, Summary: summary}
}

func (r *Runner) rel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
