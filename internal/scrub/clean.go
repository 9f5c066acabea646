package scrub

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Outcome is the terminal state of processing one PDF file. Every input file
// maps to exactly one outcome and always yields an output artifact.
type Outcome string

const (
	// OutcomeCleaned: JavaScript constructs were found, scrubbed and the
	// mutated graph was re-serialized to the output path.
	OutcomeCleaned Outcome = "cleaned"
	// OutcomeCopiedClean: no triggers were detected; the input was copied
	// verbatim to preserve byte-for-byte fidelity.
	OutcomeCopiedClean Outcome = "copied_clean"
	// OutcomeCopiedEncrypted: the document requires a password; copied as-is.
	OutcomeCopiedEncrypted Outcome = "copied_encrypted"
	// OutcomeCopiedError: open, scrub or save failed for any other reason;
	// copied as-is so no input is left unproduced in the output tree.
	OutcomeCopiedError Outcome = "copied_error"
)

// IsError reports whether the outcome represents a fallback caused by a
// failure rather than a clean or cleaned result.
func (o Outcome) IsError() bool {
	return o == OutcomeCopiedEncrypted || o == OutcomeCopiedError
}

// CleanFile processes one PDF: open the object graph, detect JavaScript,
// scrub and re-serialize when found, copy verbatim when clean, and fall back
// to a verbatim copy on password protection or any failure. The returned
// error is non-nil only when even the fallback copy failed; no error here
// ever aborts a batch.
func (e *Engine) CleanFile(inPath, outPath string) (Outcome, error) {
	outcome := e.cleanOrExplain(inPath, outPath)
	if outcome == OutcomeCleaned {
		return outcome, nil
	}
	if err := CopyFile(inPath, outPath); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// cleanOrExplain runs the open/detect/scrub/save pipeline and classifies the
// result. It writes the output file only for the cleaned outcome; all copy
// outcomes are handled by the caller.
func (e *Engine) cleanOrExplain(inPath, outPath string) Outcome {
	fi, err := os.Stat(inPath)
	if err != nil {
		return OutcomeCopiedError
	}
	if e.maxFileSize > 0 && fi.Size() > e.maxFileSize {
		return OutcomeCopiedError
	}

	f, err := os.Open(inPath)
	if err != nil {
		return OutcomeCopiedError
	}
	// The context reads lazily from f in places, so it stays open until the
	// output has been written.
	defer f.Close()

	ctx, err := e.openContext(f)
	if err != nil {
		if isPasswordError(err) {
			return OutcomeCopiedEncrypted
		}
		return OutcomeCopiedError
	}

	hasJS, err := e.HasJavaScript(ctx)
	if err != nil {
		return OutcomeCopiedError
	}
	if !hasJS {
		return OutcomeCopiedClean
	}

	// The three scrubs touch disjoint key sets; the fixed order matches the
	// detection order, not a correctness requirement.
	if _, err := e.ScrubCatalog(ctx); err != nil {
		return OutcomeCopiedError
	}
	if _, err := e.ScrubPages(ctx); err != nil {
		return OutcomeCopiedError
	}
	if _, err := e.ScrubAcroForm(ctx); err != nil {
		return OutcomeCopiedError
	}

	if err := e.save(ctx, outPath); err != nil {
		return OutcomeCopiedError
	}
	return OutcomeCleaned
}

// save serializes the mutated graph. The optimize pass is pdfcpu's closest
// equivalent to a linearized save; it also prunes the action objects the
// scrub unlinked from the graph.
func (e *Engine) save(ctx *model.Context, outPath string) error {
	if err := api.OptimizeContext(ctx); err != nil {
		return fmt.Errorf("failed to optimize context: %w", err)
	}
	if err := api.WriteContextFile(ctx, outPath); err != nil {
		return fmt.Errorf("failed to write context: %w", err)
	}
	return nil
}

// DetectFile opens a PDF read-only and reports whether it contains any
// JavaScript-triggering construct.
func (e *Engine) DetectFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	ctx, err := e.openContext(f)
	if err != nil {
		return false, err
	}
	return e.HasJavaScript(ctx)
}

// CopyFile copies src to dst byte for byte, preserving the file mode and
// modification time. It backs both the copied-clean fast path and every
// failure fallback.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy contents: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close destination: %w", err)
	}

	if err := os.Chtimes(dst, fi.ModTime(), fi.ModTime()); err != nil {
		return fmt.Errorf("failed to preserve timestamps: %w", err)
	}
	return nil
}
