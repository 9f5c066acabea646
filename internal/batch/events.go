package batch

import "fmt"

// EventKind discriminates the events a Runner emits while processing a tree.
type EventKind string

const (
	// EventMeta is emitted once, first, with the total work counts.
	EventMeta EventKind = "meta"
	// EventProgress carries the running count of finished files.
	EventProgress EventKind = "progress"
	// EventLog carries a per-file status line.
	EventLog EventKind = "log"
	// EventDone is emitted once, last, with the final summary.
	EventDone EventKind = "done"
)

// Event is one entry of the ordered stream a Runner produces. The consumer
// (CLI progress printer, MCP response collector) decides how to render it;
// the producer never blocks on the consumer.
type Event struct {
	Kind      EventKind
	Total     int      // meta
	PDFs      int      // meta
	NonPDFs   int      // meta
	Processed int      // progress
	Message   string   // log
	Summary   *Summary // done
}

// Summary tallies the outcomes of one batch run. Encrypted fallbacks are
// counted apart from generic errors.
type Summary struct {
	PDFTotal        int `json:"pdf_total"`
	Cleaned         int `json:"cleaned"`
	CopiedClean     int `json:"copied_clean"`
	CopiedEncrypted int `json:"copied_encrypted"`
	CopiedError     int `json:"copied_error"`
	NonPDFCopied    int `json:"non_pdf_copied"`
	NonPDFErrors    int `json:"non_pdf_errors"`
	Cancelled       bool `json:"cancelled"`
}

// Errors returns the number of generic (non-encryption) failures.
func (s *Summary) Errors() int {
	return s.CopiedError + s.NonPDFErrors
}

// String renders the end-of-run summary block.
func (s *Summary) String() string {
	return fmt.Sprintf(
		"Summary:\n"+
			"  PDFs processed: %d\n"+
			"    cleaned (JS removed): %d\n"+
			"    already clean -> copied: %d\n"+
			"    encrypted -> copied as-is: %d\n"+
			"  non-PDFs copied: %d\n"+
			"  errors (copied as-is): %d\n",
		s.PDFTotal, s.Cleaned, s.CopiedClean, s.CopiedEncrypted,
		s.NonPDFCopied, s.Errors())
}
