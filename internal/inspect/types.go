package inspect

// FileInfo represents one file discovered in a tree scan or directory search
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// TreeScan is the classified inventory of an input tree: every file bucketed
// by extension and every directory, including empty ones, recorded so the
// output tree can mirror the full structure.
type TreeScan struct {
	Root    string     `json:"root"`
	PDFs    []FileInfo `json:"pdfs"`
	NonPDFs []FileInfo `json:"non_pdfs"`
	Dirs    []string   `json:"dirs"`
}

// Total returns the number of files in the scan.
func (s *TreeScan) Total() int {
	return len(s.PDFs) + len(s.NonPDFs)
}

// ValidateFileResult represents the result of a PDF validation check
type ValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Message string `json:"message,omitempty"`
}

// SearchDirectoryResult represents the result of a PDF directory search
type SearchDirectoryResult struct {
	Directory   string     `json:"directory"`
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	SearchQuery string     `json:"search_query,omitempty"`
}
