package inspect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scanner handles discovery of files to process
type Scanner struct {
	maxFileSize int64
	validator   *Validator
}

// NewScanner creates a new scanner with the specified constraints
func NewScanner(maxFileSize int64) *Scanner {
	return &Scanner{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
	}
}

// ScanTree walks root and buckets every regular file into PDFs and non-PDFs
// by extension. Files are never opened here: an unreadable or oversized PDF
// still belongs in the work list, since processing it has a defined fallback.
// Directories are collected so an output mirror can recreate the structure
// even where a directory holds no files.
func (s *Scanner) ScanTree(root string) (*TreeScan, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("cannot access input tree: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input is not a directory: %s", absRoot)
	}

	scan := &TreeScan{Root: absRoot}
	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Keep walking past unreadable entries.
			return nil //nolint:nilerr // Intentionally continue on file errors
		}
		if info.IsDir() {
			scan.Dirs = append(scan.Dirs, path)
			return nil
		}
		fi := FileInfo{
			Path:         path,
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		}
		if IsPDF(path) {
			scan.PDFs = append(scan.PDFs, fi)
		} else {
			scan.NonPDFs = append(scan.NonPDFs, fi)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk input tree: %w", err)
	}

	return scan, nil
}

// SearchDirectory searches for valid PDF files in the specified directory,
// optionally filtered by a case-insensitive substring query on the file name.
func (s *Scanner) SearchDirectory(directory, query string) (*SearchDirectoryResult, error) {
	if directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", directory)
	}

	query = strings.ToLower(strings.TrimSpace(query))

	var pdfFiles []FileInfo
	absDirectory, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}

	err = filepath.Walk(absDirectory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Intentionally continue on file errors
		}
		if info.IsDir() || !IsPDF(path) {
			return nil
		}
		// Listings only report PDFs that pass quick validation.
		if err := s.validator.ValidateFileInfo(path, info); err != nil {
			return nil //nolint:nilerr // Intentionally continue on validation errors
		}
		if query != "" && !strings.Contains(strings.ToLower(info.Name()), query) {
			return nil
		}
		pdfFiles = append(pdfFiles, FileInfo{
			Path:         path,
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search directory: %w", err)
	}

	return &SearchDirectoryResult{
		Directory:   absDirectory,
		Files:       pdfFiles,
		TotalCount:  len(pdfFiles),
		SearchQuery: query,
	}, nil
}

// CountPDFsInDirectory counts the valid PDF files under a directory
func (s *Scanner) CountPDFsInDirectory(directory string) (int, error) {
	result, err := s.SearchDirectory(directory, "")
	if err != nil {
		return 0, err
	}
	return result.TotalCount, nil
}
