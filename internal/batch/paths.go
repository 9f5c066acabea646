package batch

import (
	"path/filepath"
	"strings"
)

// OutputRoot returns the mirror destination for an input folder: a sibling
// directory named JStripped_<folder>.
func OutputRoot(inputDir string) string {
	abs, err := filepath.Abs(inputDir)
	if err != nil {
		abs = filepath.Clean(inputDir)
	}
	return filepath.Join(filepath.Dir(abs), "JStripped_"+filepath.Base(abs))
}

// SingleFileOutput returns the destination for single-file mode: a sibling
// file named <stem>_nojs.pdf.
func SingleFileOutput(inputFile string) string {
	dir := filepath.Dir(inputFile)
	base := filepath.Base(inputFile)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"_nojs.pdf")
}
