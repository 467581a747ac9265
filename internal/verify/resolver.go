package verify

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fapiao-tools/invoice-recon/constants"
)

// FindPDF resolves the PDF for an invoice number inside dir. Filename shapes
// are tried most specific first: exact name, prefixed, suffixed, then merely
// containing the number; the first hit wins. Returns "" when nothing
// matches.
func FindPDF(dir, invoiceNumber string, recursive bool) string {
	number := strings.TrimSpace(invoiceNumber)
	if dir == "" || number == "" {
		return ""
	}
	if recursive {
		return findPDFRecursive(dir, number)
	}

	exact := filepath.Join(dir, number+".pdf")
	if info, err := os.Stat(exact); err == nil && !info.IsDir() {
		return exact
	}
	for _, pattern := range []string{number + "_*.pdf", "*_" + number + ".pdf", "*" + number + "*.pdf"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return matches[0]
	}
	return ""
}

// findPDFRecursive walks the whole tree once, remembering the most specific
// filename shape seen so far.
func findPDFRecursive(dir, number string) string {
	const (
		rankExact = iota
		rankPrefix
		rankSuffix
		rankContains
		rankNone
	)
	best := rankNone
	bestPath := ""

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			return nil
		}
		rank := rankNone
		switch {
		case name == number+".pdf":
			rank = rankExact
		case strings.HasPrefix(name, number+"_"):
			rank = rankPrefix
		case strings.HasSuffix(name, "_"+number+".pdf"):
			rank = rankSuffix
		case strings.Contains(name, number):
			rank = rankContains
		}
		if rank < best {
			best = rank
			bestPath = path
		}
		if best == rankExact {
			return fs.SkipAll
		}
		return nil
	})
	return bestPath
}

// FindPDFDirectory auto-discovers where the invoice PDFs live: a pdfs/
// subdirectory next to the input workbook wins, otherwise the workbook's own
// directory if it holds any PDFs. Returns "" when neither applies.
func FindPDFDirectory(inputPath string) string {
	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return ""
	}
	dir := filepath.Dir(abs)

	subdir := filepath.Join(dir, constants.PDFSubdirName)
	if info, err := os.Stat(subdir); err == nil && info.IsDir() {
		return subdir
	}
	if matches, err := filepath.Glob(filepath.Join(dir, "*.pdf")); err == nil && len(matches) > 0 {
		return dir
	}
	return ""
}
