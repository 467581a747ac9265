package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
}

func TestFindPDFSpecificity(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "x12345678x.pdf"))
	touch(t, filepath.Join(dir, "other_12345678.pdf"))
	touch(t, filepath.Join(dir, "12345678_店名.pdf"))

	// Prefix beats suffix beats contains.
	got := FindPDF(dir, "12345678", false)
	require.Equal(t, filepath.Join(dir, "12345678_店名.pdf"), got)

	// Exact name beats everything.
	touch(t, filepath.Join(dir, "12345678.pdf"))
	got = FindPDF(dir, "12345678", false)
	require.Equal(t, filepath.Join(dir, "12345678.pdf"), got)
}

func TestFindPDFNoMatch(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "99999999.pdf"))

	require.Empty(t, FindPDF(dir, "12345678", false))
	require.Empty(t, FindPDF(dir, "", false))
	require.Empty(t, FindPDF("", "12345678", false))
}

func TestFindPDFRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a", "deep", "12345678.pdf"))
	touch(t, filepath.Join(dir, "b", "x12345678x.pdf"))

	got := FindPDF(dir, "12345678", true)
	require.Equal(t, filepath.Join(dir, "a", "deep", "12345678.pdf"), got)

	// Non-recursive lookup must not see subdirectories.
	require.Empty(t, FindPDF(dir, "12345678", false))
}

func TestFindPDFRecursiveRanking(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "z", "contains12345678here.pdf"))
	touch(t, filepath.Join(dir, "a", "shop_12345678.pdf"))

	// The suffixed name outranks the merely-containing one regardless of
	// walk order.
	got := FindPDF(dir, "12345678", true)
	require.Equal(t, filepath.Join(dir, "a", "shop_12345678.pdf"), got)
}

func TestFindPDFDirectory(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "汇总.xlsx")
	require.NoError(t, os.WriteFile(input, []byte("xlsx"), 0o644))

	// Nothing PDF-ish around: no directory.
	require.Empty(t, FindPDFDirectory(input))

	// PDFs next to the workbook: the workbook's directory.
	touch(t, filepath.Join(dir, "12345678.pdf"))
	require.Equal(t, dir, FindPDFDirectory(input))

	// A pdfs/ subdirectory wins over loose PDFs.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pdfs"), 0o755))
	require.Equal(t, filepath.Join(dir, "pdfs"), FindPDFDirectory(input))
}
