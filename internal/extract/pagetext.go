package extract

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dslipak/pdf"
)

const (
	// defaultFontSize stands in when a glyph carries no size information.
	defaultFontSize = 10.0
	// wordGapFactor: horizontal gaps wider than this fraction of the font
	// size get at least one space; column gaps get proportionally more.
	wordGapFactor = 0.3
	// spaceWidthFactor approximates the width of one space at a font size.
	spaceWidthFactor = 0.5
	// blankLineFactor: vertical gaps taller than this multiple of the font
	// size produce a blank line, i.e. a block boundary.
	blankLineFactor = 1.8
	// maxRunSpaces caps the padding inserted for one horizontal gap.
	maxRunSpaces = 80
)

// readPageText opens the PDF at path and renders each page as
// layout-preserving text: glyphs grouped into rows by Y, spaced by their X
// gaps. Whitespace is semantically meaningful downstream (it distinguishes
// the 合  计 subtotal label from 价税合计), so the spacing must survive.
// The pdf library panics on some malformed files; that is surfaced as an
// error, never a crash.
func readPageText(path string) (pt *PageText, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			pt = nil
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pages = append(pages, renderPageLayout(page))
	}
	return buildPageText(pages), nil
}

// renderPageLayout rebuilds a page's visual text from positioned glyphs.
func renderPageLayout(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}

	// Top of the page first (PDF Y grows upward).
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

	var b strings.Builder
	havePrev := false
	var prevY int64
	for _, row := range rows {
		if len(row.Content) == 0 {
			continue
		}
		size := row.Content[0].FontSize
		if size <= 0 {
			size = defaultFontSize
		}
		if havePrev && float64(prevY-row.Position) > blankLineFactor*size {
			b.WriteString("\n")
		}
		b.WriteString(renderRow(row.Content))
		b.WriteString("\n")
		prevY = row.Position
		havePrev = true
	}
	return b.String()
}

// renderRow joins one row's glyphs left to right, padding horizontal gaps
// with spaces proportional to the gap width.
func renderRow(words []pdf.Text) string {
	sorted := make([]pdf.Text, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var b strings.Builder
	cursor := 0.0
	for i, w := range sorted {
		if i > 0 {
			size := w.FontSize
			if size <= 0 {
				size = defaultFontSize
			}
			gap := w.X - cursor
			if gap > size*wordGapFactor {
				n := int(gap / (size * spaceWidthFactor))
				if n < 1 {
					n = 1
				}
				if n > maxRunSpaces {
					n = maxRunSpaces
				}
				b.WriteString(strings.Repeat(" ", n))
			}
		}
		b.WriteString(w.S)
		cursor = w.X + w.W
	}
	return b.String()
}

// buildPageText segments rendered pages into blocks. Blank lines are the
// only segmentation signal; consecutive non-blank lines collapse into one
// whitespace-trimmed block string.
func buildPageText(pages []string) *PageText {
	var blocks []string
	var full strings.Builder

	for _, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		full.WriteString(page)
		full.WriteString("\n")

		var current []string
		flush := func() {
			if len(current) == 0 {
				return
			}
			if block := strings.TrimSpace(strings.Join(current, " ")); block != "" {
				blocks = append(blocks, block)
			}
			current = nil
		}
		for _, line := range strings.Split(page, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				current = append(current, line)
			} else {
				flush()
			}
		}
		flush()
	}

	pt := &PageText{Blocks: blocks, Full: strings.TrimSpace(full.String())}
	pt.Search = strings.TrimSpace(strings.Join(blocks, "\n"))
	if pt.Search == "" {
		pt.Search = pt.Full
	}
	return pt
}
