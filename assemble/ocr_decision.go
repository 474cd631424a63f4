package assemble

import (
	"github.com/rapidpapertrans/docparse/layout"
	"github.com/rapidpapertrans/docparse/textlines"
)

// MinLayoutCoverage is the minimum fraction of text-region area that native extraction
// must cover before a page is trusted without falling back to OCR.
const MinLayoutCoverage = 0.5

// NeedsOCR decides whether a page's native text extraction is trustworthy enough to skip
// OCR, by comparing the combined area of native text lines against the combined area of
// the layout regions labeled as text. A page with no detected text regions at all always
// needs OCR: there is nothing to compare coverage against.
func NeedsOCR(lines []*textlines.Line, regions []layout.Region) bool {
	var textArea, lineArea float64
	for _, r := range regions {
		if r.IsTextBlock() {
			textArea += r.BBox.Area()
		}
	}
	if textArea == 0 {
		return true
	}
	for _, l := range lines {
		lineArea += l.BBox.Area()
	}
	coverage := lineArea / textArea
	return coverage < MinLayoutCoverage
}
