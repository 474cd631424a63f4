// Package textlines aggregates the flat stream of characters a PdfPage reports into
// CharSpans (runs of glyphs sharing one font identity) and then into Lines (one or more
// spans that sit on the same visual row), matching the native text extraction pipeline
// described by the source PDF library's per-character metrics.
package textlines

import (
	"github.com/rapidpapertrans/docparse/geometry"
	"github.com/rapidpapertrans/docparse/pdfsource"
)

// CharSpan is a maximal run of characters sharing font name, weight, unscaled size, and
// rotation. Spans are the unit the line aggregator consumes.
type CharSpan struct {
	Text             string
	TightBBox        geometry.BBox
	LooseBBox        geometry.BBox
	FontName         string
	FontWeight       int
	UnscaledFontSize float64
	RotationDegrees  float64
}

// NewSpanFromChar starts a new span from a single character.
func NewSpanFromChar(c pdfsource.PdfChar) CharSpan {
	return CharSpan{
		Text:             c.Text,
		TightBBox:        c.TightBBox,
		LooseBBox:        c.LooseBBox,
		FontName:         c.FontName,
		FontWeight:       c.FontWeight,
		UnscaledFontSize: c.UnscaledFontSize,
		RotationDegrees:  c.RotationDegrees,
	}
}

// matches reports whether c shares this span's font identity (name, weight, unscaled
// size, rotation). Size and rotation are compared with a small epsilon to tolerate
// floating point jitter from the source library's matrix decomposition.
func (s CharSpan) matches(c pdfsource.PdfChar) bool {
	const eps = 0.01
	return s.FontName == c.FontName &&
		s.FontWeight == c.FontWeight &&
		absF(s.UnscaledFontSize-c.UnscaledFontSize) < eps &&
		absF(s.RotationDegrees-c.RotationDegrees) < eps
}

// Append extends the span with c if it matches the span's font identity, merging boxes
// and concatenating text. It reports whether the character was consumed; on false the
// caller must start a new span.
func (s *CharSpan) Append(c pdfsource.PdfChar) bool {
	if !s.matches(c) {
		return false
	}
	s.Text += c.Text
	s.TightBBox = s.TightBBox.Merge(c.TightBBox)
	s.LooseBBox = s.LooseBBox.Merge(c.LooseBBox)
	return true
}

// BuildSpans groups a flat character stream into spans, in source order.
func BuildSpans(chars []pdfsource.PdfChar) []CharSpan {
	var spans []CharSpan
	for _, c := range chars {
		if len(spans) > 0 && spans[len(spans)-1].Append(c) {
			continue
		}
		spans = append(spans, NewSpanFromChar(c))
	}
	return spans
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
