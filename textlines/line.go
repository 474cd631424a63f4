package textlines

import (
	"github.com/rapidpapertrans/docparse/geometry"
	"github.com/rapidpapertrans/docparse/internal/textfix"
)

// stxSentinel is the internal line-terminator marker some PDF producers embed in the
// character stream in place of an explicit newline glyph.
const stxSentinel = '\x02'

// Line is one or more CharSpans that sit on the same visual row of a page.
type Line struct {
	Text            string
	BBox            geometry.BBox
	RotationDegrees float64
	Spans           []CharSpan

	closed bool
}

// NewLineFromSpan starts a new line from a single span.
func NewLineFromSpan(s CharSpan) *Line {
	return &Line{
		Text:            s.Text,
		BBox:            s.LooseBBox,
		RotationDegrees: s.RotationDegrees,
		Spans:           []CharSpan{s},
	}
}

// Append tries to extend the line with s. It returns false (consuming nothing) when any
// of the three termination predicates hold, in which case the caller must close this line
// and start a new one from s:
//
//  1. s's rotation differs from the line's rotation.
//  2. s starts below the line's current bottom edge (a new physical row).
//  3. the line's accumulated text already ends in a newline or the STX sentinel.
func (l *Line) Append(s CharSpan) bool {
	if l.closed {
		return false
	}
	const rotEps = 0.01
	if absF(l.RotationDegrees-s.RotationDegrees) >= rotEps {
		return false
	}
	if s.LooseBBox.Y0 > l.BBox.Y1 {
		return false
	}
	if endsInBreak(l.Text) {
		return false
	}

	if l.BBox.Area() == 0 && l.BBox.Width() == 0 && l.BBox.Height() == 0 {
		l.BBox = s.LooseBBox
	} else {
		l.BBox = l.BBox.Merge(s.LooseBBox)
	}
	if l.Text == "" {
		l.Text = s.Text
	} else {
		l.Text += s.Text
	}
	l.Spans = append(l.Spans, s)
	return true
}

func endsInBreak(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)
	last := r[len(r)-1]
	return last == '\n' || last == stxSentinel
}

// Close finalizes the line, running the text cleanup pass exactly once.
func (l *Line) Close() *Line {
	if !l.closed {
		l.Text = textfix.Clean(l.Text)
		l.closed = true
	}
	return l
}

// BuildLines groups a slice of spans (already in reading order for one row group) into
// closed Lines.
func BuildLines(spans []CharSpan) []*Line {
	var lines []*Line
	for _, s := range spans {
		if len(lines) > 0 {
			cur := lines[len(lines)-1]
			if cur.Append(s) {
				continue
			}
			cur.Close()
		}
		lines = append(lines, NewLineFromSpan(s))
	}
	if len(lines) > 0 {
		lines[len(lines)-1].Close()
	}
	return lines
}
