package ocr

import (
	"testing"

	"github.com/rapidpapertrans/docparse/geometry"
)

func TestToTextLinesKeepsZeroConfidence(t *testing.T) {
	lines := []Line{{Text: "hello", Confidence: 0, BBox: geometry.New(0, 0, 10, 10)}}
	got := ToTextLines(lines)
	if len(got) != 1 || got[0].Text != "hello" {
		t.Fatalf("expected zero-confidence line to be kept per ConfidenceThreshold=0, got %+v", got)
	}
}

func TestToTextLinesDropsBelowThreshold(t *testing.T) {
	lines := []Line{{Text: "x", Confidence: -1, BBox: geometry.New(0, 0, 1, 1)}}
	got := ToTextLines(lines)
	if len(got) != 0 {
		t.Fatalf("expected negative-confidence line dropped, got %+v", got)
	}
}
