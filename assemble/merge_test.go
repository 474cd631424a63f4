package assemble

import (
	"testing"

	"github.com/rapidpapertrans/docparse/entities"
	"github.com/rapidpapertrans/docparse/geometry"
	"github.com/rapidpapertrans/docparse/layout"
	"github.com/rapidpapertrans/docparse/textlines"
)

func textLine(x0, y0, x1, y1 float64, text string) *textlines.Line {
	return &textlines.Line{Text: text, BBox: geometry.New(x0, y0, x1, y1)}
}

func region(id int, label layout.Label, x0, y0, x1, y1 float64) layout.Region {
	return layout.Region{ID: id, Label: label, BBox: geometry.New(x0, y0, x1, y1), Proba: 1}
}

func TestMergeLinesLayoutHeadersBodyFootersOrder(t *testing.T) {
	lines := []*textlines.Line{
		textLine(0, 0, 10, 5, "header text"),
		textLine(0, 50, 10, 55, "body text"),
		textLine(0, 90, 10, 95, "footer text"),
	}
	regions := []layout.Region{
		region(0, layout.LabelPageHeader, 0, 0, 10, 5),
		region(1, layout.LabelText, 0, 50, 10, 55),
		region(2, layout.LabelPageFooter, 0, 90, 10, 95),
	}
	elements := mergeLinesLayout(0, lines, regions)
	if len(elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(elements))
	}
	if elements[0].Kind != entities.ElementHeader {
		t.Errorf("expected headers first, got %v", elements[0].Kind)
	}
	if elements[1].Kind != entities.ElementText {
		t.Errorf("expected body second, got %v", elements[1].Kind)
	}
	if elements[2].Kind != entities.ElementFooter {
		t.Errorf("expected footers last, got %v", elements[2].Kind)
	}
}

func TestMergeLinesLayoutSameRegionLinesMerge(t *testing.T) {
	lines := []*textlines.Line{
		textLine(0, 0, 10, 5, "line one"),
		textLine(0, 5, 10, 10, "line two"),
	}
	regions := []layout.Region{region(0, layout.LabelText, 0, 0, 10, 10)}
	elements := mergeLinesLayout(0, lines, regions)
	if len(elements) != 1 {
		t.Fatalf("expected lines sharing a region to merge into one element, got %d", len(elements))
	}
	if elements[0].Text != "line one line two" {
		t.Errorf("expected space-joined text, got %q", elements[0].Text)
	}
}

func TestMergeLinesLayoutDropsUnassignableLine(t *testing.T) {
	lines := []*textlines.Line{textLine(500, 500, 510, 505, "orphan")}
	regions := []layout.Region{region(0, layout.LabelText, 0, 0, 10, 10)}
	elements := mergeLinesLayout(0, lines, regions)
	if len(elements) != 0 {
		t.Fatalf("expected far-away line with no region within threshold to be dropped, got %d", len(elements))
	}
}

func TestBuildPageElementsInsertsUnmatchedRegionNearestNeighbor(t *testing.T) {
	lines := []*textlines.Line{textLine(0, 0, 10, 5, "only line")}
	regions := []layout.Region{
		region(0, layout.LabelText, 0, 0, 10, 5),
		region(1, layout.LabelPicture, 0, 10, 10, 20),
	}
	elements := BuildPageElements(0, lines, regions)
	if len(elements) != 2 {
		t.Fatalf("expected the unmatched picture region inserted as its own element, got %d", len(elements))
	}
	found := false
	for _, el := range elements {
		if el.Kind == entities.ElementImage {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an Image element among %+v", elements)
	}
	for i, el := range elements {
		if el.ID != i {
			t.Errorf("expected sequential IDs, element %d has ID %d", i, el.ID)
		}
	}
}

func TestNeedsOCRTrueWithNoTextRegions(t *testing.T) {
	lines := []*textlines.Line{textLine(0, 0, 10, 5, "text")}
	regions := []layout.Region{region(0, layout.LabelPicture, 0, 0, 10, 5)}
	if !NeedsOCR(lines, regions) {
		t.Error("expected NeedsOCR true when there are no text-labeled regions to compare against")
	}
}

func TestNeedsOCRFalseWhenCoverageHigh(t *testing.T) {
	lines := []*textlines.Line{textLine(0, 0, 10, 10, "full coverage")}
	regions := []layout.Region{region(0, layout.LabelText, 0, 0, 10, 10)}
	if NeedsOCR(lines, regions) {
		t.Error("expected NeedsOCR false when native line area fully covers the text region")
	}
}

func TestNeedsOCRTrueWhenCoverageLow(t *testing.T) {
	lines := []*textlines.Line{textLine(0, 0, 1, 1, "sparse")}
	regions := []layout.Region{region(0, layout.LabelText, 0, 0, 10, 10)}
	if !NeedsOCR(lines, regions) {
		t.Error("expected NeedsOCR true when native line area covers far less than the text region")
	}
}
