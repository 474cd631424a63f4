package debugdraw

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/rapidpapertrans/docparse/entities"
	"github.com/rapidpapertrans/docparse/geometry"
	"github.com/rapidpapertrans/docparse/layout"
	"github.com/rapidpapertrans/docparse/textlines"
)

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 200, 300))
}

func TestDrawTextLinesPreservesBounds(t *testing.T) {
	base := testImage()
	lines := []*textlines.Line{
		{BBox: geometry.New(10, 10, 100, 30)},
	}
	out := DrawTextLines(base, lines)
	if out.Bounds() != base.Bounds() {
		t.Errorf("bounds changed: got %v, want %v", out.Bounds(), base.Bounds())
	}
}

func TestDrawLayoutBoxesPreservesBounds(t *testing.T) {
	base := testImage()
	regions := []layout.Region{
		{ID: 0, BBox: geometry.New(5, 5, 50, 50), Label: layout.LabelText, Proba: 0.8},
	}
	out := DrawLayoutBoxes(base, regions)
	if out.Bounds() != base.Bounds() {
		t.Errorf("bounds changed: got %v, want %v", out.Bounds(), base.Bounds())
	}
}

func TestDrawBlocksPreservesBounds(t *testing.T) {
	base := testImage()
	blocks := []entities.Block{
		{ID: 0, Kind: entities.BlockText, BBox: geometry.New(0, 0, 20, 20)},
	}
	out := DrawBlocks(base, blocks)
	if out.Bounds() != base.Bounds() {
		t.Errorf("bounds changed: got %v, want %v", out.Bounds(), base.Bounds())
	}
}

func TestExportPageWritesThreePNGs(t *testing.T) {
	dir := t.TempDir()
	base := testImage()
	lines := []*textlines.Line{{BBox: geometry.New(1, 1, 5, 5)}}
	regions := []layout.Region{{ID: 0, BBox: geometry.New(1, 1, 5, 5), Label: layout.LabelTitle, Proba: 0.5}}
	blocks := []entities.Block{{ID: 0, Kind: entities.BlockTitle, BBox: geometry.New(1, 1, 5, 5)}}

	if err := ExportPage(dir, 3, base, lines, regions, blocks); err != nil {
		t.Fatalf("ExportPage failed: %v", err)
	}

	for _, suffix := range []string{"lines", "layout", "blocks"} {
		path := filepath.Join(dir, "page-3-"+suffix+".png")
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("expected %s to exist: %v", path, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", path)
		}
	}
}

func TestDrawHollowRectClampsToBounds(t *testing.T) {
	base := testImage()
	out := toRGBA(base)
	// A box extending far past the image's edges must not panic and must not touch
	// pixels outside bounds.
	drawHollowRect(out, geometry.New(-50, -50, 10000, 10000), lineColor)
	if out.Bounds() != base.Bounds() {
		t.Errorf("bounds changed: got %v, want %v", out.Bounds(), base.Bounds())
	}
}
