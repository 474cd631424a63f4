// Package debugdraw renders per-page diagnostic overlays (native text lines, detected
// layout regions, merged blocks) onto the page raster and saves them as PNGs, mirroring
// ferrules' draw.rs/page.rs::debug_page debug output.
package debugdraw

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/rapidpapertrans/docparse/entities"
	"github.com/rapidpapertrans/docparse/geometry"
	"github.com/rapidpapertrans/docparse/layout"
	"github.com/rapidpapertrans/docparse/textlines"
)

var (
	lineColor   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	layoutColor = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	blockColor  = color.RGBA{R: 209, G: 139, B: 0, A: 255}
)

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		out := image.NewRGBA(rgba.Bounds())
		draw.Draw(out, out.Bounds(), rgba, rgba.Bounds().Min, draw.Src)
		return out
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

func drawHollowRect(img *image.RGBA, b geometry.BBox, c color.RGBA) {
	r := image.Rect(int(b.X0), int(b.Y0), int(b.X1), int(b.Y1)).Canon().Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

func fixedPoint(x, y int) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
}

func drawLegend(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixedPoint(x, y),
	}
	d.DrawString(text)
}

// DrawTextLines outlines every native/OCR text line's bounding box in red.
func DrawTextLines(base image.Image, lines []*textlines.Line) *image.RGBA {
	out := toRGBA(base)
	for _, l := range lines {
		drawHollowRect(out, l.BBox, lineColor)
	}
	return out
}

// DrawLayoutBoxes outlines every detected layout region in blue, with a label/confidence
// legend above it.
func DrawLayoutBoxes(base image.Image, regions []layout.Region) *image.RGBA {
	out := toRGBA(base)
	for _, r := range regions {
		drawHollowRect(out, r.BBox, layoutColor)
		legend := fmt.Sprintf("%s %.2f", r.Label, r.Proba)
		drawLegend(out, int(r.BBox.X0), int(r.BBox.Y0)-2, legend, layoutColor)
	}
	return out
}

// DrawBlocks outlines every merged block in orange, with a kind legend.
func DrawBlocks(base image.Image, blocks []entities.Block) *image.RGBA {
	out := toRGBA(base)
	for _, b := range blocks {
		drawHollowRect(out, b.BBox, blockColor)
		drawLegend(out, int(b.BBox.X0), int(b.BBox.Y0)-2, string(b.Kind), blockColor)
	}
	return out
}

// ExportPage writes the three diagnostic PNGs for one page into dir, named
// page-<id>-lines.png, page-<id>-layout.png, page-<id>-blocks.png.
func ExportPage(dir string, pageID int, raster image.Image, lines []*textlines.Line, regions []layout.Region, blocks []entities.Block) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create debug dir: %w", err)
	}
	exports := []struct {
		suffix string
		img    *image.RGBA
	}{
		{"lines", DrawTextLines(raster, lines)},
		{"layout", DrawLayoutBoxes(raster, regions)},
		{"blocks", DrawBlocks(raster, blocks)},
	}
	for _, e := range exports {
		path := filepath.Join(dir, fmt.Sprintf("page-%d-%s.png", pageID, e.suffix))
		if err := savePNG(path, e.img); err != nil {
			return err
		}
	}
	return nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return png.Encode(f, img)
}
