package layout

import (
	"context"
	"image"
)

// Parse runs the full layout-detection pipeline for one page raster: preprocess into the
// model's fixed tensor, run inference, decode candidate boxes at origWidth/origHeight
// scaled by rescaleFactor (e.g. to translate from the scale-r detector raster back to the
// scale-1 page raster), and suppress overlapping duplicates.
func Parse(ctx context.Context, det Detector, pageImg image.Image, rescaleFactor float64) ([]Region, error) {
	b := pageImg.Bounds()
	tensor, ratio := Preprocess(pageImg)
	raw, err := det.Infer(ctx, tensor)
	if err != nil {
		return nil, err
	}
	regions := ExtractRegions(raw, b.Dx(), b.Dy(), ratio, rescaleFactor)
	return NMS(regions, IoUThreshold), nil
}
