package layout

import (
	"sort"

	"github.com/rapidpapertrans/docparse/geometry"
)

// ExtractRegions decodes the model's raw output tensor (shape [1, 4+outputClasses,
// outputAnchors], flattened row-major) into candidate Regions in the original page's pixel
// space, discarding low-confidence predictions and applying the inverse of Preprocess's
// scale ratio plus the caller's own rescale factor (e.g. going from the scale-r raster back
// to scale-1, or to PDF points).
func ExtractRegions(output []float32, origWidth, origHeight int, ratio, rescaleFactor float64) []Region {
	if len(output) != (4+outputClasses)*outputAnchors {
		return nil
	}
	var out []Region
	id := 0
	for a := 0; a < outputAnchors; a++ {
		bestIdx := -1
		bestProb := float32(0)
		for c := 0; c < outputClasses; c++ {
			p := output[(4+c)*outputAnchors+a]
			if p > bestProb {
				bestProb = p
				bestIdx = c
			}
		}
		if bestIdx < 0 || bestProb < ConfThreshold {
			continue
		}

		xc := float64(output[0*outputAnchors+a]) / ratio
		yc := float64(output[1*outputAnchors+a]) / ratio
		w := float64(output[2*outputAnchors+a]) / ratio
		h := float64(output[3*outputAnchors+a]) / ratio

		x0 := clamp(xc-w/2, 0, float64(origWidth))
		y0 := clamp(yc-h/2, 0, float64(origHeight))
		x1 := clamp(xc+w/2, 0, float64(origWidth))
		y1 := clamp(yc+h/2, 0, float64(origHeight))
		if x0 > x1 || y0 > y1 {
			continue
		}

		out = append(out, Region{
			ID:    id,
			Label: id2label[bestIdx],
			Proba: bestProb,
			BBox:  geometry.New(x0*rescaleFactor, y0*rescaleFactor, x1*rescaleFactor, y1*rescaleFactor),
		})
		id++
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NMS performs class-agnostic non-maximum suppression over regions: candidates are
// visited from highest probability to lowest, and a candidate is kept unless some
// already-kept box has a relaxed IoU (intersection over the smaller area) exceeding
// threshold with it. Returns the filtered, probability-descending survivors in a new
// slice; regions itself is left unchanged.
func NMS(regions []Region, threshold float64) []Region {
	sorted := make([]Region, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Proba > sorted[j].Proba })

	kept := sorted[:0:0]
	for _, r := range sorted {
		drop := false
		for _, k := range kept {
			if k.BBox.RelaxedIoU(r.BBox) > threshold {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, r)
		}
	}
	return kept
}
