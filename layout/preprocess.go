package layout

import (
	"image"

	"golang.org/x/image/draw"
)

// Preprocess scales img so that min(RequiredWidth/w, RequiredHeight/h) = r (preserving
// aspect ratio, never upscaling past the longer axis), then pads the remainder of the
// 1024x1024 canvas with the model's gray fill value (144/255), writing CHW planar float32
// data in RGB order with [0,1] normalization. The returned ratio r is needed again at
// postprocessing time to invert the scale.
func Preprocess(img image.Image) (tensor []float32, ratio float64) {
	b := img.Bounds()
	w0, h0 := float64(b.Dx()), float64(b.Dy())
	r := minF(float64(RequiredWidth)/w0, float64(RequiredHeight)/h0)
	wNew := int(roundF(w0 * r))
	hNew := int(roundF(h0 * r))

	dst := image.NewRGBA(image.Rect(0, 0, wNew, hNew))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	const fill = float32(144.0 / 255.0)
	tensor = make([]float32, 3*RequiredHeight*RequiredWidth)
	planeSize := RequiredHeight * RequiredWidth
	for i := range tensor {
		tensor[i] = fill
	}

	for y := 0; y < hNew; y++ {
		for x := 0; x < wNew; x++ {
			c := dst.RGBAAt(x, y)
			idx := y*RequiredWidth + x
			tensor[0*planeSize+idx] = float32(c.R) / 255.0
			tensor[1*planeSize+idx] = float32(c.G) / 255.0
			tensor[2*planeSize+idx] = float32(c.B) / 255.0
		}
	}

	return tensor, r
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func roundF(v float64) float64 {
	if v < 0 {
		return float64(int(v - 0.5))
	}
	return float64(int(v + 0.5))
}
