// Package layout adapts a DocLayNet-style ONNX object detector (the model ferrules ships
// as yolov8s-doclaynet.onnx) into per-page LayoutRegions: preprocessing the page raster
// into the model's fixed 1024x1024 input tensor, decoding its anchor-grid output into
// candidate boxes, and running class-agnostic non-maximum suppression over them.
package layout

import "github.com/rapidpapertrans/docparse/geometry"

// RequiredWidth and RequiredHeight are the model's fixed input tensor spatial dimensions.
const (
	RequiredWidth  = 1024
	RequiredHeight = 1024
)

// outputClasses, outputAnchors describe the model's output tensor shape
// [1, 4+outputClasses, outputAnchors].
const (
	outputClasses = 11
	outputAnchors = 21504
)

// ConfThreshold discards candidate boxes whose best class probability falls below it.
const ConfThreshold = 0.3

// IoUThreshold is the default relaxed-IoU cutoff used by NMS.
const IoUThreshold = 0.8

// Label is one of the model's eleven DocLayNet region classes, in output-channel order.
type Label string

const (
	LabelCaption       Label = "Caption"
	LabelFootnote      Label = "Footnote"
	LabelFormula       Label = "Formula"
	LabelListItem      Label = "List-item"
	LabelPageFooter    Label = "Page-footer"
	LabelPageHeader    Label = "Page-header"
	LabelPicture       Label = "Picture"
	LabelSectionHeader Label = "Section-header"
	LabelTable         Label = "Table"
	LabelText          Label = "Text"
	LabelTitle         Label = "Title"
)

// id2label is the output-channel order the model was trained with; index i+4 in a
// prediction vector holds the probability for id2label[i].
var id2label = [outputClasses]Label{
	LabelCaption,
	LabelFootnote,
	LabelFormula,
	LabelListItem,
	LabelPageFooter,
	LabelPageHeader,
	LabelPicture,
	LabelSectionHeader,
	LabelTable,
	LabelText,
	LabelTitle,
}

// Region is one detected layout region on a page.
type Region struct {
	ID    int
	BBox  geometry.BBox
	Label Label
	Proba float32
}

// IsTextBlock reports whether the region's label denotes a textual region (as opposed to
// a Picture or Table), which the page assembler uses to decide OCR-coverage math.
func (r Region) IsTextBlock() bool {
	switch r.Label {
	case LabelText, LabelCaption, LabelFootnote, LabelFormula, LabelListItem,
		LabelPageFooter, LabelPageHeader, LabelSectionHeader, LabelTitle:
		return true
	default:
		return false
	}
}
