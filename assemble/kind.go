package assemble

import (
	"github.com/rapidpapertrans/docparse/entities"
	"github.com/rapidpapertrans/docparse/layout"
)

// kindForLabel maps a detected layout region's label onto the element kind an element
// anchored to that region should carry. Formula regions are treated as plain text: the
// pipeline has no dedicated formula rendering.
func kindForLabel(label layout.Label) entities.ElementKind {
	switch label {
	case layout.LabelCaption:
		return entities.ElementCaption
	case layout.LabelFootnote:
		return entities.ElementFootnote
	case layout.LabelFormula:
		return entities.ElementText
	case layout.LabelListItem:
		return entities.ElementListItem
	case layout.LabelPageFooter:
		return entities.ElementFooter
	case layout.LabelPageHeader:
		return entities.ElementHeader
	case layout.LabelPicture:
		return entities.ElementImage
	case layout.LabelSectionHeader:
		return entities.ElementSubtitle
	case layout.LabelTable:
		return entities.ElementTable
	case layout.LabelText:
		return entities.ElementText
	case layout.LabelTitle:
		return entities.ElementTitle
	default:
		return entities.ElementText
	}
}
