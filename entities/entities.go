// Package entities holds the public output data model: elements, blocks, pages, and the
// parsed document produced by the pipeline.
package entities

import (
	"image"

	"github.com/rapidpapertrans/docparse/geometry"
)

// PageID identifies a page within a document, 0-based.
type PageID = int

// ElementID identifies an element within a page, 0-based, assigned by the assembler in
// final concatenation order.
type ElementID = int

// ElementKind is the discriminant for Element.Kind.
type ElementKind string

const (
	ElementHeader   ElementKind = "Header"
	ElementFooter   ElementKind = "Footer"
	ElementText     ElementKind = "Text"
	ElementTitle    ElementKind = "Title"
	ElementSubtitle ElementKind = "Subtitle"
	ElementListItem ElementKind = "ListItem"
	ElementCaption  ElementKind = "Caption"
	ElementFootnote ElementKind = "Footnote"
	ElementImage    ElementKind = "Image"
	ElementTable    ElementKind = "Table"
)

// NoLayoutBlock is the sentinel layout_block_id for synthesized elements with no
// corresponding detected region.
const NoLayoutBlock = -1

// Element is an intermediate structured unit tied to one page and (usually) one layout
// region. Text is appended incrementally during fusion; consecutive lines are joined with
// a single space separator.
type Element struct {
	ID            ElementID
	PageID        PageID
	LayoutBlockID int
	Kind          ElementKind
	Text          string
	BBox          geometry.BBox
}

// NewElementFromLayoutBlock starts an empty element anchored to a detected layout region.
func NewElementFromLayoutBlock(id, pageID, layoutBlockID int, kind ElementKind, bbox geometry.BBox) Element {
	return Element{ID: id, PageID: pageID, LayoutBlockID: layoutBlockID, Kind: kind, BBox: bbox}
}

// PushLine appends a line's text into the element, inserting a single-space separator
// after the first line. The element's bounding box is its source layout region's box,
// fixed at construction, and is not affected by the lines pushed into it.
func (e *Element) PushLine(text string) {
	if e.Text == "" {
		e.Text = text
	} else {
		e.Text = e.Text + " " + text
	}
}

// BlockKind is the discriminant for Block.Kind.
type BlockKind string

const (
	BlockTitle   BlockKind = "Title"
	BlockHeader  BlockKind = "Header"
	BlockFooter  BlockKind = "Footer"
	BlockText    BlockKind = "TextBlock"
	BlockList    BlockKind = "List"
	BlockImage   BlockKind = "Image"
	BlockTable   BlockKind = "Table"
)

// Title is the payload of a Title-kind block.
type Title struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// TextPayload is the payload shared by TextBlock/Header/Footer blocks.
type TextPayload struct {
	Text string `json:"text"`
}

// List is the payload of a List-kind block.
type List struct {
	Items []string `json:"items"`
}

// Image is the payload of an Image-kind block.
type Image struct {
	Caption *string `json:"caption,omitempty"`
}

// Block is the public output unit. Exactly one of the payload fields is meaningful,
// selected by Kind; this mirrors the Rust source's tagged enum via a discriminated union
// rather than an interface, keeping (de)serialization simple.
type Block struct {
	ID       int           `json:"id"`
	Kind     BlockKind     `json:"kind"`
	PagesID  []PageID      `json:"pages_id"`
	BBox     geometry.BBox `json:"bbox"`
	Title    *Title        `json:"title,omitempty"`
	Text     *TextPayload  `json:"text_block,omitempty"`
	List     *List         `json:"list,omitempty"`
	Image    *Image        `json:"image,omitempty"`
}

// StructuredPage is one page's fused parse result, produced by the assembler.
type StructuredPage struct {
	ID       PageID
	Width    float64
	Height   float64
	NeedsOCR bool
	Image    image.Image
	Elements []Element
}

// Page is the per-page summary carried in ParsedDocument, stripped of its element list
// and (for JSON) its raster image.
type Page struct {
	ID       PageID `json:"id"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	NeedsOCR bool    `json:"needs_ocr"`
	Image    image.Image `json:"-"`
}

// Metadata carries document-level parse metadata.
type Metadata struct {
	ParseDurationMS int64  `json:"parse_duration_ms"`
	Version         string `json:"version"`
}

// ParsedDocument is the final pipeline output.
type ParsedDocument struct {
	DocName   string   `json:"doc_name"`
	Pages     []Page   `json:"pages"`
	Blocks    []Block  `json:"blocks"`
	Metadata  Metadata `json:"metadata"`
	DebugPath *string  `json:"debug_path,omitempty"`
}
