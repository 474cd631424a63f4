package merge

import (
	"testing"

	"github.com/rapidpapertrans/docparse/entities"
	"github.com/rapidpapertrans/docparse/geometry"
)

func el(id int, kind entities.ElementKind, text string) entities.Element {
	return entities.Element{ID: id, PageID: 0, LayoutBlockID: id, Kind: kind, Text: text, BBox: geometry.New(0, float64(id)*10, 10, float64(id)*10+5)}
}

func TestAdjacentTextElementsDoNotCoalesce(t *testing.T) {
	elements := []entities.Element{el(0, entities.ElementText, "first"), el(1, entities.ElementText, "second")}
	blocks := BuildBlocks(elements, nil)
	if len(blocks) != 2 {
		t.Fatalf("expected adjacent Text elements to remain separate blocks, got %d", len(blocks))
	}
	if blocks[0].Kind != entities.BlockText || blocks[1].Kind != entities.BlockText {
		t.Errorf("expected both TextBlock, got %v %v", blocks[0].Kind, blocks[1].Kind)
	}
}

func TestListItemsGreedyMerge(t *testing.T) {
	elements := []entities.Element{
		el(0, entities.ElementListItem, "one"),
		el(1, entities.ElementListItem, "two"),
		el(2, entities.ElementListItem, "three"),
		el(3, entities.ElementText, "after list"),
	}
	blocks := BuildBlocks(elements, nil)
	if len(blocks) != 2 {
		t.Fatalf("expected one List block plus one TextBlock, got %d", len(blocks))
	}
	if blocks[0].Kind != entities.BlockList || len(blocks[0].List.Items) != 3 {
		t.Fatalf("expected List with 3 items, got %+v", blocks[0])
	}
	if blocks[1].Kind != entities.BlockText {
		t.Errorf("expected trailing Text element to start its own block, got %v", blocks[1].Kind)
	}
}

func TestCaptionThenImageMerges(t *testing.T) {
	elements := []entities.Element{el(0, entities.ElementCaption, "fig 1"), el(1, entities.ElementImage, "")}
	blocks := BuildBlocks(elements, nil)
	if len(blocks) != 1 {
		t.Fatalf("expected caption+image to merge into one Image block, got %d", len(blocks))
	}
	if blocks[0].Kind != entities.BlockImage || blocks[0].Image.Caption == nil || *blocks[0].Image.Caption != "fig 1" {
		t.Fatalf("expected Image block with caption %q, got %+v", "fig 1", blocks[0])
	}
}

func TestOrphanCaptionBecomesTextBlock(t *testing.T) {
	elements := []entities.Element{el(0, entities.ElementCaption, "stray caption"), el(1, entities.ElementText, "body")}
	blocks := BuildBlocks(elements, nil)
	if len(blocks) != 2 {
		t.Fatalf("expected orphan caption to emit its own TextBlock without consuming the next element, got %d", len(blocks))
	}
	if blocks[0].Kind != entities.BlockText || blocks[0].Text.Text != "stray caption" {
		t.Fatalf("expected caption to surface as plain text, got %+v", blocks[0])
	}
	if blocks[1].Text.Text != "body" {
		t.Fatalf("expected the following Text element to still be processed, got %+v", blocks[1])
	}
}

func TestImageLastElementNoCaption(t *testing.T) {
	elements := []entities.Element{el(0, entities.ElementImage, "")}
	blocks := BuildBlocks(elements, nil)
	if len(blocks) != 1 || blocks[0].Kind != entities.BlockImage || blocks[0].Image.Caption != nil {
		t.Fatalf("expected a captionless Image block, got %+v", blocks)
	}
}

func TestImageFollowedByNonCaptionKeepsBothElements(t *testing.T) {
	elements := []entities.Element{el(0, entities.ElementImage, ""), el(1, entities.ElementText, "unrelated")}
	blocks := BuildBlocks(elements, nil)
	if len(blocks) != 2 {
		t.Fatalf("expected image and the following text element to stay separate blocks, got %d", len(blocks))
	}
	if blocks[0].Image.Caption != nil {
		t.Errorf("expected no caption stolen from unrelated Text element")
	}
}

func TestImageFollowedByFootnoteMerges(t *testing.T) {
	elements := []entities.Element{el(0, entities.ElementImage, ""), el(1, entities.ElementFootnote, "source: xyz")}
	blocks := BuildBlocks(elements, nil)
	if len(blocks) != 1 || blocks[0].Image.Caption == nil || *blocks[0].Image.Caption != "source: xyz" {
		t.Fatalf("expected image+footnote to merge with footnote as caption, got %+v", blocks)
	}
}

func TestHeaderFooterGreedyMerge(t *testing.T) {
	elements := []entities.Element{
		el(0, entities.ElementHeader, "Chapter 1"),
		el(1, entities.ElementHeader, "Page 12"),
		el(2, entities.ElementFooter, "Confidential"),
	}
	blocks := BuildBlocks(elements, nil)
	if len(blocks) != 2 {
		t.Fatalf("expected headers merged into one block and footer into another, got %d", len(blocks))
	}
	if blocks[0].Kind != entities.BlockHeader || blocks[0].Text.Text != "Chapter 1 Page 12" {
		t.Fatalf("expected merged header text, got %+v", blocks[0])
	}
}

func TestTitleUsesLevelLookup(t *testing.T) {
	elements := []entities.Element{el(0, entities.ElementTitle, "Introduction")}
	levels := map[int]int{0: 1}
	blocks := BuildBlocks(elements, func(pageID, elementID int) int { return levels[elementID] })
	if len(blocks) != 1 || blocks[0].Title.Level != 1 {
		t.Fatalf("expected title level from lookup, got %+v", blocks)
	}
}

func TestTableIsSkipped(t *testing.T) {
	elements := []entities.Element{el(0, entities.ElementTable, "")}
	blocks := BuildBlocks(elements, nil)
	if len(blocks) != 0 {
		t.Fatalf("expected table elements dropped, got %d blocks", len(blocks))
	}
}
