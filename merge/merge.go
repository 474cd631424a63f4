// Package merge turns a document's assembled entities.Element values into the final
// entities.Block values exposed to callers, mirroring ferrules' parse::merge element-to-
// block state machine: a single forward pass with one token of lookahead over every page's
// elements concatenated in page order. Greedy merges (lists, headers, footers, captions)
// can therefore span a page boundary, exactly as the original does, and a resulting
// Block's PagesID reflects every page any of its merged elements came from.
package merge

import "github.com/rapidpapertrans/docparse/entities"

// TitleLevel looks up the clustered heading level for one (page, element) pair; it is the
// shape the titles package's output takes.
type TitleLevel func(pageID, elementID int) int

// walker is a one-token-lookahead cursor over a document's elements.
type walker struct {
	elements []entities.Element
	idx      int
}

func (w *walker) peek() (entities.Element, bool) {
	if w.idx >= len(w.elements) {
		return entities.Element{}, false
	}
	return w.elements[w.idx], true
}

func (w *walker) next() (entities.Element, bool) {
	el, ok := w.peek()
	if ok {
		w.idx++
	}
	return el, ok
}

// pagesID accumulates distinct page ids in first-seen order.
type pagesID struct {
	ids  []entities.PageID
	seen map[entities.PageID]bool
}

func newPagesID(first entities.PageID) *pagesID {
	p := &pagesID{seen: map[entities.PageID]bool{}}
	p.add(first)
	return p
}

func (p *pagesID) add(id entities.PageID) {
	if !p.seen[id] {
		p.seen[id] = true
		p.ids = append(p.ids, id)
	}
}

// BuildBlocks consumes a document's elements (all pages, in page order) and emits the
// blocks they fuse into. titleLevel may be nil, in which case every Title/Subtitle block
// gets level 0.
func BuildBlocks(elements []entities.Element, titleLevel TitleLevel) []entities.Block {
	w := &walker{elements: elements}
	var blocks []entities.Block
	nextID := 0

	for {
		el, ok := w.next()
		if !ok {
			break
		}
		switch el.Kind {
		case entities.ElementText:
			blocks = append(blocks, entities.Block{
				ID: nextID, Kind: entities.BlockText, PagesID: []int{el.PageID}, BBox: el.BBox,
				Text: &entities.TextPayload{Text: el.Text},
			})
			nextID++

		case entities.ElementListItem:
			items := []string{el.Text}
			bbox := el.BBox
			pages := newPagesID(el.PageID)
			for {
				peeked, ok := w.peek()
				if !ok || peeked.Kind != entities.ElementListItem {
					break
				}
				w.next()
				items = append(items, peeked.Text)
				bbox = bbox.Merge(peeked.BBox)
				pages.add(peeked.PageID)
			}
			blocks = append(blocks, entities.Block{
				ID: nextID, Kind: entities.BlockList, PagesID: pages.ids, BBox: bbox,
				List: &entities.List{Items: items},
			})
			nextID++

		case entities.ElementCaption, entities.ElementFootnote:
			text := el.Text
			bbox := el.BBox
			pages := newPagesID(el.PageID)
			consumedIntoImage := false
			for {
				peeked, ok := w.peek()
				if !ok {
					break
				}
				if peeked.Kind == entities.ElementCaption || peeked.Kind == entities.ElementFootnote {
					w.next()
					text = text + " " + peeked.Text
					bbox = bbox.Merge(peeked.BBox)
					pages.add(peeked.PageID)
					continue
				}
				if peeked.Kind == entities.ElementImage {
					w.next()
					caption := text
					pages.add(peeked.PageID)
					blocks = append(blocks, entities.Block{
						ID: nextID, Kind: entities.BlockImage, PagesID: pages.ids, BBox: bbox.Merge(peeked.BBox),
						Image: &entities.Image{Caption: &caption},
					})
					nextID++
					consumedIntoImage = true
				}
				break
			}
			if !consumedIntoImage {
				blocks = append(blocks, entities.Block{
					ID: nextID, Kind: entities.BlockText, PagesID: pages.ids, BBox: bbox,
					Text: &entities.TextPayload{Text: text},
				})
				nextID++
			}

		case entities.ElementImage:
			bbox := el.BBox
			pages := newPagesID(el.PageID)
			var caption *string
			if peeked, ok := w.peek(); ok && (peeked.Kind == entities.ElementCaption || peeked.Kind == entities.ElementFootnote) {
				w.next()
				c := peeked.Text
				caption = &c
				bbox = bbox.Merge(peeked.BBox)
				pages.add(peeked.PageID)
			}
			blocks = append(blocks, entities.Block{
				ID: nextID, Kind: entities.BlockImage, PagesID: pages.ids, BBox: bbox,
				Image: &entities.Image{Caption: caption},
			})
			nextID++

		case entities.ElementHeader:
			text, bbox := el.Text, el.BBox
			pages := newPagesID(el.PageID)
			for {
				peeked, ok := w.peek()
				if !ok || peeked.Kind != entities.ElementHeader {
					break
				}
				w.next()
				text = text + " " + peeked.Text
				bbox = bbox.Merge(peeked.BBox)
				pages.add(peeked.PageID)
			}
			blocks = append(blocks, entities.Block{
				ID: nextID, Kind: entities.BlockHeader, PagesID: pages.ids, BBox: bbox,
				Text: &entities.TextPayload{Text: text},
			})
			nextID++

		case entities.ElementFooter:
			text, bbox := el.Text, el.BBox
			pages := newPagesID(el.PageID)
			for {
				peeked, ok := w.peek()
				if !ok || peeked.Kind != entities.ElementFooter {
					break
				}
				w.next()
				text = text + " " + peeked.Text
				bbox = bbox.Merge(peeked.BBox)
				pages.add(peeked.PageID)
			}
			blocks = append(blocks, entities.Block{
				ID: nextID, Kind: entities.BlockFooter, PagesID: pages.ids, BBox: bbox,
				Text: &entities.TextPayload{Text: text},
			})
			nextID++

		case entities.ElementTitle, entities.ElementSubtitle:
			level := 0
			if titleLevel != nil {
				level = titleLevel(el.PageID, el.ID)
			}
			blocks = append(blocks, entities.Block{
				ID: nextID, Kind: entities.BlockTitle, PagesID: []int{el.PageID}, BBox: el.BBox,
				Title: &entities.Title{Level: level, Text: el.Text},
			})
			nextID++

		case entities.ElementTable:
			// Table structure reconstruction is not supported; the region is dropped.
			continue
		}
	}
	return blocks
}
