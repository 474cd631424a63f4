// Package assemble fuses one page's native or OCR text lines with its detected layout
// regions into entities.Element values, mirroring ferrules' parse::merge/parse::page
// fusion stage.
package assemble

import (
	"github.com/rapidpapertrans/docparse/entities"
	"github.com/rapidpapertrans/docparse/layout"
	"github.com/rapidpapertrans/docparse/textlines"
)

// MinIntersectionLayout is the fraction of a line's own area that a region's overlap must
// exceed for the region to be accepted on overlap alone.
const MinIntersectionLayout = 0.5

// MaximumAssignmentDistance is the distance cutoff for the fallback nearest-region
// assignment, used when no region clears MinIntersectionLayout.
const MaximumAssignmentDistance = 20.0

// LayoutDistanceXWeight and LayoutDistanceYWeight weight the axis-weighted centroid
// distance used by the fallback assignment and by mergeRemaining: lines rarely drift far
// vertically from their region without drifting further horizontally first, so the X axis
// is weighted five times the Y axis.
const (
	LayoutDistanceXWeight = 5.0
	LayoutDistanceYWeight = 1.0
)

// mergeLinesLayout assigns each line to its best-matching region (by overlap, falling back
// to nearest distance), merges same-region lines into elements keyed by the region's
// layout_block_id, and returns them bucketed by the matched region's own label and
// concatenated as headers++body++footers. Lines that match no region are dropped.
func mergeLinesLayout(pageID int, lines []*textlines.Line, regions []layout.Region) []entities.Element {
	var headers, body, footers []entities.Element

	for _, line := range lines {
		region, ok := bestRegionForLine(line, regions)
		if !ok {
			continue
		}
		switch {
		case region.Label == layout.LabelPageHeader:
			headers = mergeOrCreateElements(headers, pageID, region, line.Text)
		case region.Label == layout.LabelPageFooter:
			footers = mergeOrCreateElements(footers, pageID, region, line.Text)
		default:
			body = mergeOrCreateElements(body, pageID, region, line.Text)
		}
	}

	elements := make([]entities.Element, 0, len(headers)+len(body)+len(footers))
	elements = append(elements, body...)
	elements = append(elements, footers...)
	elements = append(headers, elements...)
	return elements
}

// bestRegionForLine picks the region of maximum intersection area with line, accepting it
// only if that intersection covers more than MinIntersectionLayout of the line's own area.
// Failing that, it falls back to the region of minimum axis-weighted centroid distance,
// accepted only under MaximumAssignmentDistance.
func bestRegionForLine(line *textlines.Line, regions []layout.Region) (layout.Region, bool) {
	if len(regions) == 0 {
		return layout.Region{}, false
	}

	bestIdx := -1
	bestIntersection := -1.0
	for i, r := range regions {
		inter := r.BBox.Intersection(line.BBox)
		if inter > bestIntersection {
			bestIntersection = inter
			bestIdx = i
		}
	}
	lineArea := line.BBox.Area()
	if lineArea > 0 && bestIntersection/lineArea > MinIntersectionLayout {
		return regions[bestIdx], true
	}

	bestIdx = -1
	bestDistance := -1.0
	for i, r := range regions {
		d := r.BBox.Distance(line.BBox, LayoutDistanceXWeight, LayoutDistanceYWeight)
		if bestIdx == -1 || d < bestDistance {
			bestDistance = d
			bestIdx = i
		}
	}
	if bestIdx >= 0 && bestDistance < MaximumAssignmentDistance {
		return regions[bestIdx], true
	}
	return layout.Region{}, false
}

// mergeOrCreateElements finds an existing element in bucket anchored to region's
// layout_block_id and appends text to it, or creates a new element for the region.
func mergeOrCreateElements(bucket []entities.Element, pageID int, region layout.Region, text string) []entities.Element {
	for i := range bucket {
		if bucket[i].LayoutBlockID == region.ID {
			bucket[i].PushLine(text)
			return bucket
		}
	}
	el := entities.NewElementFromLayoutBlock(0, pageID, region.ID, kindForLabel(region.Label), region.BBox)
	el.PushLine(text)
	return append(bucket, el)
}

// mergeRemaining inserts unmatched layout regions (those whose id never appears as an
// element's layout_block_id) into elements, each at the index of its nearest element by
// axis-weighted centroid distance across the whole combined headers++body++footers list.
// Ties keep the first (lowest-index) minimum, matching Rust's stable min_by.
func mergeRemaining(elements []entities.Element, pageID int, unmerged []layout.Region) []entities.Element {
	for _, region := range unmerged {
		if len(elements) == 0 {
			el := entities.NewElementFromLayoutBlock(0, pageID, region.ID, kindForLabel(region.Label), region.BBox)
			elements = append(elements, el)
			continue
		}
		closest := 0
		bestDistance := -1.0
		for i, el := range elements {
			d := el.BBox.Distance(region.BBox, LayoutDistanceXWeight, LayoutDistanceYWeight)
			if bestDistance < 0 || d < bestDistance {
				bestDistance = d
				closest = i
			}
		}
		el := entities.NewElementFromLayoutBlock(0, pageID, region.ID, kindForLabel(region.Label), region.BBox)
		elements = insertAt(elements, closest, el)
	}
	return elements
}

func insertAt(elements []entities.Element, idx int, el entities.Element) []entities.Element {
	elements = append(elements, entities.Element{})
	copy(elements[idx+1:], elements[idx:])
	elements[idx] = el
	return elements
}

// unmergedRegions returns the regions whose id never appears as any element's
// LayoutBlockID.
func unmergedRegions(elements []entities.Element, regions []layout.Region) []layout.Region {
	matched := make(map[int]bool, len(elements))
	for _, el := range elements {
		matched[el.LayoutBlockID] = true
	}
	out := make([]layout.Region, 0)
	for _, r := range regions {
		if !matched[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// BuildPageElements runs the full line-to-region fusion for one page: matches lines to
// regions, merges same-region lines into elements, then inserts any region that matched no
// line at all as its own element at the position nearest an already-assembled one.
// Elements are returned with freshly assigned sequential IDs in final order.
func BuildPageElements(pageID int, lines []*textlines.Line, regions []layout.Region) []entities.Element {
	elements := mergeLinesLayout(pageID, lines, regions)
	remaining := unmergedRegions(elements, regions)
	elements = mergeRemaining(elements, pageID, remaining)
	for i := range elements {
		elements[i].ID = i
	}
	return elements
}
