package titles

import "testing"

func TestClusterLevelsEmptyWhenTooFewHeadings(t *testing.T) {
	headings := []Heading{{PageID: 0, ElementID: 0, Height: 20}}
	levels := ClusterLevels(headings)
	if len(levels) != 0 {
		t.Fatalf("expected empty map for a handful of headings, got %+v", levels)
	}
}

func TestClusterLevelsTallestGetsLevelOne(t *testing.T) {
	var headings []Heading
	id := 0
	for i := 0; i < 8; i++ {
		headings = append(headings, Heading{PageID: 0, ElementID: id, Height: 30})
		id++
	}
	for i := 0; i < 8; i++ {
		headings = append(headings, Heading{PageID: 0, ElementID: id, Height: 12})
		id++
	}
	levels := ClusterLevels(headings)
	if len(levels) != len(headings) {
		t.Fatalf("expected a level for every heading, got %d of %d", len(levels), len(headings))
	}
	for _, h := range headings[:8] {
		if levels[Key{PageID: h.PageID, ElementID: h.ElementID}] != 1 {
			t.Errorf("expected tallest heading cluster at level 1, got %d", levels[Key{h.PageID, h.ElementID}])
		}
	}
	shortLevel := levels[Key{PageID: 0, ElementID: 8}]
	if shortLevel <= 1 {
		t.Errorf("expected shorter heading cluster below level 1, got %d", shortLevel)
	}
}

func TestLevelsFromCentroidsMergesCloseCentroids(t *testing.T) {
	// 20 and 19 are within TitleMergeThreshold of each other (19 >= 0.7*20): same level.
	// 5 is well below 0.7*19: a new, deeper level.
	centroids := []float64{20, 19, 5}
	levels := levelsFromCentroids(centroids)
	if levels[0] != levels[1] {
		t.Errorf("expected close centroids to share a level, got %d and %d", levels[0], levels[1])
	}
	if levels[2] <= levels[0] {
		t.Errorf("expected the much-shorter centroid at a deeper level, got %d vs %d", levels[2], levels[0])
	}
}
