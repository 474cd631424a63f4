package geometry

import "testing"

func box(x0, y0, x1, y1 float64) BBox { return BBox{X0: x0, Y0: y0, X1: x1, Y1: y1} }

func TestIntersection(t *testing.T) {
	b1 := box(0, 0, 2, 2)
	b2 := box(1, 1, 3, 3)
	b3 := box(2, 2, 4, 4)
	b4 := box(3, 3, 5, 5)
	b5 := box(-1, -1, 1, 1)
	b6 := box(0.5, 0.5, 1.5, 1.5)

	if got := b1.Intersection(b3); got != 0 {
		t.Errorf("adjacent boxes should not intersect, got %v", got)
	}
	if got := b1.Intersection(b4); got != 0 {
		t.Errorf("disjoint boxes should not intersect, got %v", got)
	}
	if got := b5.Intersection(b1); got != 1 {
		t.Errorf("expected overlap area 1, got %v", got)
	}
	if got := b1.Intersection(b2); got != 1 {
		t.Errorf("expected overlap area 1, got %v", got)
	}
	if got := b1.Intersection(b6); got != b6.Area() {
		t.Errorf("contained box intersection should equal its own area")
	}
	if got := b1.Intersection(b1); got != b1.Area() {
		t.Errorf("self intersection should equal own area")
	}
}

func TestUnion(t *testing.T) {
	b1 := box(0, 0, 2, 2)
	b3 := box(2, 2, 4, 4)
	b4 := box(3, 3, 5, 5)
	b5 := box(-1, -1, 1, 1)
	b2 := box(1, 1, 3, 3)

	if got := b1.Union(b3); got != 8 {
		t.Errorf("want 8, got %v", got)
	}
	if got := b1.Union(b4); got != 8 {
		t.Errorf("want 8, got %v", got)
	}
	if got := b5.Union(b1); got != 7 {
		t.Errorf("want 7, got %v", got)
	}
	if got := b1.Union(b2); got != 7 {
		t.Errorf("want 7, got %v", got)
	}
	if got := b1.Union(b1); got != b1.Area() {
		t.Errorf("self union should equal own area")
	}
}

func TestIoU(t *testing.T) {
	b1 := box(0, 0, 2, 2)
	b2 := box(1, 1, 3, 3)
	b3 := box(2, 2, 4, 4)
	b4 := box(3, 3, 5, 5)
	b6 := box(0.5, 0.5, 1.5, 1.5)

	if got := b1.IoU(b1); got != 1 {
		t.Errorf("self iou should be 1, got %v", got)
	}
	if got := b1.IoU(b4); got != 0 {
		t.Errorf("disjoint iou should be 0, got %v", got)
	}
	if got := b1.IoU(b3); got != 0 {
		t.Errorf("adjacent iou should be 0, got %v", got)
	}
	if got, want := b1.IoU(b2), 1.0/7.0; got != want {
		t.Errorf("got %v want %v", got, want)
	}
	if got, want := b1.IoU(b6), b6.Area()/b1.Area(); got != want {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestDistance(t *testing.T) {
	b1 := box(0, 0, 2, 2)
	b2 := box(3, 3, 5, 5)
	b3 := box(0, 2, 2, 4)

	if got, want := b1.Distance(b2, 1, 1), 18.0; got != want {
		t.Errorf("got %v want %v", got, want)
	}
	if got, want := b1.Distance(b3, 1, 1), 4.0; got != want {
		t.Errorf("got %v want %v", got, want)
	}
	if got := b1.Distance(b1, 1, 1); got != 0 {
		t.Errorf("self distance should be 0, got %v", got)
	}
	if got, want := b1.Distance(b2, 2, 3), 45.0; got != want {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestMergeMonotone(t *testing.T) {
	cases := []struct{ a, b BBox }{
		{box(0, 0, 1, 1), box(2, 2, 3, 3)},
		{box(0, 0, 5, 5), box(1, 1, 2, 2)},
		{box(-3, -3, -1, -1), box(0, 0, 1, 1)},
	}
	for _, c := range cases {
		m := c.a.Merge(c.b)
		if m.Area() < c.a.Area() || m.Area() < c.b.Area() {
			t.Errorf("merge(%v,%v) = %v shrank a dimension", c.a, c.b, m)
		}
	}
}

func TestRelaxedIoUContainment(t *testing.T) {
	outer := box(0, 0, 10, 10)
	inner := box(1, 1, 3, 3)
	if got := outer.RelaxedIoU(inner); got != 1 {
		t.Errorf("fully contained box should have relaxed iou 1, got %v", got)
	}
}

func TestContains(t *testing.T) {
	outer := box(0, 0, 10, 10)
	inner := box(0, 0, 10, 10)
	if !outer.Contains(inner) {
		t.Errorf("equal boxes should satisfy non-strict containment")
	}
}
