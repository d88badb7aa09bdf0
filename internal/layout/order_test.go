package layout

import "testing"

func TestSortByReadingOrder(t *testing.T) {
	segments := []Segment{
		seg("right-top", 90, 10, 10),
		seg("bottom", 10, 50, 10),
		seg("left-top", 10, 10, 10),
	}

	sorted := SortByReadingOrder(segments)
	want := []string{"left-top", "right-top", "bottom"}
	for i, w := range want {
		if sorted[i].Text != w {
			t.Errorf("sorted[%d] = %q, want %q", i, sorted[i].Text, w)
		}
	}
	if segments[0].Text != "right-top" {
		t.Error("input slice was modified")
	}
}

func TestSortByReadingOrderInvalidGeometryFirstStable(t *testing.T) {
	segments := []Segment{
		seg("positioned", 10, 10, 10),
		{Text: "ghost-a"},
		{Text: "ghost-b"},
	}

	sorted := SortByReadingOrder(segments)
	if sorted[0].Text != "ghost-a" || sorted[1].Text != "ghost-b" {
		t.Errorf("invalid-geometry segments must lead in input order, got %q then %q",
			sorted[0].Text, sorted[1].Text)
	}
}
