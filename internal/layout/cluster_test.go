package layout

import (
	"fmt"
	"testing"
)

// box returns a rectangular polygon with the given bounds.
func box(minX, minY, maxX, maxY float64) []Point {
	return []Point{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}
}

// seg builds a valid segment whose bounding box centers at (cx, cy) with the
// given height and a fixed width of 20.
func seg(text string, cx, cy, height float64) Segment {
	return Segment{
		Polygon: box(cx-10, cy-height/2, cx+10, cy+height/2),
		Text:    text,
	}
}

func lineTexts(lines []Line) [][]string {
	out := make([][]string, len(lines))
	for i, line := range lines {
		for _, s := range line {
			out[i] = append(out[i], s.Text)
		}
	}
	return out
}

func TestGroupIntoLinesMergesNearbyRows(t *testing.T) {
	// Heights of 10 give lineHeight=10 and yThreshold=4; centers at 10 and
	// 12 differ by 2 and must merge into one line, left to right.
	segments := []Segment{
		seg("world", 60, 12, 10),
		seg("hello", 20, 10, 10),
	}

	lines := GroupIntoLines(segments)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %v", len(lines), lineTexts(lines))
	}
	if lines[0][0].Text != "hello" || lines[0][1].Text != "world" {
		t.Errorf("expected [hello world], got %v", lineTexts(lines)[0])
	}
}

func TestGroupIntoLinesSplitsDistantRows(t *testing.T) {
	segments := []Segment{
		seg("bottom", 20, 50, 10),
		seg("top", 20, 10, 10),
	}

	lines := GroupIntoLines(segments)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lineTexts(lines))
	}
	if lines[0][0].Text != "top" || lines[1][0].Text != "bottom" {
		t.Errorf("expected top before bottom, got %v", lineTexts(lines))
	}
}

func TestGroupIntoLinesThresholdBoundary(t *testing.T) {
	// lineHeight 10 gives yThreshold 4. A center-y gap of exactly 4 merges;
	// anything beyond splits.
	tests := []struct {
		name      string
		secondY   float64
		wantLines int
	}{
		{"exactly at threshold", 14, 1},
		{"just past threshold", 14.1, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			segments := []Segment{
				seg("a", 20, 10, 10),
				seg("b", 20, tc.secondY, 10),
			}
			lines := GroupIntoLines(segments)
			if len(lines) != tc.wantLines {
				t.Errorf("got %d lines, want %d", len(lines), tc.wantLines)
			}
		})
	}
}

func TestGroupIntoLinesFirstMemberFixesReference(t *testing.T) {
	// Reference row stays at the first member's center. The third segment is
	// within threshold of the second but not the first, so it starts a new
	// line rather than chaining.
	segments := []Segment{
		seg("a", 10, 10, 10),
		seg("b", 30, 13, 10),
		seg("c", 50, 16, 10),
	}

	lines := GroupIntoLines(segments)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lineTexts(lines))
	}
	got := lineTexts(lines)
	if len(got[0]) != 2 || got[0][0] != "a" || got[0][1] != "b" {
		t.Errorf("first line = %v, want [a b]", got[0])
	}
	if len(got[1]) != 1 || got[1][0] != "c" {
		t.Errorf("second line = %v, want [c]", got[1])
	}
}

func TestGroupIntoLinesMedianHeightRobustToOutliers(t *testing.T) {
	// A single tall logo box must not widen the merge tolerance: the median
	// of {10, 10, 10, 200} heights keeps lineHeight at 10.
	segments := []Segment{
		seg("a", 10, 100, 10),
		seg("b", 40, 100, 10),
		seg("c", 10, 120, 10),
		seg("logo", 200, 30, 200),
	}

	lines := GroupIntoLines(segments)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(lines), lineTexts(lines))
	}
}

func TestGroupIntoLinesInvalidGeometryJoinsOpenLine(t *testing.T) {
	// Invalid-geometry segments sort first and open a line that does not
	// anchor a row; the first valid segment joins it and sets the reference.
	segments := []Segment{
		seg("valid", 20, 10, 10),
		{Text: "ghost1"},
		{Text: "ghost2"},
	}

	lines := GroupIntoLines(segments)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %v", len(lines), lineTexts(lines))
	}
	got := lineTexts(lines)[0]
	if len(got) != 3 || got[0] != "ghost1" || got[1] != "ghost2" || got[2] != "valid" {
		t.Errorf("line = %v, want [ghost1 ghost2 valid]", got)
	}
}

func TestGroupIntoLinesAllInvalidGeometry(t *testing.T) {
	segments := []Segment{
		{Text: "first"},
		{Text: "second"},
		{Text: "third"},
	}

	lines := GroupIntoLines(segments)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	got := lineTexts(lines)[0]
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line = %v, want %v", got, want)
		}
	}
}

func TestGroupIntoLinesEmptyInput(t *testing.T) {
	if lines := GroupIntoLines(nil); lines != nil {
		t.Errorf("expected nil for empty input, got %v", lines)
	}
}

func TestGroupIntoLinesPreservesEverySegment(t *testing.T) {
	// Total coverage: a mix of valid, invalid, and overlapping segments must
	// all appear exactly once across the output lines.
	segments := []Segment{
		seg("a", 10, 10, 8),
		{Text: "no-geom"},
		seg("b", 30, 11, 8),
		seg("c", 10, 40, 8),
		{Polygon: nil, Text: "also-no-geom"},
		seg("d", 50, 40.5, 8),
	}

	lines := GroupIntoLines(segments)
	seen := map[string]int{}
	total := 0
	for _, line := range lines {
		for _, s := range line {
			seen[s.Text]++
			total++
		}
	}
	if total != len(segments) {
		t.Fatalf("got %d segments across lines, want %d", total, len(segments))
	}
	for _, s := range segments {
		if seen[s.Text] != 1 {
			t.Errorf("segment %q appeared %d times", s.Text, seen[s.Text])
		}
	}
}

func TestEstimateLineHeight(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		want     float64
	}{
		{
			name:     "no valid geometry uses default",
			segments: []Segment{{Text: "x"}},
			want:     10.0,
		},
		{
			name:     "median below floor is clamped",
			segments: []Segment{seg("a", 10, 10, 2), seg("b", 10, 20, 3)},
			want:     5.0,
		},
		{
			name: "odd count takes middle value",
			segments: []Segment{
				seg("a", 10, 10, 8),
				seg("b", 10, 20, 12),
				seg("c", 10, 30, 40),
			},
			want: 12.0,
		},
		{
			name: "even count averages middle pair",
			segments: []Segment{
				seg("a", 10, 10, 10),
				seg("b", 10, 20, 14),
			},
			want: 12.0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := estimateLineHeight(tc.segments); got != tc.want {
				t.Errorf("estimateLineHeight() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGroupIntoLinesDoesNotMutateInput(t *testing.T) {
	segments := []Segment{
		seg("b", 10, 50, 10),
		seg("a", 10, 10, 10),
	}
	GroupIntoLines(segments)
	if segments[0].Text != "b" || segments[1].Text != "a" {
		t.Errorf("input slice was reordered: %v", []string{segments[0].Text, segments[1].Text})
	}
}

func ExampleGroupIntoLines() {
	segments := []Segment{
		seg("Invoice", 30, 10, 10),
		seg("2024-001", 90, 11, 10),
		seg("Total: 120.00", 50, 40, 10),
	}
	for _, line := range GroupIntoLines(segments) {
		texts := make([]string, len(line))
		for i, s := range line {
			texts[i] = s.Text
		}
		fmt.Println(texts)
	}
	// Output:
	// [Invoice 2024-001]
	// [Total: 120.00]
}
