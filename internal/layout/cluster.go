/**
 * Line clustering: group reading-ordered segments into visual text lines.
 *
 * The threshold for "same line" adapts to the document: it is derived from the
 * median segment height, so dense small print and sparse large headings both
 * cluster correctly without tuning.
 */

package layout

import "sort"

// Line is an ordered group of segments that render on the same visual row.
type Line []Segment

const (
	// thresholdRatio scales line height into the vertical merge tolerance.
	thresholdRatio = 0.4
	// minLineHeight floors the adaptive line height for degenerate boxes.
	minLineHeight = 5.0
	// defaultLineHeight applies when no segment has usable geometry.
	defaultLineHeight = 10.0
)

// GroupIntoLines clusters segments into visual lines.
//
// Segments are sorted by (centerY, centerX) with invalid geometry keyed at the
// origin, then swept top to bottom: a segment joins the current line when its
// vertical center lies within 0.4 line heights of the line's reference row.
// The reference row is fixed by the first segment with valid geometry in the
// line and does not drift as members accumulate. Invalid-geometry segments
// join whatever line is open, or open one themselves.
func GroupIntoLines(segments []Segment) []Line {
	if len(segments) == 0 {
		return nil
	}

	yThreshold := thresholdRatio * estimateLineHeight(segments)

	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		gi, gj := clusterKey(sorted[i]), clusterKey(sorted[j])
		if gi.CenterY != gj.CenterY {
			return gi.CenterY < gj.CenterY
		}
		return gi.CenterX < gj.CenterX
	})

	var lines []Line
	var current Line
	currentY := 0.0
	currentHasRef := false

	for _, seg := range sorted {
		g, ok := seg.Geometry()
		if !ok {
			if current == nil {
				current = Line{seg}
			} else {
				current = append(current, seg)
			}
			continue
		}
		switch {
		case current == nil:
			current = Line{seg}
			currentY = g.CenterY
			currentHasRef = true
		case !currentHasRef:
			// Line was opened by invalid-geometry segments; this member
			// establishes its row.
			current = append(current, seg)
			currentY = g.CenterY
			currentHasRef = true
		case abs(g.CenterY-currentY) <= yThreshold:
			current = append(current, seg)
		default:
			lines = append(lines, current)
			current = Line{seg}
			currentY = g.CenterY
			currentHasRef = true
		}
	}
	if current != nil {
		lines = append(lines, current)
	}
	return lines
}

// estimateLineHeight derives the adaptive line height: the median height of
// segments with valid geometry, floored at minLineHeight, or the default when
// nothing on the page has usable geometry.
func estimateLineHeight(segments []Segment) float64 {
	heights := make([]float64, 0, len(segments))
	for _, seg := range segments {
		if g, ok := seg.Geometry(); ok {
			heights = append(heights, g.Height)
		}
	}
	if len(heights) == 0 {
		return defaultLineHeight
	}
	m := median(heights)
	if m < minLineHeight {
		return minLineHeight
	}
	return m
}

// median returns the statistical median; even-length input averages the two
// middle values. The input slice is sorted in place.
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

// clusterKey is the sort key for clustering order. Segments without usable
// geometry sort at the origin so they surface first, deterministically.
func clusterKey(s Segment) Geometry {
	g, ok := s.Geometry()
	if !ok {
		return Geometry{}
	}
	return g
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
