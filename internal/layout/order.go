/**
 * Reading-order sort for the flat degradation path.
 */

package layout

import "sort"

// SortByReadingOrder returns the segments ordered top-to-bottom then
// left-to-right by bounding-box origin. Segments without usable geometry are
// keyed at the origin. The sort is stable, so equal keys (including all
// invalid-geometry segments) keep their input order. The input slice is not
// modified.
func SortByReadingOrder(segments []Segment) []Segment {
	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		yi, xi := readingKey(sorted[i])
		yj, xj := readingKey(sorted[j])
		if yi != yj {
			return yi < yj
		}
		return xi < xj
	})
	return sorted
}

func readingKey(s Segment) (float64, float64) {
	b, ok := s.Bounds()
	if !ok {
		return 0, 0
	}
	return b.MinY, b.MinX
}
