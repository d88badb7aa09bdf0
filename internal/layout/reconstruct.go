/**
 * Reconstruction pipeline: segments in, page text out.
 *
 * This is the only entry point callers need. It never returns an error and
 * never panics; when clustering cannot produce lines the page degrades to a
 * flat reading-order join instead of failing the document.
 */

package layout

// Reconstruct converts a page of segments into layout-aware text. The second
// return value reports degradation: true means line clustering was bypassed
// and the flat fallback produced the text.
func Reconstruct(segments []Segment) (text string, degraded bool) {
	if len(segments) == 0 {
		return "", false
	}
	ordered := SortByReadingOrder(segments)
	if text, ok := reconstructGrouped(ordered); ok {
		return text, false
	}
	return AssembleFlat(ordered), true
}

// ReconstructText is Reconstruct without the degradation flag, for callers
// that only want the text.
func ReconstructText(segments []Segment) string {
	text, _ := Reconstruct(segments)
	return text
}

// reconstructGrouped runs the clustering path. It reports false when grouping
// produced no lines for non-empty input or panicked; either way the caller
// falls back to the flat path.
func reconstructGrouped(segments []Segment) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			text, ok = "", false
		}
	}()
	lines := GroupIntoLines(segments)
	if len(lines) == 0 {
		return "", false
	}
	return AssembleLines(lines), true
}
