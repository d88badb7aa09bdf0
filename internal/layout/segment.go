/**
 * Canonical segment type and raw-result normalization.
 *
 * Detection engines disagree on result schema across versions: some return an
 * ordered list of [polygon, (text, confidence)] pairs, newer ones return a
 * dict of parallel arrays (dt_polys + rec_texts + rec_scores). This file is
 * the single seam that absorbs that variance; everything downstream operates
 * on []Segment and never special-cases raw formats.
 */

package layout

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Segment is one detected text region: a polygon (possibly empty after
// normalization, meaning invalid geometry), the recognized text, and the
// recognition confidence passed through untouched.
type Segment struct {
	Polygon    []Point
	Text       string
	Confidence float64
}

// NormalizePage converts a raw per-page engine result into canonical segments.
//
// Accepted shapes:
//   - an ordered sequence of [polygon, (text, confidence)] entries
//   - a map with parallel arrays under dt_polys/dt_boxes/boxes,
//     rec_texts/texts and optional rec_scores/scores
//
// Parallel arrays are paired index-by-index up to the shorter of the polygon
// and text arrays; if either is absent or empty the page has no segments.
// Malformed entries degrade to segments with invalid geometry or empty text;
// this function never fails.
func NormalizePage(raw any) []Segment {
	switch v := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		return normalizeParallelArrays(v)
	case []any:
		segs := make([]Segment, 0, len(v))
		for _, entry := range v {
			segs = append(segs, normalizePair(entry))
		}
		return segs
	case []Segment:
		return v
	default:
		return nil
	}
}

// normalizeParallelArrays pairs the i-th polygon with the i-th text and, when
// present, the i-th score. Entries beyond the shorter array are dropped here,
// at the normalization boundary, rather than carried as malformed segments.
func normalizeParallelArrays(d map[string]any) []Segment {
	polys := firstSlice(d, "dt_polys", "dt_boxes", "boxes")
	texts := firstSlice(d, "rec_texts", "texts")
	scores := firstSlice(d, "rec_scores", "scores")
	if len(polys) == 0 || len(texts) == 0 {
		return nil
	}
	n := len(polys)
	if len(texts) < n {
		n = len(texts)
	}
	segs := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		seg := Segment{
			Polygon: convertPolygon(polys[i]),
			Text:    textValue(texts[i]),
		}
		if i < len(scores) {
			if f, ok := toFloat(scores[i]); ok {
				seg.Confidence = f
			}
		}
		segs = append(segs, seg)
	}
	return segs
}

// normalizePair decodes one [polygon, payload] entry. The payload is usually
// (text, confidence) but may be a bare string or missing entirely.
func normalizePair(entry any) Segment {
	parts, ok := entry.([]any)
	if !ok || len(parts) == 0 {
		return Segment{}
	}
	seg := Segment{Polygon: convertPolygon(parts[0])}
	if len(parts) < 2 {
		return seg
	}
	switch payload := parts[1].(type) {
	case string:
		seg.Text = payload
	case []any:
		if len(payload) > 0 {
			seg.Text = textValue(payload[0])
			if len(payload) > 1 {
				if f, ok := toFloat(payload[1]); ok {
					seg.Confidence = f
				}
			}
		}
	}
	return seg
}

// convertPolygon extracts the convertible points from a raw polygon value. A
// point contributes only if it yields two numeric coordinates; everything
// else is skipped, not fatal. A nil or empty result marks invalid geometry.
func convertPolygon(raw any) []Point {
	pts, ok := raw.([]any)
	if !ok || len(pts) == 0 {
		return nil
	}
	poly := make([]Point, 0, len(pts))
	for _, p := range pts {
		coords, ok := p.([]any)
		if !ok || len(coords) < 2 {
			continue
		}
		x, okX := toFloat(coords[0])
		y, okY := toFloat(coords[1])
		if !okX || !okY {
			continue
		}
		poly = append(poly, Point{X: x, Y: y})
	}
	if len(poly) == 0 {
		return nil
	}
	return poly
}

// textValue extracts a string: plain strings pass through, a non-empty
// sequence contributes its first element, and non-string values are
// stringified the way engines that emit bare numbers expect. Nil and empty
// sequences yield the empty string.
func textValue(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		if len(v) == 0 || v[0] == nil {
			return ""
		}
		if s, ok := v[0].(string); ok {
			return s
		}
		return fmt.Sprint(v[0])
	default:
		return fmt.Sprint(v)
	}
}

// toFloat attempts a permissive numeric conversion, accepting integer and
// floating values in native or textual form.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// firstSlice returns the first present slice value among the given keys.
func firstSlice(d map[string]any, keys ...string) []any {
	for _, k := range keys {
		if v, ok := d[k].([]any); ok && len(v) > 0 {
			return v
		}
	}
	return nil
}
