/**
 * Segment geometry for layout reconstruction.
 *
 * Bounding boxes and derived geometry are computed from whatever points the
 * detection engine gave us. A segment whose polygon yields no usable point has
 * no geometry at all - that state is tracked explicitly and is distinct from a
 * zero-area box.
 */

package layout

// Point is a single 2D polygon vertex in image pixel coordinates.
type Point struct {
	X float64
	Y float64
}

// BoundingBox is the axis-aligned rectangle enclosing a segment's polygon.
type BoundingBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Geometry is the clustering view of a bounding box: center point and height.
type Geometry struct {
	CenterX float64
	CenterY float64
	Height  float64
}

// Bounds computes the bounding box of a segment's polygon. The second return
// value is false when the segment has no usable geometry (missing or fully
// malformed polygon); in that case the box must not be used.
func (s Segment) Bounds() (BoundingBox, bool) {
	if len(s.Polygon) == 0 {
		return BoundingBox{}, false
	}
	b := BoundingBox{
		MinX: s.Polygon[0].X,
		MinY: s.Polygon[0].Y,
		MaxX: s.Polygon[0].X,
		MaxY: s.Polygon[0].Y,
	}
	for _, p := range s.Polygon[1:] {
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
	}
	return b, true
}

// Geometry derives (centerX, centerY, height) from the segment's bounding box.
// Returns false for segments with no usable geometry.
func (s Segment) Geometry() (Geometry, bool) {
	b, ok := s.Bounds()
	if !ok {
		return Geometry{}, false
	}
	return Geometry{
		CenterX: (b.MinX + b.MaxX) / 2,
		CenterY: (b.MinY + b.MaxY) / 2,
		Height:  b.MaxY - b.MinY,
	}, true
}
