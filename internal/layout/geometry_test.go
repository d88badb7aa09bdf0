package layout

import "testing"

func TestBounds(t *testing.T) {
	tests := []struct {
		name    string
		polygon []Point
		want    BoundingBox
		wantOK  bool
	}{
		{
			name:    "quadrilateral",
			polygon: []Point{{0, 0}, {20, 1}, {19, 10}, {1, 9}},
			want:    BoundingBox{MinX: 0, MinY: 0, MaxX: 20, MaxY: 10},
			wantOK:  true,
		},
		{
			name:    "single point",
			polygon: []Point{{5, 7}},
			want:    BoundingBox{MinX: 5, MinY: 7, MaxX: 5, MaxY: 7},
			wantOK:  true,
		},
		{
			name:    "empty polygon",
			polygon: nil,
			wantOK:  false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, ok := Segment{Polygon: tc.polygon}.Bounds()
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && b != tc.want {
				t.Errorf("Bounds() = %+v, want %+v", b, tc.want)
			}
		})
	}
}

func TestGeometry(t *testing.T) {
	s := Segment{Polygon: []Point{{10, 20}, {30, 40}}}
	g, ok := s.Geometry()
	if !ok {
		t.Fatal("expected valid geometry")
	}
	if g.CenterX != 20 || g.CenterY != 30 || g.Height != 20 {
		t.Errorf("Geometry() = %+v", g)
	}

	if _, ok := (Segment{}).Geometry(); ok {
		t.Error("empty polygon must have invalid geometry")
	}
}
