package geom

import "testing"

func TestRectAt(t *testing.T) {
	r := RectAt(2.5, 6, 1, 2)
	want := Rect{MinX: 2, MaxX: 3, MinZ: 5, MaxZ: 7}
	if r != want {
		t.Errorf("RectAt() = %+v, want %+v", r, want)
	}
	if r.Width() != 1 {
		t.Errorf("Width() = %v, want 1", r.Width())
	}
	if r.Depth() != 2 {
		t.Errorf("Depth() = %v, want 2", r.Depth())
	}
	if r.CenterX() != 2.5 || r.CenterZ() != 6 {
		t.Errorf("center = (%v, %v), want (2.5, 6)", r.CenterX(), r.CenterZ())
	}
}

func TestRectOverlaps(t *testing.T) {
	const eps = 0.05
	base := Rect{MinX: 0, MaxX: 2, MinZ: 0, MaxZ: 4}

	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{
			name:  "identical",
			other: base,
			want:  true,
		},
		{
			name:  "contained",
			other: Rect{MinX: 0.5, MaxX: 1.5, MinZ: 1, MaxZ: 2},
			want:  true,
		},
		{
			name:  "shares edge on X",
			other: Rect{MinX: 2, MaxX: 3, MinZ: 0, MaxZ: 4},
			want:  false,
		},
		{
			name:  "shares edge on Z",
			other: Rect{MinX: 0, MaxX: 2, MinZ: 4, MaxZ: 5},
			want:  false,
		},
		{
			name:  "shares corner",
			other: Rect{MinX: 2, MaxX: 3, MinZ: 4, MaxZ: 5},
			want:  false,
		},
		{
			name:  "overlap below epsilon",
			other: Rect{MinX: 1.97, MaxX: 3, MinZ: 0, MaxZ: 4},
			want:  false,
		},
		{
			name:  "overlap above epsilon",
			other: Rect{MinX: 1.5, MaxX: 3, MinZ: 0, MaxZ: 4},
			want:  true,
		},
		{
			name:  "overlap on X only",
			other: Rect{MinX: 0, MaxX: 2, MinZ: 10, MaxZ: 12},
			want:  false,
		},
		{
			name:  "disjoint",
			other: Rect{MinX: 5, MaxX: 6, MinZ: 5, MaxZ: 6},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other, eps); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(base, eps); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{MinX: -1, MaxX: 1, MinZ: -1, MaxZ: 1}
	tests := []struct {
		name string
		x, z float64
		want bool
	}{
		{"centre", 0, 0, true},
		{"edge", 1, 0, true},
		{"corner", -1, -1, true},
		{"outside x", 1.01, 0, false},
		{"outside z", 0, -2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.z); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.z, got, tt.want)
			}
		})
	}
}

func TestBox(t *testing.T) {
	b := Box{Rect: RectAt(0, 0, 2, 2), MinY: 0.25, MaxY: 1.25}
	if b.Height() != 1 {
		t.Errorf("Height() = %v, want 1", b.Height())
	}
	if got := b.Min(); got[0] != -1 || got[1] != 0.25 || got[2] != -1 {
		t.Errorf("Min() = %v", got)
	}
	if got := b.Max(); got[0] != 1 || got[1] != 1.25 || got[2] != 1 {
		t.Errorf("Max() = %v", got)
	}
}
