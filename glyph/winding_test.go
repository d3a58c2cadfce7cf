package glyph

import "testing"

func TestSignedArea(t *testing.T) {
	tests := []struct {
		name string
		ring []ringPoint
		want float64
	}{
		{
			name: "ccw unit square",
			ring: []ringPoint{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
			want: 2,
		},
		{
			name: "cw unit square",
			ring: []ringPoint{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}},
			want: -2,
		},
		{
			name: "degenerate line",
			ring: []ringPoint{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
			want: 0,
		},
		{
			name: "single point",
			ring: []ringPoint{{X: 3, Y: 4}},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := signedArea(tt.ring); got != tt.want {
				t.Errorf("signedArea() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsCCW(t *testing.T) {
	ccw := []ringPoint{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	if !isCCW(ccw) {
		t.Error("isCCW(ccw ring) = false, want true")
	}

	cw := []ringPoint{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}}
	if isCCW(cw) {
		t.Error("isCCW(cw ring) = true, want false")
	}

	// Zero-area rings classify as counter-clockwise.
	flat := []ringPoint{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}}
	if !isCCW(flat) {
		t.Error("isCCW(zero-area ring) = false, want true")
	}
}
