package facekit

import (
	"math"
	"testing"
)

func TestPointArithmetic(t *testing.T) {
	p := Pt(3, 4)
	q := Pt(1, 2)

	if got := p.Add(q); got != Pt(4, 6) {
		t.Errorf("Add = %v, want (4,6)", got)
	}
	if got := p.Sub(q); got != Pt(2, 2) {
		t.Errorf("Sub = %v, want (2,2)", got)
	}
	if got := p.Mul(2); got != Pt(6, 8) {
		t.Errorf("Mul = %v, want (6,8)", got)
	}
	if got := Pt(0, 0).Dist(p); math.Abs(got-5) > 1e-12 {
		t.Errorf("Dist = %v, want 5", got)
	}
}

func TestInstanceCenter(t *testing.T) {
	inst, _, _ := newTestInstance(t, "face.center", &testHost{})
	if got := inst.Center(); got != Pt(8, 8) {
		t.Errorf("Center = %v, want (8,8)", got)
	}
}
