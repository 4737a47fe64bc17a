package vec

import "testing"

func TestVec3(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}

	if got := a.Up(4); got != (Vec3{X: 1, Y: 6, Z: 3}) {
		t.Errorf("Up: получено %v", got)
	}
	if got := a.Up(0); got != a {
		t.Errorf("Up(0): получено %v", got)
	}
	if a.String() != "(1,2,3)" {
		t.Errorf("String: получено %q", a.String())
	}
}
