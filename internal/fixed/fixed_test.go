package fixed

import "testing"

func TestExpand5To6Zero(t *testing.T) {
	if got := Expand5To6(0); got != 0 {
		t.Fatalf("Expand5To6(0) = %d, want 0", got)
	}
}

func TestExpand5To6Max(t *testing.T) {
	if got := Expand5To6(31); got != 63 {
		t.Fatalf("Expand5To6(31) = %d, want 63", got)
	}
}

func TestExpand5To6Monotonic(t *testing.T) {
	prev := uint32(0)
	for c := uint32(0); c <= 31; c++ {
		got := Expand5To6(c)
		if got < prev {
			t.Fatalf("Expand5To6(%d) = %d is less than Expand5To6(%d) = %d", c, got, c-1, prev)
		}
		if got > 63 {
			t.Fatalf("Expand5To6(%d) = %d exceeds 63", c, got)
		}
		prev = got
	}
}

func TestClamp(t *testing.T) {
	cases := []struct {
		v, lo, hi, want int32
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}
	for _, c := range cases {
		if got := Clamp(c.v, c.lo, c.hi); got != c.want {
			t.Fatalf("Clamp(%d, %d, %d) = %d, want %d", c.v, c.lo, c.hi, got, c.want)
		}
	}
}
