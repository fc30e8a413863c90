package sailthru

import "testing"

func TestToCents(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int64
	}{
		{18.99, 1899},
		{-5.0, 500},
		{nil, 0},
		{"18.99", 1899},
		{"junk", 0},
		{0.005, 1},
		{10, 1000},
	}
	for _, tc := range cases {
		if got := ToCents(tc.in); got != tc.want {
			t.Fatalf("ToCents(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
