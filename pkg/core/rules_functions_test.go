package core

import "testing"

func TestContainsFunc(t *testing.T) {
	cases := []struct {
		hay    interface{}
		needle interface{}
		want   bool
	}{
		{"orderCompleted", "order", true},
		{"pageview", "order", false},
		{[]interface{}{"a", "b"}, "b", true},
		{[]interface{}{"a", "b"}, "c", false},
		{map[string]interface{}{"k": 1}, "k", true},
		{nil, "x", false},
	}
	for _, tc := range cases {
		got, err := containsFunc(tc.hay, tc.needle)
		if err != nil {
			t.Fatalf("contains(%v, %v): %v", tc.hay, tc.needle, err)
		}
		if got != tc.want {
			t.Fatalf("contains(%v, %v) = %v, want %v", tc.hay, tc.needle, got, tc.want)
		}
	}

	if _, err := containsFunc("only one"); err == nil {
		t.Fatal("expected arity error")
	}
}

func TestLikeFunc(t *testing.T) {
	got, err := likeFunc("orderCompleted", "order%")
	if err != nil || got != true {
		t.Fatalf("like prefix: got %v err %v", got, err)
	}
	got, err = likeFunc("orderCompleted", "x%")
	if err != nil || got != false {
		t.Fatalf("like mismatch: got %v err %v", got, err)
	}
	got, err = likeFunc("cart", "c_rt")
	if err != nil || got != true {
		t.Fatalf("like underscore: got %v err %v", got, err)
	}
}
