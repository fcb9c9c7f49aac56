package suggest

import "testing"

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"Alise", "Alice", 1},
		{"Alise", "Alicia", 3},
	}
	for _, tc := range cases {
		if got := Distance(tc.a, tc.b); got != tc.want {
			t.Fatalf("Distance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestNearOrdersByDistance(t *testing.T) {
	got := Near([]string{"Alicia", "Bob", "Alice"}, "Alise", Threshold("Alise"))
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %+v", got)
	}
	if got[0].Name != "Alice" || got[0].Distance != 1 || got[1].Name != "Alicia" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestNearKeepsEnumerationOrderOnTies(t *testing.T) {
	got := Near([]string{"Bax", "Bay", "Bar"}, "Baz", 1)
	if len(got) != 3 || got[0].Name != "Bax" || got[1].Name != "Bay" || got[2].Name != "Bar" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestThreshold(t *testing.T) {
	if Threshold("Bo") != 2 || Threshold("Bram") != 2 || Threshold("Alise") != 3 {
		t.Fatalf("unexpected thresholds")
	}
}
