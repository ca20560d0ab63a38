package media

import "testing"

func TestParseFocusPoint(t *testing.T) {
	cases := []struct {
		raw  string
		want FocusPoint
	}{
		{"0.25,0.75", FocusPoint{X: 0.25, Y: 0.75}},
		{"0,0", FocusPoint{}},
		{"1,1", FocusPoint{X: 1, Y: 1}},
		{" 0.5 , 0.5 ", FocusPoint{X: 0.5, Y: 0.5}},
		{"", FocusPoint{}},
		{"garbage", FocusPoint{}},
		{"0.5", FocusPoint{}},
		{"0.5,0.5,0.5", FocusPoint{}},
		{"1.5,0.5", FocusPoint{}},
		{"-0.1,0.5", FocusPoint{}},
		{"a,b", FocusPoint{}},
	}
	for _, tc := range cases {
		if got := ParseFocusPoint(tc.raw); got != tc.want {
			t.Errorf("ParseFocusPoint(%q) = %+v, want %+v", tc.raw, got, tc.want)
		}
	}
}

func TestFocusPointRoundTrip(t *testing.T) {
	orig := FocusPoint{X: 0.25, Y: 0.75}
	if got := ParseFocusPoint(orig.String()); got != orig {
		t.Errorf("round trip = %+v, want %+v", got, orig)
	}
}
