package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"50000", 50000, true},
		{"50,000", 50000, true},
		{" 1,200원 ", 1200, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"12.5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"원", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatWon(t *testing.T) {
	cases := map[int64]string{
		0:        "0원",
		999:      "999원",
		1000:     "1,000원",
		1234567:  "1,234,567원",
		-50000:   "-50,000원",
		100000:   "100,000원",
	}
	for in, want := range cases {
		if got := FormatWon(in); got != want {
			t.Errorf("FormatWon(%d) = %s, want %s", in, got, want)
		}
	}
}

func TestFormatShort(t *testing.T) {
	cases := map[int64]string{
		900:      "900",
		50000:    "50K",
		1000000:  "1M",
		1500000:  "1.5M",
		-2000000: "-2M",
	}
	for in, want := range cases {
		if got := FormatShort(in); got != want {
			t.Errorf("FormatShort(%d) = %s, want %s", in, got, want)
		}
	}
}

func TestRounding(t *testing.T) {
	if got := roundRatio(5, 2); got != 3 {
		t.Errorf("roundRatio(5,2) = %d", got)
	}
	if got := roundRatio(10, 3); got != 3 {
		t.Errorf("roundRatio(10,3) = %d", got)
	}
	// half up, not away from zero
	if got := percentOf(-25, 1000); got != -2 {
		t.Errorf("percentOf(-25,1000) = %d, want -2", got)
	}
	// exact decimal half-up: 29*100/200 is 14.5, never 14.4999
	if got := percentOf(29, 200); got != 15 {
		t.Errorf("percentOf(29,200) = %d, want 15", got)
	}
	if got := percentOf(-29, 200); got != -14 {
		t.Errorf("percentOf(-29,200) = %d, want -14", got)
	}
	if got := ceilRatio(300000, 4); got != 75000 {
		t.Errorf("ceilRatio = %d", got)
	}
	if got := ceilRatio(100001, 4); got != 25001 {
		t.Errorf("ceilRatio = %d", got)
	}
}
