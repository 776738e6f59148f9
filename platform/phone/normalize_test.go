package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"(202) 456-1111", "+12024561111"},
		{"202-456-1111", "+12024561111"},
		{"+31 6 12345678", "+31612345678"},
		{"  ", ""},
		{"not-a-number", "not-a-number"},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.input); got != tc.want {
			t.Fatalf("NormalizeE164(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
