package util

import "testing"

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"admin@example.com", "a…@e….com"},
		{"A@B.co", "a@b.co"},
		{"", ""},
		{"ab", "***"},
		{"sin-arroba-larga", "s…a"},
	}
	for _, c := range cases {
		if got := MaskEmail(c.in); got != c.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
