package mangle

import "testing"

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"foo", "foo"},
		{"FooBar", "foo_bar"},
		{"already_snake", "already_snake"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Sanitize(c.in); got != c.want {
			t.Errorf("Sanitize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeAlwaysValid(t *testing.T) {
	inputs := []string{"a::b", "A B C", "weird!!name??", "snake_case_already"}
	for _, in := range inputs {
		out := Sanitize(in)
		for i := 0; i < len(out); i++ {
			c := out[i]
			if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_') {
				t.Errorf("Sanitize(%q) = %q contains invalid byte %q", in, out, c)
			}
		}
	}
}

func TestSanitizeNoCollisionForDistinctNames(t *testing.T) {
	a := Sanitize("add::[u32, u32]")
	b := Sanitize("sub::[u32, u32]")
	if a == b {
		t.Fatalf("distinct mangled names collided after sanitizing: %q", a)
	}
}
