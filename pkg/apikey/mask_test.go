package apikey

import (
	"strings"
	"testing"
)

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "****"},
		{"a", "****"},
		{"abcd", "****"},
		{"abcde", "****bcde"},
		{"sk-live-1234567890", "****7890"},
		{"ключключ", "****ключ"},
		// Lengths count runes, so astral characters count once.
		{"😀😀😀", "****"},
		{"😀😀😀😀", "****"},
		{"sk-😀😀😀😀😀", "****😀😀😀😀"},
		{"key-1😀", "****y-1😀"},
	}

	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskProperty(t *testing.T) {
	for n := 0; n <= 12; n++ {
		key := strings.Repeat("x", n)
		if n > 0 {
			key = key[:n-1] + "Z"
		}
		got := Mask(key)
		if n <= 4 {
			if got != "****" {
				t.Errorf("len %d: got %q, want ****", n, got)
			}
			continue
		}
		if got != "****"+key[n-4:] {
			t.Errorf("len %d: got %q, want ****%s", n, got, key[n-4:])
		}
	}
}

func TestMaskURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mongodb://admin:supersecret@db:27017", "mongodb://admin:****cret@db:27017"},
		{"mongodb://db:27017", "mongodb://db:27017"},
		{"redis://user@cache:6379", "redis://user@cache:6379"},
		{"localhost:6379", "localhost:6379"},
	}

	for _, tt := range tests {
		if got := MaskURL(tt.in); got != tt.want {
			t.Errorf("MaskURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
