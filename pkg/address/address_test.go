package address_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-attestform/pkg/address"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "full address", in: "0x1234567890abcdef1234567890abcdef12345678", want: "0x1234...5678"},
		{name: "minimum length", in: "0x12345678", want: "0x1234...5678"},
		{name: "short input unchanged", in: "0x1234", want: "0x1234"},
		{name: "empty", in: "", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := address.Format(tc.in); got != tc.want {
				t.Fatalf("Format(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFormat_PrefixSuffixProperty(t *testing.T) {
	for n := address.MinFormatLength; n <= 42; n++ {
		s := "0x" + strings.Repeat("ab", 21)[:n-2]
		want := s[:6] + "..." + s[len(s)-4:]
		if got := address.Format(s); got != want {
			t.Fatalf("len %d: got %q want %q", n, got, want)
		}
	}
}

func TestValid(t *testing.T) {
	valid := []string{
		"0xcA11bde05977b3631167028862bE2a173976CA11",
		"0x0000000000000000000000000000000000000000",
	}
	for _, v := range valid {
		if !address.Valid(v) {
			t.Fatalf("expected %q to be valid", v)
		}
	}

	invalid := []string{
		"",
		"0x",
		"cA11bde05977b3631167028862bE2a173976CA11",
		"0xcA11bde05977b3631167028862bE2a173976CA1",
		"0xcA11bde05977b3631167028862bE2a173976CA11ff",
		"0xzz11bde05977b3631167028862bE2a173976CA11",
	}
	for _, v := range invalid {
		if address.Valid(v) {
			t.Fatalf("expected %q to be invalid", v)
		}
	}
}
