// Package address holds helpers for displaying and checking hex account
// addresses ("0x" followed by 40 hex characters).
package address

import "strings"

const (
	prefixLen = 6
	suffixLen = 4
	// MinFormatLength is the shortest input Format truncates. Shorter strings
	// are returned unchanged.
	MinFormatLength = prefixLen + suffixLen

	hexLen = 40
)

// Format shortens an address for display as "<first 6>...<last 4>", e.g.
// "0x1234...cdef". Inputs shorter than MinFormatLength are returned as-is.
func Format(addr string) string {
	if len(addr) < MinFormatLength {
		return addr
	}
	return addr[:prefixLen] + "..." + addr[len(addr)-suffixLen:]
}

// Valid reports whether addr is "0x" followed by exactly 40 hex characters.
// Checksum casing is not verified.
func Valid(addr string) bool {
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		return false
	}
	body := addr[2:]
	if len(body) != hexLen {
		return false
	}
	for i := 0; i < len(body); i++ {
		if !isHex(body[i]) {
			return false
		}
	}
	return true
}

func isHex(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	default:
		return false
	}
}
