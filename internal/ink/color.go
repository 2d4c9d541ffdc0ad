package ink

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHex parses "#RGB" or "#RRGGBB" (the '#' is optional, case-insensitive)
func ParseHex(hex string) (r, g, b uint8, ok bool) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")

	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return 0, 0, 0, false
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}

	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

// HexToRGBA converts a hex color to a CSS rgba() string with the given alpha.
// Input that is not a 3 or 6 digit hex color is returned unchanged.
func HexToRGBA(hex string, alpha float64) string {
	r, g, b, ok := ParseHex(hex)
	if !ok {
		return hex
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", r, g, b, strconv.FormatFloat(alpha, 'f', -1, 64))
}
