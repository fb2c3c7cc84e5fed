package utils

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
)

// HexColor formats c as #rrggbbaa.
func HexColor(c color.NRGBA) string {
	return "#" + hex.EncodeToString([]byte{c.R, c.G, c.B, c.A})
}

// ParseHexColor accepts #rgb, #rrggbb and #rrggbbaa, with or without the leading #.
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color: %q", s)
	}
	buf, err := hex.DecodeString(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color: %q", s)
	}
	return color.NRGBA{R: buf[0], G: buf[1], B: buf[2], A: buf[3]}, nil
}
