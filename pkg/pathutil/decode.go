package pathutil

import (
	"strings"
	"unicode/utf16"
)

// DecodeText converts raw file bytes to a string for tokenization and display.
// It recognizes a UTF-8 BOM, UTF-16 LE/BE BOMs (detected by the first two
// bytes being FF FE or FE FF), and otherwise treats the content as UTF-8,
// replacing invalid sequences with the Unicode replacement character rather
// than skipping the file.
func DecodeText(raw []byte) string {
	switch {
	case len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF:
		return string(raw[3:])
	case len(raw) >= 2 && raw[0] == 0xFF && raw[1] == 0xFE:
		return decodeUTF16(raw[2:], false)
	case len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF:
		return decodeUTF16(raw[2:], true)
	default:
		return strings.ToValidUTF8(string(raw), "�")
	}
}

func decodeUTF16(raw []byte, bigEndian bool) string {
	if len(raw)%2 != 0 {
		raw = raw[:len(raw)-1]
	}
	units := make([]uint16, len(raw)/2)
	for i := range units {
		b0, b1 := raw[2*i], raw[2*i+1]
		if bigEndian {
			units[i] = uint16(b0)<<8 | uint16(b1)
		} else {
			units[i] = uint16(b1)<<8 | uint16(b0)
		}
	}
	return string(utf16.Decode(units))
}
