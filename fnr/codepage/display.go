package codepage

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ReplacementRune marks bytes that could not be shown as text.
const ReplacementRune = utf8.RuneError

// ReplacementDisplay returns raw with every invalid UTF-8 sequence replaced
// by U+FFFD, the way file managers label a mangled name.
func ReplacementDisplay(raw string) string {
	return strings.ToValidUTF8(raw, string(ReplacementRune))
}

// NeedsRepair reports whether the display form of raw carries a replacement marker.
func NeedsRepair(raw string) bool {
	return strings.ContainsRune(ReplacementDisplay(raw), ReplacementRune)
}

// EscapedDisplay returns raw unchanged when it is valid UTF-8, otherwise
// every byte at or above 0x80 written as %xx so the name stays readable and
// distinguishable.
func EscapedDisplay(raw string) string {
	if utf8.ValidString(raw) {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw) * 3)
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c < 0x80 {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02x", c)
	}
	return b.String()
}

// MnemonicEscape doubles underscores so toolkits that treat '_' as an
// accelerator marker print the name literally.
func MnemonicEscape(text string) string {
	return strings.ReplaceAll(text, "_", "__")
}
