package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

const maxFilenameBytes = 200

var illegalChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// Filename removes characters that are not allowed in file names and caps
// the length without splitting a multi byte character.
func Filename(title string) string {
	title = illegalChars.ReplaceAllString(title, "")

	title = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, title)

	// Trim spaces & dots
	title = strings.Trim(title, " .")

	if len(title) > maxFilenameBytes {
		cut := maxFilenameBytes
		for cut > 0 && !utf8RuneStart(title[cut]) {
			cut--
		}
		title = strings.TrimRight(title[:cut], " .")
	}

	return title
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
