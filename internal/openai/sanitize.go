package openai

import "strings"

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Sanitize normalizes line endings to "\n", drops C0 and C1 control
// characters other than "\n", and trims surrounding whitespace.
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	text = lineEndings.Replace(text)
	text = strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if r <= 0x1F || (r >= 0x7F && r <= 0x9F) {
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(text)
}
