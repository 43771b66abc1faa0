package dispatch

import (
	"strings"
	"unicode/utf8"
)

// DefaultMessageLimit is the transport's maximum message size.
const DefaultMessageLimit = 2000

// SplitMessage cuts text into chunks of at most limit bytes. Each cut
// backs off to the last whitespace inside the chunk so words are not
// split; leading whitespace is trimmed off the remainder. A text within
// the limit comes back as a single chunk equal to the input.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(text) > limit {
		cut := limit
		if i := strings.LastIndexAny(text[:limit], " \t\n"); i > 0 {
			cut = i
		} else {
			// No whitespace to break on: stay on a rune boundary.
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimLeft(text[cut:], " \t\n")
	}
	if len(text) > 0 {
		chunks = append(chunks, text)
	}
	return chunks
}
