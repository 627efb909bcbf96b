package embed

import (
	"strings"
	"unicode/utf8"

	"github.com/liss-h/embedbot/scraper"
)

const EMBED_CONTENT_MAX_LEN = 2048
const EMBED_TITLE_MAX_LEN = 256

// markdownControls is the fixed set of Discord markdown control characters
// escaped in untrusted text. All single-byte ASCII.
const markdownControls = "`*_{}[]()#+-.!"

// EscapeMarkdown inserts a backslash before every markdown control
// character. Text without control characters is returned as-is without
// allocation. Escaping only ever inserts bytes before single-byte ASCII
// characters, so UTF-8 validity is preserved by construction.
func EscapeMarkdown(text string) string {
	i := strings.IndexAny(text, markdownControls)
	if i < 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + 8)

	rest := text
	for {
		b.WriteString(rest[:i])
		b.WriteByte('\\')
		b.WriteByte(rest[i])
		rest = rest[i+1:]

		i = strings.IndexAny(rest, markdownControls)
		if i < 0 {
			b.WriteString(rest)
			return b.String()
		}
	}
}

const shortenedMarker = "[...]"

// LimitLen bounds text to limit bytes, appending a marker when it had to
// cut. The cut point is rounded down to a rune boundary so a multi-byte
// character is never split.
func LimitLen(text string, limit int) string {
	if len(text) <= limit {
		return text
	}

	cut := limit - 1 - len(shortenedMarker)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	return text[:cut] + " " + shortenedMarker
}

// LimitDescription bounds post body text to the platform description limit.
func LimitDescription(text string) string {
	return LimitLen(text, EMBED_CONTENT_MAX_LEN)
}

// FmtTitle renders the escaped, truncated post title with its origin label
// appended. The -3 accounts for the " - " joining the two.
func FmtTitle(post *scraper.PostCommonData) string {
	title := EscapeMarkdown(post.Title)
	title = LimitLen(title, EMBED_TITLE_MAX_LEN-3-len(post.Origin))
	return title + " - " + post.Origin
}
