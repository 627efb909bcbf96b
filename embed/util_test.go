package embed

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/liss-h/embedbot/scraper"
	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdown(t *testing.T) {
	md := "# Hello World\n- First\n- Second+"
	assert.Equal(t, "\\# Hello World\n\\- First\n\\- Second\\+", EscapeMarkdown(md))
}

func TestEscapeMarkdownNothingToEscape(t *testing.T) {
	s := "Hello World"
	assert.Equal(t, s, EscapeMarkdown(s))
}

// Removing every backslash inserted before a control character must
// reconstruct the input exactly.
func TestEscapeMarkdownInvertible(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"**bold** and `code`",
		"[link](https://example.com)",
		"unicode ⚡ mixed *with* markdown",
		"ends with control!",
		"!starts with control",
		"\\already\\escaped*",
		strings.Repeat("#", 50),
	}

	unescape := func(s string) string {
		var b strings.Builder
		for i := 0; i < len(s); i++ {
			if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(markdownControls, s[i+1]) >= 0 {
				continue
			}
			b.WriteByte(s[i])
		}
		return b.String()
	}

	for _, in := range inputs {
		assert.Equal(t, in, unescape(EscapeMarkdown(in)), "input %q", in)
	}
}

func TestEscapeMarkdownPreservesUTF8(t *testing.T) {
	in := "日本語 *テスト* ⚡"
	out := EscapeMarkdown(in)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "日本語 \\*テスト\\* ⚡", out)
}

func TestLimitLenShortTextUnchanged(t *testing.T) {
	assert.Equal(t, "short", LimitLen("short", 100))
}

func TestLimitLenAppendsMarker(t *testing.T) {
	out := LimitLen(strings.Repeat("a", 100), 20)
	assert.True(t, strings.HasSuffix(out, " [...]"))
	assert.LessOrEqual(t, len(out), 20)
}

// Truncation must never split a multi-byte character, whatever the limit.
func TestLimitLenNeverSplitsRunes(t *testing.T) {
	texts := []string{
		strings.Repeat("ä", 40),
		strings.Repeat("⚡", 40),
		"mixed ascii 日本語テキスト and more 🎉🎉🎉",
	}
	for _, text := range texts {
		for limit := 7; limit < len(text)+2; limit++ {
			out := LimitLen(text, limit)
			assert.True(t, utf8.ValidString(out), "text %q limit %d -> %q", text, limit, out)
		}
	}
}

func TestFmtTitle(t *testing.T) {
	post := &scraper.PostCommonData{
		Title:  "A *post* title",
		Origin: "reddit.com/r/golang",
	}
	assert.Equal(t, "A \\*post\\* title - reddit.com/r/golang", FmtTitle(post))
}

func TestFmtTitleTruncatesLongTitles(t *testing.T) {
	post := &scraper.PostCommonData{
		Title:  strings.Repeat("x", 500),
		Origin: "9gag.com",
	}
	out := FmtTitle(post)
	assert.LessOrEqual(t, len(out), EMBED_TITLE_MAX_LEN)
	assert.True(t, strings.HasSuffix(out, " - 9gag.com"))
	assert.Contains(t, out, "[...]")
}
