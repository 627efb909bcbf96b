// Package embed renders a scraped Post into a chat-message payload,
// applying the content-sensitivity policy, markdown escaping, length limits
// and media-layout rules.
package embed

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/liss-h/embedbot/config"
	"github.com/liss-h/embedbot/scraper"
)

// Options is the per-request render configuration, resolved from the
// configured behaviours and the caller's override flags.
type Options struct {
	// Comment is the caller's ad-hoc comment. Empty means none.
	Comment string

	EmbedNSFW    bool
	EmbedSpoiler bool
}

// ResolveBehaviour applies the per-category override policy: the caller's
// explicit value wins only when the category allows overrides, otherwise
// the configured default stands.
func ResolveBehaviour(behaviour config.EmbedBehaviour, requested *bool) bool {
	if requested != nil && behaviour.AllowOverride {
		return *requested
	}
	return behaviour.Default
}

// ResponseBuilder is the output surface the renderer writes to. Both a new
// channel message and a reply-to-interaction response implement it, so the
// render logic is written once.
type ResponseBuilder interface {
	SetPlainText(content string)
	SetStructuredEmbed(e *discordgo.MessageEmbed)
}

// Render writes the payload for post as seen by viewer into out.
//
// Flagged content the resolved options do not allow renders as a minimal
// warning embed. Of the two gated paths only the spoiler one carries the
// post's remote comment; the nsfw path drops it. That asymmetry is
// long-standing, observable behavior and is kept deliberately.
func Render(post *scraper.Post, viewer string, opts Options, out ResponseBuilder) {
	switch {
	case post.Common.NSFW && !opts.EmbedNSFW:
		e := minimalEmbed(&post.Common, viewer, "Warning NSFW: Click to view content")
		includeAuthorComment(e, viewer, opts.Comment)
		out.SetStructuredEmbed(e)

	case post.Common.Spoiler && !opts.EmbedSpoiler:
		e := minimalEmbed(&post.Common, viewer, "Spoiler: Click to view content")
		includeAuthorComment(e, viewer, opts.Comment)
		includeComment(e, post.Common.Comment)
		out.SetStructuredEmbed(e)

	default:
		renderSpecialized(post, viewer, opts, out)
	}
}

func renderSpecialized(post *scraper.Post, viewer string, opts Options, out ResponseBuilder) {
	switch media := post.Specialized.(type) {
	case scraper.TextOnly:
		out.SetStructuredEmbed(baseEmbed(&post.Common, viewer, opts.Comment))

	case scraper.Image:
		e := baseEmbed(&post.Common, viewer, opts.Comment)
		e.Image = &discordgo.MessageEmbedImage{URL: media.ImgURL.String()}
		out.SetStructuredEmbed(e)

	case scraper.Gallery:
		// A structured embed carries at most one image, so galleries and
		// videos fall back to plain text.
		out.SetPlainText(manualEmbed(&post.Common, viewer, opts.Comment, media.ImgURLs))

	case scraper.Video:
		out.SetPlainText(manualEmbed(&post.Common, viewer, opts.Comment, []*url.URL{media.VideoURL}))

	case scraper.VideoThumbnail:
		e := baseEmbed(&post.Common, viewer, opts.Comment)
		e.Image = &discordgo.MessageEmbedImage{URL: media.ThumbnailURL.String()}
		e.Footer = &discordgo.MessageEmbedFooter{
			Text: "This was originally a video. Click title to watch on website.",
		}
		out.SetStructuredEmbed(e)
	}
}

// Error renders a failure as a minimal error embed.
func Error(msg string, out ResponseBuilder) {
	out.SetStructuredEmbed(&discordgo.MessageEmbed{
		Title:       ":x: Error",
		Description: msg,
	})
}

func minimalEmbed(post *scraper.PostCommonData, viewer, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       FmtTitle(post),
		Description: description,
		Author:      &discordgo.MessageEmbedAuthor{Name: viewer},
		URL:         post.Src.String(),
	}
}

func baseEmbed(post *scraper.PostCommonData, viewer, callerComment string) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       FmtTitle(post),
		Description: LimitDescription(post.Text),
		Author:      &discordgo.MessageEmbedAuthor{Name: viewer},
		URL:         post.Src.String(),
	}
	includeAuthorComment(e, viewer, callerComment)
	includeComment(e, post.Comment)
	return e
}

// includeAuthorComment adds the caller's own comment verbatim; callers
// write markdown on purpose.
func includeAuthorComment(e *discordgo.MessageEmbed, viewer, comment string) {
	if comment == "" {
		return
	}
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("Comment by %s", viewer),
		Value:  comment,
		Inline: false,
	})
}

// includeComment adds a remote user's comment, escaped as untrusted text.
func includeComment(e *discordgo.MessageEmbed, comment *scraper.Comment) {
	if comment == nil {
		return
	}
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("Comment by %s", comment.Author),
		Value:  EscapeMarkdown(comment.Text),
		Inline: true,
	})
}

// manualEmbed is the plain-text fallback for media a structured embed
// cannot carry: a block-quoted header, the comment blocks, then title and
// body.
func manualEmbed(post *scraper.PostCommonData, viewer, callerComment string, embedURLs []*url.URL) string {
	var callerBlock string
	if callerComment != "" {
		callerBlock = fmt.Sprintf("**Comment By %s:**\n%s\n\n", viewer, callerComment)
	}

	var postBlock string
	if post.Comment != nil {
		postBlock = fmt.Sprintf("**Comment By %s:**\n%s\n\n",
			post.Comment.Author, EscapeMarkdown(post.Comment.Text))
	}

	urls := make([]string, len(embedURLs))
	for i, u := range embedURLs {
		urls[i] = u.String()
	}

	return fmt.Sprintf(">>> **%s**\nSource: <%s>\nEmbedURL: %s\n\n%s%s%s\n\n%s",
		viewer,
		post.Src,
		strings.Join(urls, "\n"),
		callerBlock,
		postBlock,
		FmtTitle(post),
		LimitDescription(post.Text),
	)
}
