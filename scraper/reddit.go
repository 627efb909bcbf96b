package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/liss-h/embedbot/config"
	"github.com/liss-h/embedbot/jsonnav"
)

// RedditScraper extracts posts via reddit's public JSON API: the post page
// URL with ".json" appended returns a 2-element array of the post listing
// and the top-level comment listing.
type RedditScraper struct {
	client *http.Client
}

func NewReddit(_ *config.RedditSettings, client *http.Client) *RedditScraper {
	return &RedditScraper{client: client}
}

func (r *RedditScraper) IsSuitable(u *url.URL) bool {
	return u.Hostname() == "reddit.com" || u.Hostname() == "www.reddit.com"
}

func (r *RedditScraper) ScrapePost(ctx context.Context, u *url.URL) (*Post, error) {
	canonical, err := r.findCanonicalPostURL(ctx, u)
	if err != nil {
		return nil, err
	}
	canonical.RawQuery = ""

	apiURL := *canonical
	apiURL.Path += ".json"

	doc, err := wgetJSON(ctx, r.client, apiURL.String())
	if err != nil {
		return nil, err
	}

	return analyzeRedditPost(canonical, doc)
}

// findCanonicalPostURL follows redirects to the post's canonical URL.
// Landing on the age gate ("/over18") means the redirect was a quota or
// region gate, not a canonicalization; the original URL is kept in that
// case, as it is on any fetch error.
func (r *RedditScraper) findCanonicalPostURL(ctx context.Context, u *url.URL) (*url.URL, error) {
	resp, err := wget(ctx, r.client, u.String())
	if err != nil {
		return cloneURL(u), nil
	}
	defer func() { _ = resp.Body.Close() }()

	final := resp.Request.URL
	if final.Path == "/over18" {
		return cloneURL(u), nil
	}
	return cloneURL(final), nil
}

func cloneURL(u *url.URL) *url.URL {
	clone := *u
	return &clone
}

func fmtRedditTitle(title, flair string) string {
	if flair == "" {
		return title
	}
	return fmt.Sprintf("%s [%s]", title, flair)
}

// analyzeRedditPost builds a Post from the decoded listing JSON. Split from
// ScrapePost so fixture documents can drive it directly in tests.
func analyzeRedditPost(src *url.URL, doc any) (*Post, error) {
	topLevelPost, err := jsonnav.Object(doc, 0, "data", "children", 0, "data")
	if err != nil {
		return nil, err
	}

	title, err := jsonnav.String(topLevelPost, "title")
	if err != nil {
		return nil, err
	}

	subreddit, err := jsonnav.String(topLevelPost, "subreddit")
	if err != nil {
		return nil, err
	}

	// postJSON is the authoritative post data: the crosspost parent when
	// this is a crosspost, the top-level post otherwise.
	postJSON := topLevelPost
	isXpost := false
	if parent, err := jsonnav.Object(topLevelPost, "crosspost_parent_list", 0); err == nil {
		postJSON = parent
		isXpost = true
	}

	originalSubreddit, err := jsonnav.String(postJSON, "subreddit")
	if err != nil {
		return nil, err
	}

	rawText, err := jsonnav.String(postJSON, "selftext")
	if err != nil {
		return nil, err
	}
	text := unescapeHTML(rawText)

	flair, _ := jsonnav.String(postJSON, "link_flair_text")
	nsfw, _ := jsonnav.Bool(postJSON, "over_18")
	spoiler, _ := jsonnav.Bool(postJSON, "spoiler")

	comment, err := redditLinkedComment(src, doc)
	if err != nil {
		return nil, err
	}

	origin := fmt.Sprintf("reddit.com/r/%s", subreddit)
	if isXpost {
		origin = fmt.Sprintf("reddit.com/r/%s [XPosted from r/%s]", subreddit, originalSubreddit)
	}

	common := PostCommonData{
		Src:     src,
		Origin:  origin,
		Title:   fmtRedditTitle(title, flair),
		Text:    text,
		NSFW:    nsfw,
		Spoiler: spoiler,
		Comment: comment,
	}

	specialized, err := redditSpecializedData(topLevelPost, postJSON)
	if err != nil {
		return nil, err
	}

	return &Post{Common: common, Specialized: specialized}, nil
}

// redditLinkedComment attaches the first top-level comment only when the
// source URL explicitly links it, i.e. the URL's trailing path segment is
// that comment's id.
func redditLinkedComment(src *url.URL, doc any) (*Comment, error) {
	commentData, err := jsonnav.Object(doc, 1, "data", "children", 0, "data")
	if err != nil {
		return nil, nil
	}

	id, err := jsonnav.String(commentData, "id")
	if err != nil {
		return nil, err
	}
	if !urlPathEndsWith(src, id) {
		return nil, nil
	}

	author, err := jsonnav.String(commentData, "author")
	if err != nil {
		return nil, err
	}
	body, err := jsonnav.String(commentData, "body")
	if err != nil {
		return nil, err
	}

	return &Comment{Author: author, Text: unescapeHTML(body)}, nil
}

// redditSpecializedData resolves the media variant, first match wins:
// secure video, oembed thumbnail, media-metadata gallery, then plain url
// classification by extension.
func redditSpecializedData(topLevelPost, postJSON map[string]any) (PostSpecializedData, error) {
	// The thumbnail can be "default" when a crosspost references a deleted
	// post, so it only counts as a fallback when it parses as an absolute
	// URL.
	altEmbedURL := func() (*url.URL, error) {
		thumb, err := jsonnav.String(topLevelPost, "thumbnail")
		if err != nil {
			return nil, err
		}
		return parseAbsoluteURL(thumb)
	}

	if sm, err := jsonnav.Object(postJSON, "secure_media"); err == nil {
		if _, ok := sm["reddit_video"]; ok {
			rawURL, err := jsonnav.String(sm, "reddit_video", "fallback_url")
			if err != nil {
				return nil, err
			}
			videoURL, err := parseAbsoluteURL(rawURL)
			if err != nil {
				return nil, err
			}
			return Video{VideoURL: videoURL}, nil
		}

		if _, ok := sm["oembed"]; ok {
			rawURL, err := jsonnav.String(sm, "oembed", "thumbnail_url")
			if err != nil {
				return nil, err
			}
			imgURL, err := parseAbsoluteURL(rawURL)
			if err != nil {
				if imgURL, err = altEmbedURL(); err != nil {
					return nil, err
				}
			}
			return Image{ImgURL: imgURL}, nil
		}
	}

	if meta, err := jsonnav.Object(postJSON, "media_metadata"); err == nil {
		urls, err := redditGalleryURLs(postJSON, meta)
		if err != nil {
			return nil, err
		}
		switch len(urls) {
		case 0:
			return TextOnly{}, nil
		case 1:
			return Image{ImgURL: urls[0]}, nil
		default:
			return Gallery{ImgURLs: urls}, nil
		}
	}

	rawURL, err := jsonnav.String(postJSON, "url")
	if err != nil {
		return nil, err
	}
	postURL, err := parseAbsoluteURL(rawURL)
	if err != nil {
		postURL, err = altEmbedURL()
	}

	switch {
	case err == nil && urlPathEndsWithImageExtension(postURL):
		return Image{ImgURL: postURL}, nil
	case err == nil && urlPathEndsWith(postURL, ".gifv"):
		return Video{VideoURL: postURL}, nil
	default:
		return TextOnly{}, nil
	}
}

// redditGalleryURLs returns the gallery image URLs in presentation order.
// gallery_data carries the order reddit publishes; media_metadata alone is
// an unordered map, in which case sorted keys keep the result
// deterministic.
func redditGalleryURLs(postJSON, meta map[string]any) ([]*url.URL, error) {
	var ids []string
	if items, err := jsonnav.Array(postJSON, "gallery_data", "items"); err == nil {
		for _, item := range items {
			id, err := jsonnav.String(item, "media_id")
			if err != nil {
				return nil, err
			}
			if _, ok := meta[id]; ok {
				ids = append(ids, id)
			}
		}
	} else {
		for id := range meta {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}

	urls := make([]*url.URL, 0, len(ids))
	for _, id := range ids {
		raw, err := jsonnav.String(meta, id, "s", "u")
		if err != nil {
			return nil, err
		}
		u, err := parseAbsoluteURL(unescapeURL(raw))
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

func parseAbsoluteURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", raw, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("url %q is not absolute", raw)
	}
	return u, nil
}
