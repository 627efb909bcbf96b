package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/liss-h/embedbot/config"
	"github.com/liss-h/embedbot/renderer"
)

const twitterMediaPrefix = "https://pbs.twimg.com/media"

// TwitterScraper extracts tweets. Tweets are client-rendered, so the page
// goes through a headless-browser render instead of a raw GET.
type TwitterScraper struct {
	render renderer.Renderer
}

func NewTwitter(settings *config.TwitterSettings, render renderer.Renderer) *TwitterScraper {
	if render == nil {
		render = renderer.NewChrome(settings.ChromeExecutable,
			time.Duration(settings.RenderTimeoutSeconds)*time.Second)
	}
	return &TwitterScraper{render: render}
}

func (t *TwitterScraper) IsSuitable(u *url.URL) bool {
	return u.Hostname() == "twitter.com" || u.Hostname() == "x.com"
}

func (t *TwitterScraper) ScrapePost(ctx context.Context, u *url.URL) (*Post, error) {
	author, err := firstPathSegment(u)
	if err != nil {
		return nil, err
	}

	html, err := t.render.RenderHTML(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", u, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse rendered html for %s: %w", u, err)
	}

	return analyzeTweet(u, author, doc)
}

func firstPathSegment(u *url.URL) (string, error) {
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			return seg, nil
		}
	}
	return "", fmt.Errorf("url %s missing author path segment", u)
}

func analyzeTweet(src *url.URL, author string, doc *goquery.Document) (*Post, error) {
	// The tweet body is split across child nodes; the rendered DOM pads
	// truncated links with a lone ellipsis glyph that is not part of the
	// text.
	var text strings.Builder
	doc.Find(`article div[data-testid="tweetText"]`).First().Contents().Each(func(_ int, s *goquery.Selection) {
		if t := s.Text(); t != "…" {
			text.WriteString(t)
		}
	})

	common := PostCommonData{
		Src:    src,
		Origin: "twitter.com",
		Title:  "@" + author,
		Text:   text.String(),
	}

	specialized, err := tweetSpecializedData(doc)
	if err != nil {
		return nil, err
	}

	return &Post{Common: common, Specialized: specialized}, nil
}

func tweetSpecializedData(doc *goquery.Document) (PostSpecializedData, error) {
	var imgURLs []*url.URL
	doc.Find(`article img[alt]:not([alt=""])`).Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || !strings.HasPrefix(src, twitterMediaPrefix) {
			return
		}
		if u, err := parseAbsoluteURL(src); err == nil {
			imgURLs = append(imgURLs, u)
		}
	})

	switch len(imgURLs) {
	case 0:
		video := doc.Find("article video").First()
		if video.Length() == 0 {
			return TextOnly{}, nil
		}

		if mime, _ := video.Attr("type"); mime == "video/mp4" {
			src, ok := video.Attr("src")
			if !ok {
				return nil, fmt.Errorf("tweet video element missing src")
			}
			videoURL, err := parseAbsoluteURL(src)
			if err != nil {
				return nil, err
			}
			return Video{VideoURL: videoURL}, nil
		}

		poster, ok := video.Attr("poster")
		if !ok {
			return nil, fmt.Errorf("tweet video element missing poster")
		}
		thumbURL, err := parseAbsoluteURL(poster)
		if err != nil {
			return nil, err
		}
		return VideoThumbnail{ThumbnailURL: thumbURL}, nil

	case 1:
		return Image{ImgURL: imgURLs[0]}, nil

	default:
		return Gallery{ImgURLs: imgURLs}, nil
	}
}
