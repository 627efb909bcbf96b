package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/liss-h/embedbot/config"
)

const imgurTitleSuffix = " - Imgur"

// ImgurScraper reads the legacy static imgur pages: title from the page
// title, image from the link[rel=image_src] hint.
//
// TODO: imgur now serves a client-rendered app for most albums; this only
// works for direct single-image pages.
type ImgurScraper struct {
	client *http.Client
}

func NewImgur(_ *config.ImgurSettings, client *http.Client) *ImgurScraper {
	return &ImgurScraper{client: client}
}

func (i *ImgurScraper) IsSuitable(u *url.URL) bool {
	return strings.Contains(u.Hostname(), "imgur.com")
}

func (i *ImgurScraper) ScrapePost(ctx context.Context, u *url.URL) (*Post, error) {
	doc, err := wgetHTML(ctx, i.client, u.String())
	if err != nil {
		return nil, err
	}
	return analyzeImgurPost(u, doc)
}

func analyzeImgurPost(src *url.URL, doc *goquery.Document) (*Post, error) {
	rawTitle := doc.Find("title").First().Text()
	if rawTitle == "" {
		return nil, fmt.Errorf("imgur: could not find title")
	}
	title := strings.TrimSuffix(strings.TrimLeft(rawTitle, " \t\n\r"), imgurTitleSuffix)

	href, ok := doc.Find(`link[rel="image_src"]`).First().Attr("href")
	if !ok {
		return nil, fmt.Errorf("imgur: could not find image_src link")
	}
	imgURL, err := parseAbsoluteURL(href)
	if err != nil {
		return nil, err
	}

	return &Post{
		Common: PostCommonData{
			Src:    src,
			Origin: "imgur.com",
			Title:  title,
		},
		Specialized: Image{ImgURL: imgURL},
	}, nil
}
