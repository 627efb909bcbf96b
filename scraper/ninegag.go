package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/liss-h/embedbot/config"
	"github.com/liss-h/embedbot/jsonnav"
)

// 9GAG inlines its post state as a JSON.parse("...") call inside a script
// element. The argument starts after this prefix and ends before `");`.
const (
	ninegagScriptPrefix = len(`window._config = JSON.parse("`)
	ninegagScriptSuffix = len(`");`)
	ninegagTitleSuffix  = " - 9GAG"
)

// NineGagScraper extracts posts from the JSON state blob embedded in the
// static page HTML.
type NineGagScraper struct {
	client *http.Client
}

func NewNineGag(_ *config.NineGagSettings, client *http.Client) *NineGagScraper {
	return &NineGagScraper{client: client}
}

func (n *NineGagScraper) IsSuitable(u *url.URL) bool {
	return u.Hostname() == "9gag.com"
}

func (n *NineGagScraper) ScrapePost(ctx context.Context, u *url.URL) (*Post, error) {
	doc, err := wgetHTML(ctx, n.client, u.String())
	if err != nil {
		return nil, err
	}
	return analyzeNineGagPost(u, doc)
}

func analyzeNineGagPost(src *url.URL, doc *goquery.Document) (*Post, error) {
	title := strings.TrimSuffix(doc.Find("title").First().Text(), ninegagTitleSuffix)
	if title == "" {
		return nil, fmt.Errorf("9gag: could not find title")
	}

	state, err := ninegagEmbeddedJSON(doc)
	if err != nil {
		return nil, err
	}

	postJSON, err := jsonnav.Object(state, "data", "post")
	if err != nil {
		return nil, err
	}

	common := PostCommonData{
		Src:    src,
		Origin: "9gag.com",
		Title:  title,
	}

	specialized, err := ninegagSpecializedData(postJSON)
	if err != nil {
		return nil, err
	}

	return &Post{Common: common, Specialized: specialized}, nil
}

// ninegagEmbeddedJSON locates the script element carrying the JSON.parse
// call, strips the backslash escaping and decodes the wrapped document.
func ninegagEmbeddedJSON(doc *goquery.Document) (any, error) {
	var script string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(s.Text(), "JSON.parse") {
			script = s.Text()
			return false
		}
		return true
	})
	if script == "" {
		return nil, fmt.Errorf("9gag: could not find embedded json")
	}

	script = strings.ReplaceAll(script, `\`, "")
	if len(script) < ninegagScriptPrefix+ninegagScriptSuffix {
		return nil, fmt.Errorf("9gag: embedded json shorter than its wrapper")
	}

	raw := script[ninegagScriptPrefix : len(script)-ninegagScriptSuffix]

	var state any
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("9gag: decode embedded json: %w", err)
	}
	return state, nil
}

// ninegagSpecializedData keys the media variant on the post's type field:
// Photo posts embed image700, Animated posts prefer the watermarked
// image460svwm rendition over image460sv, everything else is a vp9 video.
func ninegagSpecializedData(postJSON map[string]any) (PostSpecializedData, error) {
	postType, err := jsonnav.String(postJSON, "type")
	if err != nil {
		return nil, err
	}

	switch postType {
	case "Photo":
		raw, err := jsonnav.String(postJSON, "images", "image700", "url")
		if err != nil {
			return nil, err
		}
		imgURL, err := parseAbsoluteURL(raw)
		if err != nil {
			return nil, err
		}
		return Image{ImgURL: imgURL}, nil

	case "Animated":
		imgs, err := jsonnav.Object(postJSON, "images")
		if err != nil {
			return nil, err
		}
		alt, err := jsonnav.Get(imgs, "image460svwm")
		if err != nil {
			if alt, err = jsonnav.Get(imgs, "image460sv"); err != nil {
				return nil, err
			}
		}
		raw, err := jsonnav.String(alt, "url")
		if err != nil {
			return nil, err
		}
		videoURL, err := parseAbsoluteURL(raw)
		if err != nil {
			return nil, err
		}
		return Video{VideoURL: videoURL}, nil

	default:
		raw, err := jsonnav.String(postJSON, "vp9Url")
		if err != nil {
			return nil, err
		}
		videoURL, err := parseAbsoluteURL(raw)
		if err != nil {
			return nil, err
		}
		return Video{VideoURL: videoURL}, nil
	}
}
