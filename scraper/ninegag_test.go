package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/liss-h/embedbot/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ninegagPage(t *testing.T, postJSON string) *goquery.Document {
	t.Helper()
	html := fmt.Sprintf(
		`<html><head><title>Funny post - 9GAG</title></head><body>`+
			`<script>window._config = JSON.parse("%s");</script>`+
			`</body></html>`,
		postJSON)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestAnalyzeNineGagPhoto(t *testing.T) {
	doc := ninegagPage(t, `{\"data\":{\"post\":{\"type\":\"Photo\",\"images\":{\"image700\":{\"url\":\"https://img-9gag-fun.9cache.com/photo/abc_700b.jpg\"}}}}}`)

	post, err := analyzeNineGagPost(parseURL(t, "https://9gag.com/gag/abc"), doc)
	require.NoError(t, err)

	assert.Equal(t, "Funny post", post.Common.Title)
	assert.Equal(t, "9gag.com", post.Common.Origin)

	img, ok := post.Specialized.(Image)
	require.True(t, ok, "expected Image, got %T", post.Specialized)
	assert.Equal(t, "https://img-9gag-fun.9cache.com/photo/abc_700b.jpg", img.ImgURL.String())
}

func TestAnalyzeNineGagAnimatedPrefersWatermarked(t *testing.T) {
	doc := ninegagPage(t, `{\"data\":{\"post\":{\"type\":\"Animated\",\"images\":{\"image460svwm\":{\"url\":\"https://img-9gag-fun.9cache.com/photo/abc_460svwm.webm\"},\"image460sv\":{\"url\":\"https://img-9gag-fun.9cache.com/photo/abc_460sv.mp4\"}}}}}`)

	post, err := analyzeNineGagPost(parseURL(t, "https://9gag.com/gag/abc"), doc)
	require.NoError(t, err)

	video, ok := post.Specialized.(Video)
	require.True(t, ok, "expected Video, got %T", post.Specialized)
	assert.Equal(t, "https://img-9gag-fun.9cache.com/photo/abc_460svwm.webm", video.VideoURL.String())
}

func TestAnalyzeNineGagAnimatedFallsBack(t *testing.T) {
	doc := ninegagPage(t, `{\"data\":{\"post\":{\"type\":\"Animated\",\"images\":{\"image460sv\":{\"url\":\"https://img-9gag-fun.9cache.com/photo/abc_460sv.mp4\"}}}}}`)

	post, err := analyzeNineGagPost(parseURL(t, "https://9gag.com/gag/abc"), doc)
	require.NoError(t, err)

	video, ok := post.Specialized.(Video)
	require.True(t, ok)
	assert.Equal(t, "https://img-9gag-fun.9cache.com/photo/abc_460sv.mp4", video.VideoURL.String())
}

func TestAnalyzeNineGagOtherTypeUsesVP9(t *testing.T) {
	doc := ninegagPage(t, `{\"data\":{\"post\":{\"type\":\"Article\",\"vp9Url\":\"https://img-9gag-fun.9cache.com/photo/abc_vp9.webm\"}}}`)

	post, err := analyzeNineGagPost(parseURL(t, "https://9gag.com/gag/abc"), doc)
	require.NoError(t, err)

	video, ok := post.Specialized.(Video)
	require.True(t, ok)
	assert.Equal(t, "https://img-9gag-fun.9cache.com/photo/abc_vp9.webm", video.VideoURL.String())
}

func TestAnalyzeNineGagMissingJSON(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><head><title>Funny post - 9GAG</title></head><body><script>var x = 1;</script></body></html>`))
	require.NoError(t, err)

	_, err = analyzeNineGagPost(parseURL(t, "https://9gag.com/gag/abc"), doc)
	assert.ErrorContains(t, err, "embedded json")
}

func TestNineGagIsSuitable(t *testing.T) {
	n := NewNineGag(&config.NineGagSettings{}, NewHTTPClient(0))

	assert.True(t, n.IsSuitable(parseURL(t, "https://9gag.com/gag/abc")))
	assert.False(t, n.IsSuitable(parseURL(t, "https://www.reddit.com/r/golang/")))
}

func TestNineGagScrapePost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w,
			`<html><head><title>Funny post - 9GAG</title></head><body>`+
				`<script>window._config = JSON.parse("{\"data\":{\"post\":{\"type\":\"Photo\",\"images\":{\"image700\":{\"url\":\"https://img-9gag-fun.9cache.com/photo/abc_700b.jpg\"}}}}}");</script>`+
				`</body></html>`)
	}))
	defer srv.Close()

	n := NewNineGag(&config.NineGagSettings{}, srv.Client())

	post, err := n.ScrapePost(context.Background(), parseURL(t, srv.URL+"/gag/abc"))
	require.NoError(t, err)
	assert.IsType(t, Image{}, post.Specialized)
}
