package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/liss-h/embedbot/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const imgurHTML = `<html><head>
	<title>
		Cool picture - Imgur</title>
	<link rel="image_src" href="https://i.imgur.com/abcdef.jpg">
</head><body></body></html>`

func TestAnalyzeImgurPost(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(imgurHTML))
	require.NoError(t, err)

	post, err := analyzeImgurPost(parseURL(t, "https://imgur.com/gallery/abcdef"), doc)
	require.NoError(t, err)

	assert.Equal(t, "Cool picture", post.Common.Title)
	assert.Equal(t, "imgur.com", post.Common.Origin)

	img, ok := post.Specialized.(Image)
	require.True(t, ok)
	assert.Equal(t, "https://i.imgur.com/abcdef.jpg", img.ImgURL.String())
}

func TestAnalyzeImgurMissingImage(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><head><title>Cool picture - Imgur</title></head></html>`))
	require.NoError(t, err)

	_, err = analyzeImgurPost(parseURL(t, "https://imgur.com/gallery/abcdef"), doc)
	assert.ErrorContains(t, err, "image_src")
}

func TestImgurIsSuitable(t *testing.T) {
	i := NewImgur(&config.ImgurSettings{}, NewHTTPClient(0))

	assert.True(t, i.IsSuitable(parseURL(t, "https://imgur.com/gallery/x")))
	assert.True(t, i.IsSuitable(parseURL(t, "https://i.imgur.com/x.jpg")))
	assert.False(t, i.IsSuitable(parseURL(t, "https://example.com/x")))
}

func TestImgurScrapePost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(imgurHTML))
	}))
	defer srv.Close()

	i := NewImgur(&config.ImgurSettings{}, srv.Client())

	post, err := i.ScrapePost(context.Background(), parseURL(t, srv.URL+"/gallery/abcdef"))
	require.NoError(t, err)
	assert.Equal(t, "Cool picture", post.Common.Title)
}
