// Package scraper turns URLs of social/media posts into a normalized Post
// via one site-specific scraper per supported source.
package scraper

import (
	"context"
	"errors"
	"net/url"
)

// ErrNoScraperAvailable is returned by the registry when no registered
// scraper recognizes a URL.
var ErrNoScraperAvailable = errors.New("no scraper available")

// Comment is a remote user's commentary attached to a post.
type Comment struct {
	Author string
	Text   string
}

// PostCommonData is the part of a post every source provides. Src is always
// a fully resolved absolute URL and Origin is a non-empty human-readable
// source label.
type PostCommonData struct {
	Src     *url.URL
	Origin  string
	Title   string
	Text    string
	NSFW    bool
	Spoiler bool
	Comment *Comment
}

// PostSpecializedData describes a post's primary media payload. It is a
// closed variant: exactly TextOnly, Image, Gallery, Video or VideoThumbnail.
type PostSpecializedData interface {
	specializedData()
}

type TextOnly struct{}

type Image struct {
	ImgURL *url.URL
}

// Gallery never holds fewer than two URLs; a single-image gallery collapses
// to Image at construction.
type Gallery struct {
	ImgURLs []*url.URL
}

type Video struct {
	VideoURL *url.URL
}

type VideoThumbnail struct {
	ThumbnailURL *url.URL
}

func (TextOnly) specializedData()       {}
func (Image) specializedData()          {}
func (Gallery) specializedData()        {}
func (Video) specializedData()          {}
func (VideoThumbnail) specializedData() {}

// Post is the normalized representation of one scraped content item.
// Immutable once constructed: produced entirely by a scraper, consumed
// entirely by the renderer.
type Post struct {
	Common      PostCommonData
	Specialized PostSpecializedData
}

// Scraper extracts a Post from URLs it recognizes.
type Scraper interface {
	// IsSuitable reports whether this scraper handles the URL. Pure
	// domain/host match, no network.
	IsSuitable(u *url.URL) bool

	// ScrapePost fetches and parses the post behind the URL.
	ScrapePost(ctx context.Context, u *url.URL) (*Post, error)
}

// Registry dispatches URLs to the first suitable scraper. Registration
// order is the priority order: when two scrapers claim the same domain the
// earlier registration wins, nothing is flagged.
type Registry struct {
	scrapers []Scraper
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends s to the ordered scraper list. Not safe for use
// concurrently with Find or Scrape; register everything during startup.
func (r *Registry) Register(s Scraper) {
	r.scrapers = append(r.scrapers, s)
}

// Find returns the first registered scraper whose IsSuitable returns true,
// or nil. Safe for unsynchronized concurrent reads once registration is
// done.
func (r *Registry) Find(u *url.URL) Scraper {
	for _, s := range r.scrapers {
		if s.IsSuitable(u) {
			return s
		}
	}
	return nil
}

// Scrape clears the URL fragment, dispatches to the matching scraper and
// propagates its result. Returns ErrNoScraperAvailable when nothing
// matches.
func (r *Registry) Scrape(ctx context.Context, u *url.URL) (*Post, error) {
	s := r.Find(u)
	if s == nil {
		return nil, ErrNoScraperAvailable
	}

	clean := *u
	clean.Fragment = ""
	clean.RawFragment = ""

	return s.ScrapePost(ctx, &clean)
}
