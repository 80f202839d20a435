package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"stormcenter/internal/data"
	"time"
)

const feedItemLimit = 20

// SettingsAccessor is the read side of the settings repository. On store
// failure implementations return the hard-coded defaults together with the
// error, so the feed can always render.
type SettingsAccessor interface {
	Get(ctx context.Context) (*data.SiteSettings, error)
}

// FeedService projects the newest published posts into RSS and Atom feeds,
// attaching ISSN and publisher metadata from the site settings.
type FeedService struct {
	posts    PostRepository
	settings SettingsAccessor
	baseURL  string
}

// NewFeedService creates a new FeedService. baseURL is the absolute site
// root used for item links, without a trailing slash.
func NewFeedService(posts PostRepository, settings SettingsAccessor, baseURL string) *FeedService {
	return &FeedService{posts: posts, settings: settings, baseURL: baseURL}
}

type rssFeed struct {
	XMLName    xml.Name   `xml:"rss"`
	Version    string     `xml:"version,attr"`
	XmlnsDC    string     `xml:"xmlns:dc,attr"`
	XmlnsPrism string     `xml:"xmlns:prism,attr"`
	Channel    rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	ISSN        string    `xml:"prism:issn,omitempty"`
	Publisher   string    `xml:"dc:publisher,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Creator     string `xml:"dc:creator"`
	Category    string `xml:"category"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

type atomFeed struct {
	XMLName    xml.Name    `xml:"feed"`
	Xmlns      string      `xml:"xmlns,attr"`
	XmlnsDC    string      `xml:"xmlns:dc,attr"`
	XmlnsPrism string      `xml:"xmlns:prism,attr"`
	Title      string      `xml:"title"`
	Subtitle   string      `xml:"subtitle"`
	ID         string      `xml:"id"`
	Link       atomLink    `xml:"link"`
	Updated    string      `xml:"updated"`
	ISSN       string      `xml:"prism:issn,omitempty"`
	Publisher  string      `xml:"dc:publisher,omitempty"`
	Entries    []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
}

type atomEntry struct {
	Title     string   `xml:"title"`
	Link      atomLink `xml:"link"`
	ID        string   `xml:"id"`
	Updated   string   `xml:"updated"`
	Published string   `xml:"published"`
	Author    struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Category struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`
	Summary string `xml:"summary"`
}

// WriteRSS writes the RSS 2.0 feed of the 20 newest published posts.
// A settings store failure degrades to the default metadata; only a post
// query failure is an error.
func (s *FeedService) WriteRSS(ctx context.Context, w io.Writer) error {
	settings, posts, err := s.load(ctx)
	if err != nil {
		return err
	}

	feed := rssFeed{
		Version:    "2.0",
		XmlnsDC:    "http://purl.org/dc/elements/1.1/",
		XmlnsPrism: "http://prismstandard.org/namespaces/basic/2.0/",
		Channel: rssChannel{
			Title:       settings.SiteName,
			Link:        s.baseURL + "/",
			Description: feedDescription(settings),
			ISSN:        settings.ISSN,
			Publisher:   settings.PublisherName,
		},
	}
	for _, post := range posts {
		feed.Channel.Items = append(feed.Channel.Items, rssItem{
			Title:       post.Title,
			Link:        s.postLink(post),
			Description: post.Excerpt,
			Creator:     post.AuthorDisplayName(),
			Category:    categoryLabel(post),
			PubDate:     pubTime(post).Format(time.RFC1123Z),
			GUID:        s.postLink(post),
		})
	}
	return writeXML(w, feed)
}

// WriteAtom writes the Atom 1.0 variant of the same projection.
func (s *FeedService) WriteAtom(ctx context.Context, w io.Writer) error {
	settings, posts, err := s.load(ctx)
	if err != nil {
		return err
	}

	feed := atomFeed{
		Xmlns:      "http://www.w3.org/2005/Atom",
		XmlnsDC:    "http://purl.org/dc/elements/1.1/",
		XmlnsPrism: "http://prismstandard.org/namespaces/basic/2.0/",
		Title:      settings.SiteName,
		Subtitle:   feedDescription(settings),
		ID:         s.baseURL + "/",
		Link:       atomLink{Href: s.baseURL + "/blog/feed/atom/", Rel: "self"},
		Updated:    time.Now().Format(time.RFC3339),
		ISSN:       settings.ISSN,
		Publisher:  settings.PublisherName,
	}
	if len(posts) > 0 {
		feed.Updated = pubTime(posts[0]).Format(time.RFC3339)
	}
	for _, post := range posts {
		entry := atomEntry{
			Title:     post.Title,
			Link:      atomLink{Href: s.postLink(post)},
			ID:        s.postLink(post),
			Updated:   post.UpdatedAt.Format(time.RFC3339),
			Published: pubTime(post).Format(time.RFC3339),
			Summary:   post.Excerpt,
		}
		entry.Author.Name = post.AuthorDisplayName()
		entry.Category.Term = categoryLabel(post)
		feed.Entries = append(feed.Entries, entry)
	}
	return writeXML(w, feed)
}

// load fetches settings (degrading to defaults on store failure) and the
// newest published posts.
func (s *FeedService) load(ctx context.Context) (*data.SiteSettings, []*data.Post, error) {
	// The accessor hands back DefaultSettings alongside the error, which is
	// exactly the degraded behavior the feed wants. The error itself is
	// dropped here; the settings middleware logs store failures already.
	settings, _ := s.settings.Get(ctx)

	posts, err := s.posts.Latest(ctx, feedItemLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load feed posts: %w", err)
	}
	return settings, posts, nil
}

func (s *FeedService) postLink(post *data.Post) string {
	return fmt.Sprintf("%s/blog/post/%s/", s.baseURL, post.Slug)
}

// feedDescription appends the ISSN to the channel description when one is
// configured, mirroring how the site lists its serial registration.
func feedDescription(settings *data.SiteSettings) string {
	desc := settings.SiteDescription
	if settings.ISSN != "" {
		desc += fmt.Sprintf(" | ISSN: %s", settings.ISSN)
	}
	return desc
}

// pubTime falls back to the creation time for rows published without an
// explicit publish timestamp.
func pubTime(post *data.Post) time.Time {
	if post.PublishedAt != nil {
		return *post.PublishedAt
	}
	return post.CreatedAt
}

func categoryLabel(post *data.Post) string {
	if post.CategoryName == "" {
		return "Uncategorized"
	}
	return post.CategoryName
}

func writeXML(w io.Writer, v interface{}) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	return encoder.Encode(v)
}
