package handler

import (
	"encoding/xml"
	"fmt"
	"net/http"

	"stormcenter/internal/service"
)

const sitemapDateFormat = "2006-01-02"

// sitemapPostLimit bounds the sitemap to the same window a crawler can reach
// through the listing pages in a reasonable number of hops.
const sitemapPostLimit = 1000

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	blog    *service.BlogService
	baseURL string
}

// NewSeoHandler creates a new SeoHandler.
func NewSeoHandler(blog *service.BlogService, baseURL string) *SeoHandler {
	return &SeoHandler{blog: blog, baseURL: baseURL}
}

// robotsHandler serves a static robots.txt file.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Sitemap: %s/sitemap.xml\n", h.baseURL)
}

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapHandler generates and serves a dynamic sitemap.xml covering the
// published posts only.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blog.LatestPosts(r.Context(), sitemapPostLimit)
	if err != nil {
		http.Error(w, "Failed to retrieve posts for sitemap", http.StatusInternalServerError)
		return
	}

	sitemap := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, len(posts)),
	}

	for i, post := range posts {
		sitemap.URLs[i] = sitemapURL{
			Loc:     fmt.Sprintf("%s/blog/post/%s/", h.baseURL, post.Slug),
			LastMod: post.UpdatedAt.Format(sitemapDateFormat),
		}
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(sitemap); err != nil {
		http.Error(w, "Failed to generate sitemap XML", http.StatusInternalServerError)
		return
	}
}
