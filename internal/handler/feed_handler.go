package handler

import (
	"net/http"

	"stormcenter/internal/logger"
	"stormcenter/internal/service"
)

// FeedHandler serves the RSS and Atom feeds.
type FeedHandler struct {
	feed *service.FeedService
	log  logger.Logger
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(feed *service.FeedService, log logger.Logger) *FeedHandler {
	return &FeedHandler{feed: feed, log: log}
}

// rssHandler serves the RSS 2.0 feed. Settings failures are absorbed inside
// the feed service; only a post query failure surfaces as a 500.
func (h *FeedHandler) rssHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if err := h.feed.WriteRSS(r.Context(), w); err != nil {
		h.log.Error(err, "Failed to generate RSS feed")
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
	}
}

// atomHandler serves the Atom 1.0 feed.
func (h *FeedHandler) atomHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	if err := h.feed.WriteAtom(r.Context(), w); err != nil {
		h.log.Error(err, "Failed to generate Atom feed")
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
	}
}
