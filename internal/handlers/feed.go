package handlers

import (
	"log"
	"net/http"

	"podify/internal/db"
	"podify/internal/feed"
)

const feedLimit = 100

// GetRSSFeed serves the public RSS feed of published podcasts.
func (h *Handlers) GetRSSFeed(w http.ResponseWriter, r *http.Request) {
	podcasts, err := db.GetLatestPodcasts(feedLimit)
	if err != nil {
		log.Printf("Error getting podcasts for feed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rss, err := feed.GenerateRSS(podcasts, r)
	if err != nil {
		log.Printf("Error generating RSS: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml")
	w.Write([]byte(rss))
}
