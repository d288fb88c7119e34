package feed

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/eduncan911/podcast"

	"podify/internal/models"
)

func getBaseURL(r *http.Request) string {
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		return baseURL
	}

	scheme := r.URL.Scheme
	if scheme == "" {
		scheme = "https"
		if r.Header.Get("X-Forwarded-Proto") != "" {
			scheme = r.Header.Get("X-Forwarded-Proto")
		}
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// GenerateRSS renders the published podcasts as an RSS feed. Audio and image
// URLs point straight at the media store.
func GenerateRSS(podcasts []models.Podcast, r *http.Request) (string, error) {
	baseURL := getBaseURL(r)

	now := time.Now()
	p := podcast.New(
		"Podify",
		baseURL,
		"AI-narrated podcasts created by the Podify community.",
		&now, &now,
	)

	for _, pc := range podcasts {
		pubDate := pc.CreatedAt
		item := podcast.Item{
			Title:       pc.Title,
			Description: pc.Description,
			PubDate:     &pubDate,
		}
		item.AddEnclosure(pc.AudioURL, podcast.MP3, 0)
		item.AddImage(pc.ImageURL)
		item.AddDuration(int64(pc.AudioDurationSeconds))
		if _, err := p.AddItem(item); err != nil {
			return "", err
		}
	}

	return p.String(), nil
}
