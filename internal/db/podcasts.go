package db

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"podify/internal/models"
)

// CreatePodcastParams is the full snapshot a submission carries. No partial
// records: the create either persists every field or nothing.
type CreatePodcastParams struct {
	UserID               int64
	Title                string
	Description          string
	VoiceType            string
	VoicePrompt          string
	ImagePrompt          string
	AudioURL             string
	AudioObject          string
	AudioDurationSeconds float64
	ImageURL             string
	ImageObject          string
}

// CreatePodcast inserts a new podcast record with views initialized to zero.
// Missing required fields are rejected here as a backstop behind the
// submission orchestrator's own completeness check.
func CreatePodcast(p CreatePodcastParams) (*models.Podcast, error) {
	required := map[string]string{
		"title":        p.Title,
		"description":  p.Description,
		"voice_type":   p.VoiceType,
		"audio_url":    p.AudioURL,
		"audio_object": p.AudioObject,
		"image_url":    p.ImageURL,
		"image_object": p.ImageObject,
	}
	for field, value := range required {
		if value == "" {
			return nil, fmt.Errorf("podcast is missing required field %s", field)
		}
	}

	query := `
		INSERT INTO podcasts (id, user_id, title, description, voice_type, voice_prompt,
			image_prompt, audio_url, audio_object, audio_duration_seconds, image_url, image_object, views)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0)
		RETURNING *
	`
	podcast := &models.Podcast{}
	err := DB.Get(podcast, query,
		uuid.NewString(), p.UserID, p.Title, p.Description, p.VoiceType, p.VoicePrompt,
		p.ImagePrompt, p.AudioURL, p.AudioObject, p.AudioDurationSeconds, p.ImageURL, p.ImageObject)
	if err != nil {
		log.Printf("Error creating podcast for user %d: %v", p.UserID, err)
		return nil, err
	}
	return podcast, nil
}

// GetPodcastByID returns a single podcast.
func GetPodcastByID(id string) (*models.Podcast, error) {
	podcast := &models.Podcast{}
	err := DB.Get(podcast, "SELECT * FROM podcasts WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	return podcast, nil
}

// GetLatestPodcasts returns the most recently published podcasts.
func GetLatestPodcasts(limit int) ([]models.Podcast, error) {
	var podcasts []models.Podcast
	err := DB.Select(&podcasts, "SELECT * FROM podcasts ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		log.Printf("Error getting latest podcasts: %v", err)
		return nil, err
	}
	return podcasts, nil
}

// GetTrendingPodcasts returns podcasts ordered by view count. This feeds the
// front page carousel.
func GetTrendingPodcasts(limit int) ([]models.Podcast, error) {
	var podcasts []models.Podcast
	err := DB.Select(&podcasts, "SELECT * FROM podcasts ORDER BY views DESC, created_at DESC LIMIT $1", limit)
	if err != nil {
		log.Printf("Error getting trending podcasts: %v", err)
		return nil, err
	}
	return podcasts, nil
}

// GetPodcastsByUserID returns a user's published podcasts, newest first.
func GetPodcastsByUserID(userID int64) ([]models.Podcast, error) {
	var podcasts []models.Podcast
	err := DB.Select(&podcasts,
		"SELECT * FROM podcasts WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		log.Printf("Error getting podcasts for user %d: %v", userID, err)
		return nil, err
	}
	return podcasts, nil
}

// ObjectReferenced reports whether a published podcast still uses the storage
// object. A submitted draft keeps pointing at the same media as the podcast it
// produced, so draft-side cleanup must check here before removing anything.
func ObjectReferenced(object string) (bool, error) {
	var referenced bool
	err := DB.Get(&referenced,
		"SELECT EXISTS (SELECT 1 FROM podcasts WHERE audio_object = $1 OR image_object = $1)", object)
	if err != nil {
		return false, err
	}
	return referenced, nil
}

// IncrementPodcastViews bumps the server-authoritative view counter.
func IncrementPodcastViews(id string) error {
	res, err := DB.Exec("UPDATE podcasts SET views = views + 1 WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
