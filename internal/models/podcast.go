package models

import "time"

// Podcast is a published podcast record. Ownership transfers to the store on
// creation; the views counter is server-authoritative from then on.
type Podcast struct {
	ID                   string    `db:"id" json:"id"`
	UserID               int64     `db:"user_id" json:"authorId"`
	Title                string    `db:"title" json:"title"`
	Description          string    `db:"description" json:"description"`
	VoiceType            string    `db:"voice_type" json:"voiceType"`
	VoicePrompt          string    `db:"voice_prompt" json:"voicePrompt"`
	ImagePrompt          string    `db:"image_prompt" json:"imagePrompt"`
	AudioURL             string    `db:"audio_url" json:"audioUrl"`
	AudioObject          string    `db:"audio_object" json:"audioStorageId"`
	AudioDurationSeconds float64   `db:"audio_duration_seconds" json:"audioDuration"`
	ImageURL             string    `db:"image_url" json:"imageUrl"`
	ImageObject          string    `db:"image_object" json:"imageStorageId"`
	Views                int64     `db:"views" json:"views"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`
}
