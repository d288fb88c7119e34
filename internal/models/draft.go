package models

import "time"

// Draft is the staging area for a podcast that has not been published yet.
// Its fields are written by disjoint owners: the voice endpoint sets VoiceType,
// the audio generation flow sets VoicePrompt and the Audio* fields, the image
// flow sets ImagePrompt and the Image* fields. Submission only reads.
type Draft struct {
	ID                   string    `db:"id" json:"id"`
	UserID               int64     `db:"user_id" json:"-"`
	VoiceType            *string   `db:"voice_type" json:"voiceType"`
	VoicePrompt          string    `db:"voice_prompt" json:"voicePrompt"`
	ImagePrompt          string    `db:"image_prompt" json:"imagePrompt"`
	AudioURL             *string   `db:"audio_url" json:"audioUrl"`
	AudioObject          *string   `db:"audio_object" json:"audioStorageId"`
	AudioDurationSeconds float64   `db:"audio_duration_seconds" json:"audioDuration"`
	AudioSeq             int       `db:"audio_seq" json:"-"`
	AudioStatus          string    `db:"audio_status" json:"audioStatus"`
	ImageURL             *string   `db:"image_url" json:"imageUrl"`
	ImageObject          *string   `db:"image_object" json:"imageStorageId"`
	ImageSeq             int       `db:"image_seq" json:"-"`
	ImageStatus          string    `db:"image_status" json:"imageStatus"`
	CreatedAt            time.Time `db:"created_at" json:"-"`
	UpdatedAt            time.Time `db:"updated_at" json:"-"`
}

// HasAudio reports whether a generated audio resource is attached.
func (d *Draft) HasAudio() bool {
	return d.AudioURL != nil && *d.AudioURL != "" && d.AudioObject != nil && *d.AudioObject != ""
}

// HasImage reports whether a generated or uploaded image resource is attached.
func (d *Draft) HasImage() bool {
	return d.ImageURL != nil && *d.ImageURL != "" && d.ImageObject != nil && *d.ImageObject != ""
}

// HasVoice reports whether a voice has been selected.
func (d *Draft) HasVoice() bool {
	return d.VoiceType != nil && *d.VoiceType != ""
}
