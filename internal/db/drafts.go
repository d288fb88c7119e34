package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"podify/internal/models"
)

// Generation progress of a draft asset. Failure never clears a previously
// committed resource; it only surfaces on the status column.
const (
	StatusNone       = "NONE"
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// CreateDraft creates an empty draft for the user.
func CreateDraft(userID int64) (models.Draft, error) {
	draft := models.Draft{}
	query := `
		INSERT INTO drafts (id, user_id)
		VALUES ($1, $2)
		RETURNING *
	`
	err := DB.Get(&draft, query, uuid.NewString(), userID)
	return draft, err
}

// GetDraftForUser returns the draft only if it belongs to the user.
func GetDraftForUser(id string, userID int64) (models.Draft, error) {
	draft := models.Draft{}
	err := DB.Get(&draft, "SELECT * FROM drafts WHERE id = $1 AND user_id = $2", id, userID)
	return draft, err
}

// SetDraftVoice records the selected voice. The voice endpoint is the only
// writer of this field.
func SetDraftVoice(id string, userID int64, voiceType string) error {
	query := `
		UPDATE drafts
		SET voice_type = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	res, err := DB.Exec(query, id, userID, voiceType)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// RequestAudioGeneration stores the prompt and advances the audio request
// sequence. The returned sequence number is the token the resulting task must
// present to commit its result: only the latest-issued request is authoritative.
func RequestAudioGeneration(id string, userID int64, prompt string) (int, error) {
	var seq int
	query := `
		UPDATE drafts
		SET audio_seq = audio_seq + 1, voice_prompt = $3, audio_status = $4, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING audio_seq
	`
	err := DB.Get(&seq, query, id, userID, prompt, StatusPending)
	return seq, err
}

// RequestImageGeneration is the image counterpart of RequestAudioGeneration.
func RequestImageGeneration(id string, userID int64, prompt string) (int, error) {
	var seq int
	query := `
		UPDATE drafts
		SET image_seq = image_seq + 1, image_prompt = $3, image_status = $4, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING image_seq
	`
	err := DB.Get(&seq, query, id, userID, prompt, StatusPending)
	return seq, err
}

// MarkAudioProcessing flips the audio status to PROCESSING if the request is
// still the latest one. It reports whether the caller remains authoritative.
func MarkAudioProcessing(id string, seq int) (bool, error) {
	res, err := DB.Exec(
		"UPDATE drafts SET audio_status = $3, updated_at = NOW() WHERE id = $1 AND audio_seq = $2",
		id, seq, StatusProcessing)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

// MarkImageProcessing is the image counterpart of MarkAudioProcessing.
func MarkImageProcessing(id string, seq int) (bool, error) {
	res, err := DB.Exec(
		"UPDATE drafts SET image_status = $3, updated_at = NOW() WHERE id = $1 AND image_seq = $2",
		id, seq, StatusProcessing)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

// CompleteAudioGeneration commits a generated audio resource, guarded by the
// request sequence. A stale or post-deletion result affects zero rows and is
// reported as not committed so the caller can discard the uploaded object.
// On commit it also returns the object key the new audio replaced, if any,
// so the caller can release the old media.
func CompleteAudioGeneration(id string, seq int, url, object string, durationSeconds float64) (bool, string, error) {
	query := `
		UPDATE drafts d
		SET audio_url = $3, audio_object = $4, audio_duration_seconds = $5, audio_status = $6, updated_at = NOW()
		FROM drafts prev
		WHERE d.id = prev.id AND d.id = $1 AND d.audio_seq = $2
		RETURNING COALESCE(prev.audio_object, '')
	`
	var replaced string
	err := DB.Get(&replaced, query, id, seq, url, object, durationSeconds, StatusCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return true, replaced, nil
}

// CompleteImageGeneration commits a generated image resource, guarded by the
// request sequence. Like the audio counterpart it returns the replaced
// object key on commit.
func CompleteImageGeneration(id string, seq int, url, object string) (bool, string, error) {
	query := `
		UPDATE drafts d
		SET image_url = $3, image_object = $4, image_status = $5, updated_at = NOW()
		FROM drafts prev
		WHERE d.id = prev.id AND d.id = $1 AND d.image_seq = $2
		RETURNING COALESCE(prev.image_object, '')
	`
	var replaced string
	err := DB.Get(&replaced, query, id, seq, url, object, StatusCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return true, replaced, nil
}

// FailAudioGeneration marks the audio flow as failed without touching any
// previously committed audio fields.
func FailAudioGeneration(id string, seq int) (bool, error) {
	res, err := DB.Exec(
		"UPDATE drafts SET audio_status = $3, updated_at = NOW() WHERE id = $1 AND audio_seq = $2",
		id, seq, StatusFailed)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

// FailImageGeneration is the image counterpart of FailAudioGeneration.
func FailImageGeneration(id string, seq int) (bool, error) {
	res, err := DB.Exec(
		"UPDATE drafts SET image_status = $3, updated_at = NOW() WHERE id = $1 AND image_seq = $2",
		id, seq, StatusFailed)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

// SetDraftImageUpload attaches a directly uploaded image. The sequence is
// advanced so that any in-flight prompt generation resolves as stale instead
// of clobbering the upload. Both entry paths converge on the same fields.
// It returns the object key the upload replaced, if any.
func SetDraftImageUpload(id string, userID int64, url, object string) (string, error) {
	query := `
		UPDATE drafts d
		SET image_seq = d.image_seq + 1, image_url = $3, image_object = $4, image_status = $5, updated_at = NOW()
		FROM drafts prev
		WHERE d.id = prev.id AND d.id = $1 AND d.user_id = $2
		RETURNING COALESCE(prev.image_object, '')
	`
	var replaced string
	if err := DB.Get(&replaced, query, id, userID, url, object, StatusCompleted); err != nil {
		return "", err
	}
	return replaced, nil
}

// DeleteDraft removes the draft and returns the storage objects it was still
// holding, so the caller can release them. In-flight generation results for
// the draft become no-ops through the sequence guard.
func DeleteDraft(id string, userID int64) ([]string, error) {
	var row struct {
		AudioObject *string `db:"audio_object"`
		ImageObject *string `db:"image_object"`
	}
	query := `
		DELETE FROM drafts
		WHERE id = $1 AND user_id = $2
		RETURNING audio_object, image_object
	`
	if err := DB.Get(&row, query, id, userID); err != nil {
		return nil, err
	}

	var objects []string
	if row.AudioObject != nil && *row.AudioObject != "" {
		objects = append(objects, *row.AudioObject)
	}
	if row.ImageObject != nil && *row.ImageObject != "" {
		objects = append(objects, *row.ImageObject)
	}
	return objects, nil
}

// DeleteIdleDrafts removes drafts that have not been touched within maxAge
// and returns the storage objects they were still holding. The caller decides
// which of them to remove; a published podcast may still reference some.
func DeleteIdleDrafts(maxAge time.Duration) ([]string, error) {
	var rows []struct {
		AudioObject *string `db:"audio_object"`
		ImageObject *string `db:"image_object"`
	}
	query := `
		DELETE FROM drafts
		WHERE updated_at < NOW() - make_interval(secs => $1)
		RETURNING audio_object, image_object
	`
	if err := DB.Select(&rows, query, maxAge.Seconds()); err != nil {
		return nil, err
	}

	var objects []string
	for _, row := range rows {
		if row.AudioObject != nil && *row.AudioObject != "" {
			objects = append(objects, *row.AudioObject)
		}
		if row.ImageObject != nil && *row.ImageObject != "" {
			objects = append(objects, *row.ImageObject)
		}
	}
	return objects, nil
}
