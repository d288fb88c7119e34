// Package submit implements the podcast submission workflow: it validates the
// user-entered form, checks that both generated assets are attached to the
// draft, and performs the single create against the store. Any failure leaves
// the draft exactly as it was, so the user can retry without re-entering data
// or re-generating assets.
package submit

import (
	"database/sql"
	"errors"
	"fmt"

	"podify/internal/db"
	"podify/internal/models"
	"podify/internal/validate"
)

// ErrIncomplete is returned when the draft is missing the selected voice or
// either generated asset. The create call is never issued in that case.
var ErrIncomplete = errors.New("draft is missing voice, audio or image")

// ErrDraftNotFound is returned when the draft does not exist or belongs to
// another user.
var ErrDraftNotFound = errors.New("draft not found")

// ValidationError carries the per-field messages of a rejected form.
type ValidationError struct {
	Fields validate.FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid podcast form: %d field(s) rejected", len(e.Fields))
}

// PersistenceError wraps a rejection from the store. The draft remains intact.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "failed to persist podcast: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Request is the submit action payload: the draft to consume plus the form
// fields entered alongside it.
type Request struct {
	DraftID     string
	Title       string
	Description string
}

// Submit runs the submission workflow for the user's draft and returns the
// created podcast. The steps run strictly in order and stop at the first
// failure:
//
//  1. form validation; no reads or writes happen on a rejected form
//  2. completeness check; voice, audio and image must all be attached
//  3. a single create carrying the full draft snapshot, views starting at 0
//
// Submission is not idempotent: a retry after failure, or a rapid double
// submit of a still-complete draft, issues a brand-new create request.
func Submit(userID int64, req Request) (*models.Podcast, error) {
	if fields := validate.Form(req.Title, req.Description); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	draft, err := db.GetDraftForUser(req.DraftID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDraftNotFound
		}
		return nil, &PersistenceError{Err: err}
	}

	if !draft.HasVoice() || !draft.HasAudio() || !draft.HasImage() {
		return nil, ErrIncomplete
	}

	podcast, err := db.CreatePodcast(db.CreatePodcastParams{
		UserID:               userID,
		Title:                req.Title,
		Description:          req.Description,
		VoiceType:            *draft.VoiceType,
		VoicePrompt:          draft.VoicePrompt,
		ImagePrompt:          draft.ImagePrompt,
		AudioURL:             *draft.AudioURL,
		AudioObject:          *draft.AudioObject,
		AudioDurationSeconds: draft.AudioDurationSeconds,
		ImageURL:             *draft.ImageURL,
		ImageObject:          *draft.ImageObject,
	})
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return podcast, nil
}
