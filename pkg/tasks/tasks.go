package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeGenerateAudio = "audio:generate"
	TypeGenerateImage = "image:generate"
	TypeCleanupDrafts = "drafts:cleanup"
)

// GenerateAudioTaskPayload carries everything the audio flow needs at
// issuance time. Seq is the draft's request-sequence token: the worker may
// only commit a result while the draft still holds the same sequence, so a
// re-triggered generation supersedes any in-flight one.
type GenerateAudioTaskPayload struct {
	DraftID string
	Seq     int
	Prompt  string
	Voice   string
}

func NewGenerateAudioTask(draftID string, seq int, prompt, voiceType string) (*asynq.Task, error) {
	payload, err := json.Marshal(GenerateAudioTaskPayload{
		DraftID: draftID,
		Seq:     seq,
		Prompt:  prompt,
		Voice:   voiceType,
	})
	if err != nil {
		return nil, err
	}
	// One attempt only: generation is never retried automatically, every
	// retry is a fresh user action.
	return asynq.NewTask(TypeGenerateAudio, payload, asynq.MaxRetry(0)), nil
}

// GenerateImageTaskPayload is the image counterpart of GenerateAudioTaskPayload.
type GenerateImageTaskPayload struct {
	DraftID string
	Seq     int
	Prompt  string
}

func NewGenerateImageTask(draftID string, seq int, prompt string) (*asynq.Task, error) {
	payload, err := json.Marshal(GenerateImageTaskPayload{
		DraftID: draftID,
		Seq:     seq,
		Prompt:  prompt,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeGenerateImage, payload, asynq.MaxRetry(0)), nil
}

func NewCleanupDraftsTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeCleanupDrafts, nil), nil
}
