package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"podify/internal/db"
	"podify/internal/voice"
	"podify/pkg/tasks"
)

// DraftTTL is how long an untouched draft survives before the cleanup task
// removes it.
const DraftTTL = 24 * time.Hour

// Generator produces narration audio and cover art. Implemented by
// genai.Client, mocked in tests.
type Generator interface {
	Speech(ctx context.Context, prompt string, v voice.ID) ([]byte, float64, error)
	Image(ctx context.Context, prompt string) ([]byte, error)
}

// ObjectStore persists generated media. Implemented by storage.Client.
type ObjectStore interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, objectName string) error
}

type TaskHandler struct {
	gen   Generator
	store ObjectStore
}

func NewTaskHandler(gen Generator, store ObjectStore) *TaskHandler {
	return &TaskHandler{gen: gen, store: store}
}

// HandleGenerateAudioTask runs one audio generation request. The payload's
// sequence token must still match the draft for any write to land: a request
// superseded by a newer one, or whose draft was deleted, resolves as a no-op.
func (h *TaskHandler) HandleGenerateAudioTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.GenerateAudioTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	v, err := voice.Parse(p.Voice)
	if err != nil {
		return fmt.Errorf("audio task for draft %s: %w", p.DraftID, err)
	}

	authoritative, err := db.MarkAudioProcessing(p.DraftID, p.Seq)
	if err != nil {
		return fmt.Errorf("failed to mark audio processing: %w", err)
	}
	if !authoritative {
		log.Printf("Audio request %d for draft %s superseded, skipping", p.Seq, p.DraftID)
		return nil
	}

	data, duration, err := h.gen.Speech(ctx, p.Prompt, v)
	if err != nil {
		log.Printf("Audio generation failed for draft %s: %v", p.DraftID, err)
		if _, ferr := db.FailAudioGeneration(p.DraftID, p.Seq); ferr != nil {
			log.Printf("Failed to mark audio generation failed: %v", ferr)
		}
		return err
	}

	objectName := fmt.Sprintf("audio/%s.mp3", uuid.NewString())
	url, err := h.store.Upload(ctx, objectName, data, "audio/mpeg")
	if err != nil {
		log.Printf("Audio upload failed for draft %s: %v", p.DraftID, err)
		if _, ferr := db.FailAudioGeneration(p.DraftID, p.Seq); ferr != nil {
			log.Printf("Failed to mark audio generation failed: %v", ferr)
		}
		return err
	}

	// Cancellation check before committing anything to shared state.
	if ctx.Err() != nil {
		h.removeObject(objectName)
		return ctx.Err()
	}

	committed, replaced, err := db.CompleteAudioGeneration(p.DraftID, p.Seq, url, objectName, duration)
	if err != nil {
		return fmt.Errorf("failed to commit audio result: %w", err)
	}
	if !committed {
		// Lost the race against a newer request or a deleted draft.
		log.Printf("Discarding stale audio result for draft %s (seq %d)", p.DraftID, p.Seq)
		h.removeObject(objectName)
		return nil
	}
	if replaced != "" {
		h.releaseObject(ctx, replaced)
	}

	log.Printf("Audio generated for draft %s (%.1fs)", p.DraftID, duration)
	return nil
}

// HandleGenerateImageTask runs one image generation request, symmetric to the
// audio flow.
func (h *TaskHandler) HandleGenerateImageTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.GenerateImageTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	authoritative, err := db.MarkImageProcessing(p.DraftID, p.Seq)
	if err != nil {
		return fmt.Errorf("failed to mark image processing: %w", err)
	}
	if !authoritative {
		log.Printf("Image request %d for draft %s superseded, skipping", p.Seq, p.DraftID)
		return nil
	}

	data, err := h.gen.Image(ctx, p.Prompt)
	if err != nil {
		log.Printf("Image generation failed for draft %s: %v", p.DraftID, err)
		if _, ferr := db.FailImageGeneration(p.DraftID, p.Seq); ferr != nil {
			log.Printf("Failed to mark image generation failed: %v", ferr)
		}
		return err
	}

	objectName := fmt.Sprintf("images/%s.png", uuid.NewString())
	url, err := h.store.Upload(ctx, objectName, data, "image/png")
	if err != nil {
		log.Printf("Image upload failed for draft %s: %v", p.DraftID, err)
		if _, ferr := db.FailImageGeneration(p.DraftID, p.Seq); ferr != nil {
			log.Printf("Failed to mark image generation failed: %v", ferr)
		}
		return err
	}

	if ctx.Err() != nil {
		h.removeObject(objectName)
		return ctx.Err()
	}

	committed, replaced, err := db.CompleteImageGeneration(p.DraftID, p.Seq, url, objectName)
	if err != nil {
		return fmt.Errorf("failed to commit image result: %w", err)
	}
	if !committed {
		log.Printf("Discarding stale image result for draft %s (seq %d)", p.DraftID, p.Seq)
		h.removeObject(objectName)
		return nil
	}
	if replaced != "" {
		h.releaseObject(ctx, replaced)
	}

	log.Printf("Image generated for draft %s", p.DraftID)
	return nil
}

// HandleCleanupDraftsTask removes drafts idle past the TTL along with the
// media they were still holding. A submitted draft goes idle too, but its
// media now belongs to the published podcast and must survive the sweep.
func (h *TaskHandler) HandleCleanupDraftsTask(ctx context.Context, t *asynq.Task) error {
	objects, err := db.DeleteIdleDrafts(DraftTTL)
	if err != nil {
		return fmt.Errorf("failed to delete idle drafts: %w", err)
	}

	for _, object := range objects {
		h.releaseObject(ctx, object)
	}

	if len(objects) > 0 {
		log.Printf("Cleaned up idle drafts, released %d held objects", len(objects))
	}
	return nil
}

// releaseObject removes a previously committed draft object unless a
// published podcast still references it.
func (h *TaskHandler) releaseObject(ctx context.Context, objectName string) {
	referenced, err := db.ObjectReferenced(objectName)
	if err != nil {
		log.Printf("Failed to check references for object %s: %v", objectName, err)
		return
	}
	if referenced {
		return
	}
	if err := h.store.Remove(ctx, objectName); err != nil {
		log.Printf("Failed to remove object %s: %v", objectName, err)
	}
}

func (h *TaskHandler) removeObject(objectName string) {
	// Best effort, detached from the (possibly cancelled) task context.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.store.Remove(ctx, objectName); err != nil {
		log.Printf("Failed to remove uncommitted object %s: %v", objectName, err)
	}
}
