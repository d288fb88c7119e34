package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"podify/internal/db"
	"podify/internal/voice"
	"podify/pkg/tasks"
)

// MediaStore holds user-provided and generated media. Implemented by
// storage.Client, mocked in tests.
type MediaStore interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, objectName string) error
}

type Handlers struct {
	asynqClient  tasks.TaskEnqueuer
	store        MediaStore
	previewsPath string
}

func New(asynqClient tasks.TaskEnqueuer, store MediaStore, previewsPath string) *Handlers {
	return &Handlers{
		asynqClient:  asynqClient,
		store:        store,
		previewsPath: previewsPath,
	}
}

// Notice is a short user-facing message. Variant "default" is informational,
// "destructive" signals a failure.
type Notice struct {
	Title   string `json:"title"`
	Variant string `json:"variant"`
}

func infoNotice(title string) Notice {
	return Notice{Title: title, Variant: "default"}
}

func destructiveNotice(title string) Notice {
	return Notice{Title: title, Variant: "destructive"}
}

// releaseObject removes a draft's storage object unless a published podcast
// still references it. Submission copies the object keys into the podcast
// without consuming the draft, so the media can outlive the draft row.
func (h *Handlers) releaseObject(ctx context.Context, objectName string) {
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

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

type voiceInfo struct {
	ID         string `json:"id"`
	PreviewURL string `json:"previewUrl"`
}

// GetVoices lists the six fixed voices with their preview resources.
func (h *Handlers) GetVoices(w http.ResponseWriter, r *http.Request) {
	voices := make([]voiceInfo, 0, len(voice.All))
	for _, v := range voice.All {
		voices = append(voices, voiceInfo{
			ID:         v.String(),
			PreviewURL: "/" + voice.PreviewObject(v),
		})
	}
	writeJSON(w, http.StatusOK, voices)
}

// ServePreview serves the static preview clip for a voice. Playback on the
// client is fire-and-forget; a missing file here never blocks submission.
func (h *Handlers) ServePreview(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	v, err := voice.Parse(vars["voice"])
	if err != nil {
		http.Error(w, "Unknown voice", http.StatusNotFound)
		return
	}

	filePath := filepath.Join(h.previewsPath, v.String()+".mp3")
	http.ServeFile(w, r, filePath)
}
