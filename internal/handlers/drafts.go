package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"podify/internal/db"
	"podify/internal/middleware"
	"podify/internal/models"
	"podify/internal/voice"
	"podify/pkg/tasks"
)

// maxUploadBytes caps direct cover image uploads.
const maxUploadBytes = 8 << 20

// CreateDraft starts an empty draft for the creation view.
func (h *Handlers) CreateDraft(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)

	draft, err := db.CreateDraft(user.ID)
	if err != nil {
		log.Printf("Error creating draft: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, draft)
}

// GetDraft returns the draft's current state; the client polls it while a
// generation is in flight.
func (h *Handlers) GetDraft(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)

	draft, err := db.GetDraftForUser(mux.Vars(r)["id"], user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		log.Printf("Error getting draft: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, draft)
}

// DeleteDraft tears the draft down when the user navigates away. Results of
// any still-running generation for it are discarded by the sequence guard,
// and the media the draft was holding is released unless a published podcast
// still uses it.
func (h *Handlers) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)

	objects, err := db.DeleteDraft(mux.Vars(r)["id"], user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		log.Printf("Error deleting draft: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	for _, object := range objects {
		h.releaseObject(r.Context(), object)
	}

	w.WriteHeader(http.StatusNoContent)
}

// PutDraftVoice records the selected voice and hands back the preview clip
// URL for fire-and-forget playback. No other draft field is touched.
func (h *Handlers) PutDraftVoice(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)

	var req struct {
		Voice string `json:"voice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	v, err := voice.Parse(req.Voice)
	if err != nil {
		http.Error(w, "Unknown voice", http.StatusBadRequest)
		return
	}

	if err := db.SetDraftVoice(mux.Vars(r)["id"], user.ID, v.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		log.Printf("Error setting draft voice: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"voiceType":  v.String(),
		"previewUrl": "/" + voice.PreviewObject(v),
	})
}

// PostDraftAudio issues an audio generation request. The newly advanced
// sequence token travels with the task; re-triggering before the previous
// request resolves simply supersedes it.
func (h *Handlers) PostDraftAudio(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)
	draftID := mux.Vars(r)["id"]

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	draft, err := db.GetDraftForUser(draftID, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		log.Printf("Error getting draft: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !draft.HasVoice() {
		writeJSON(w, http.StatusConflict, map[string]Notice{
			"notice": infoNotice("Please select an AI voice first"),
		})
		return
	}

	seq, err := db.RequestAudioGeneration(draftID, user.ID, req.Prompt)
	if err != nil {
		log.Printf("Error requesting audio generation: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	task, err := tasks.NewGenerateAudioTask(draftID, seq, req.Prompt, *draft.VoiceType)
	if err != nil {
		log.Printf("Error creating task: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if _, err := h.asynqClient.Enqueue(task); err != nil {
		log.Printf("Error enqueuing task: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"audioStatus": db.StatusPending})
}

// PostDraftImage issues a prompt-based image generation request.
func (h *Handlers) PostDraftImage(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)
	draftID := mux.Vars(r)["id"]

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	seq, err := db.RequestImageGeneration(draftID, user.ID, req.Prompt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		log.Printf("Error requesting image generation: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	task, err := tasks.NewGenerateImageTask(draftID, seq, req.Prompt)
	if err != nil {
		log.Printf("Error creating task: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if _, err := h.asynqClient.Enqueue(task); err != nil {
		log.Printf("Error enqueuing task: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"imageStatus": db.StatusPending})
}

// PostDraftImageUpload is the direct-upload path for cover art. It converges
// on the same draft fields as prompt-based generation; downstream nothing
// distinguishes the two.
func (h *Handlers) PostDraftImageUpload(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)
	draftID := mux.Vars(r)["id"]

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Upload too large or malformed", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	contentType := http.DetectContentType(data)
	ext := ""
	switch contentType {
	case "image/png":
		ext = ".png"
	case "image/jpeg":
		ext = ".jpg"
	default:
		http.Error(w, "Only png and jpeg images are supported", http.StatusUnsupportedMediaType)
		return
	}

	objectName := fmt.Sprintf("images/%s%s", uuid.NewString(), ext)
	url, err := h.store.Upload(r.Context(), objectName, data, contentType)
	if err != nil {
		log.Printf("Error uploading image: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]Notice{
			"notice": destructiveNotice("Error uploading image"),
		})
		return
	}

	replaced, err := db.SetDraftImageUpload(draftID, user.ID, url, objectName)
	if err != nil {
		// The fresh upload never reached a draft; nothing references it.
		if rerr := h.store.Remove(r.Context(), objectName); rerr != nil {
			log.Printf("Failed to remove unattached upload %s: %v", objectName, rerr)
		}
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		log.Printf("Error attaching uploaded image: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if replaced != "" {
		h.releaseObject(r.Context(), replaced)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"imageUrl":       url,
		"imageStorageId": objectName,
	})
}
