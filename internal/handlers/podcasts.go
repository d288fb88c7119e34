package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"podify/internal/db"
	"podify/internal/middleware"
	"podify/internal/models"
	"podify/internal/submit"
)

const defaultBrowseLimit = 20

// PostPodcast is the submit action: it hands the draft and form fields to the
// submission workflow and maps its outcome to a response. On any failure the
// draft is left intact for a retry; on success the client navigates home.
func (h *Handlers) PostPodcast(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)

	var req struct {
		DraftID     string `json:"draftId"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	podcast, err := submit.Submit(user.ID, submit.Request{
		DraftID:     req.DraftID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		var validationErr *submit.ValidationError
		var persistenceErr *submit.PersistenceError
		switch {
		case errors.As(err, &validationErr):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"errors": validationErr.Fields,
			})
		case errors.Is(err, submit.ErrDraftNotFound):
			http.Error(w, "Draft not found", http.StatusNotFound)
		case errors.Is(err, submit.ErrIncomplete):
			writeJSON(w, http.StatusConflict, map[string]Notice{
				"notice": infoNotice("Please generate audio and image"),
			})
		case errors.As(err, &persistenceErr):
			log.Printf("Error persisting podcast: %v", persistenceErr.Err)
			writeJSON(w, http.StatusBadGateway, map[string]Notice{
				"notice": destructiveNotice("Error while Submitting"),
			})
		default:
			log.Printf("Unexpected submission error: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"podcast":  podcast,
		"notice":   infoNotice("Podcast Created"),
		"redirect": "/",
	})
}

// GetPodcasts lists published podcasts: latest by default, trending (by
// views) for the front page carousel.
func (h *Handlers) GetPodcasts(w http.ResponseWriter, r *http.Request) {
	limit := defaultBrowseLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	var podcasts []models.Podcast
	var err error
	switch sort := r.URL.Query().Get("sort"); sort {
	case "", "latest":
		podcasts, err = db.GetLatestPodcasts(limit)
	case "trending":
		podcasts, err = db.GetTrendingPodcasts(limit)
	default:
		http.Error(w, "Invalid sort", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if podcasts == nil {
		podcasts = []models.Podcast{}
	}
	writeJSON(w, http.StatusOK, podcasts)
}

// GetPodcast returns a single published podcast.
func (h *Handlers) GetPodcast(w http.ResponseWriter, r *http.Request) {
	podcast, err := db.GetPodcastByID(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Podcast not found", http.StatusNotFound)
			return
		}
		log.Printf("Error getting podcast: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, podcast)
}

// GetMyPodcasts lists the authenticated user's published podcasts.
func (h *Handlers) GetMyPodcasts(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)

	podcasts, err := db.GetPodcastsByUserID(user.ID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if podcasts == nil {
		podcasts = []models.Podcast{}
	}
	writeJSON(w, http.StatusOK, podcasts)
}

// PostPodcastViews increments the server-authoritative view counter.
func (h *Handlers) PostPodcastViews(w http.ResponseWriter, r *http.Request) {
	err := db.IncrementPodcastViews(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Podcast not found", http.StatusNotFound)
			return
		}
		log.Printf("Error incrementing views: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
