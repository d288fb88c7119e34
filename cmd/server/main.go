package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"podify/internal/db"
	"podify/internal/handlers"
	"podify/internal/middleware"
	"podify/internal/storage"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	db.InitDB()

	store, err := storage.NewClientFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer asynqClient.Close()

	previewsPath := os.Getenv("PREVIEWS_PATH")
	if previewsPath == "" {
		previewsPath = "previews"
	}

	h := handlers.New(asynqClient, store, previewsPath)

	// One generation request per 10 seconds per user, small burst. AI calls
	// are the expensive resource here.
	generationLimiter := middleware.NewRateLimiterMiddleware(rate.Limit(0.1), 3)

	r := mux.NewRouter()

	// Public browse surface.
	r.HandleFunc("/rss", h.GetRSSFeed).Methods(http.MethodGet)
	r.HandleFunc("/previews/{voice}.mp3", h.ServePreview).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware)

	api.HandleFunc("/voices", h.GetVoices).Methods(http.MethodGet)

	api.HandleFunc("/drafts", h.CreateDraft).Methods(http.MethodPost)
	api.HandleFunc("/drafts/{id}", h.GetDraft).Methods(http.MethodGet)
	api.HandleFunc("/drafts/{id}", h.DeleteDraft).Methods(http.MethodDelete)
	api.HandleFunc("/drafts/{id}/voice", h.PutDraftVoice).Methods(http.MethodPut)

	generation := api.PathPrefix("/drafts/{id}").Subrouter()
	generation.Use(generationLimiter.Middleware)
	generation.HandleFunc("/audio", h.PostDraftAudio).Methods(http.MethodPost)
	generation.HandleFunc("/image", h.PostDraftImage).Methods(http.MethodPost)
	generation.HandleFunc("/image/upload", h.PostDraftImageUpload).Methods(http.MethodPost)

	api.HandleFunc("/podcasts", h.PostPodcast).Methods(http.MethodPost)
	api.HandleFunc("/podcasts", h.GetPodcasts).Methods(http.MethodGet)
	api.HandleFunc("/podcasts/me", h.GetMyPodcasts).Methods(http.MethodGet)
	api.HandleFunc("/podcasts/{id}", h.GetPodcast).Methods(http.MethodGet)
	api.HandleFunc("/podcasts/{id}/views", h.PostPodcastViews).Methods(http.MethodPost)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s (commit: %s)", port, CommitSHA)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}
