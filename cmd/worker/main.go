package main

import (
	"log"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"podify/internal/db"
	"podify/internal/genai"
	"podify/internal/storage"
	"podify/internal/worker"
	"podify/pkg/tasks"
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
	gen := genai.NewClientFromEnv()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			// Audio and image generations for one draft may run side by side.
			Concurrency: 4,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	taskHandler := worker.NewTaskHandler(gen, store)

	mux.HandleFunc(tasks.TypeGenerateAudio, taskHandler.HandleGenerateAudioTask)
	mux.HandleFunc(tasks.TypeGenerateImage, taskHandler.HandleGenerateImageTask)
	mux.HandleFunc(tasks.TypeCleanupDrafts, taskHandler.HandleCleanupDraftsTask)

	log.Printf("Worker starting (commit: %s)", CommitSHA)
	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
