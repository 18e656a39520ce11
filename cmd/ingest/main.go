package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/capstone-itrack/backend-go/internal/config"
	"github.com/capstone-itrack/backend-go/internal/drive"
	"github.com/gorilla/mux"
)

// The ingest server is a small operator-facing sidecar: it lists the shared
// Drive folder and pulls the newest curated workbook into the path the main
// server trains from. It runs separately so Drive credentials never have to
// live on the API instances.

func main() {
	// Load configuration
	cfg := config.Load()

	// Missing credentials keep the server up but the endpoints dark, so a
	// misconfigured deploy answers 503 per request instead of crash-looping.
	service, err := drive.NewService(cfg.Drive.CredentialsFile, cfg.Drive.FolderID)
	if err != nil {
		log.Printf("Drive ingest disabled: %v", err)
	}

	handler := drive.NewHandler(service, cfg.App.HistoryFile)

	// Create router
	r := mux.NewRouter()
	handler.RegisterRoutes(r)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Optional hands-off mode: poll the folder and sync without operators
	// having to hit the endpoint.
	if service != nil && cfg.Drive.WatchIntervalMins > 0 {
		watcher := drive.NewWatcher(service, cfg.App.HistoryFile,
			time.Duration(cfg.Drive.WatchIntervalMins)*time.Minute)
		go watcher.Run(context.Background())
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.IngestPort)
	log.Printf("Ingest server starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
