package drive

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler serves the operator-facing ingest endpoints: inspect the shared
// folder, pull the newest workbook over the history file. A nil service
// keeps the routes registered but answering 503, so a deploy without Drive
// credentials degrades per request instead of crash-looping.
type Handler struct {
	service  *Service
	destPath string
}

func NewHandler(service *Service, destPath string) *Handler {
	return &Handler{
		service:  service,
		destPath: destPath,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/ingest/files", h.ListFiles).Methods("GET")
	router.HandleFunc("/api/ingest/history", h.SyncHistory).Methods("POST")
}

// ListFiles answers the folder's candidate workbooks, newest first.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		http.Error(w, "drive ingest is not configured", http.StatusServiceUnavailable)
		return
	}

	workbooks, err := h.service.ListWorkbooks()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(workbooks)
}

// SyncHistory pulls the newest workbook over the configured history file.
func (h *Handler) SyncHistory(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		http.Error(w, "drive ingest is not configured", http.StatusServiceUnavailable)
		return
	}

	workbook, err := h.service.SyncLatest(h.destPath)
	if err != nil {
		http.Error(w, fmt.Sprintf("sync failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"name":   workbook.Name,
		"size":   workbook.Size,
		"path":   h.destPath,
	})
}
