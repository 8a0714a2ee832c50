package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/captioner/internal/nodes"
	"github.com/lehigh-university-libraries/captioner/internal/storage"
)

type Handler struct {
	registry  *nodes.Registry
	nodeStore *storage.NodeStore
}

func New(registry *nodes.Registry) *Handler {
	return &Handler{
		registry:  registry,
		nodeStore: storage.New(),
	}
}

// Routes registers the node host endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/nodes", h.HandleDefinitions)
	mux.HandleFunc("GET /api/instances", h.HandleListInstances)
	mux.HandleFunc("POST /api/instances", h.HandleCreateInstance)
	mux.HandleFunc("POST /api/instances/{id}/execute", h.HandleExecute)
	mux.HandleFunc("DELETE /api/instances/{id}", h.HandleDeleteInstance)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

// writeJSONStatus encodes data before committing the status code; encoding
// failures become a 500.
func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(append(body, '\n')); err != nil {
		slog.Error("Unable to write JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Instance helpers
func (h *Handler) getInstanceOrError(w http.ResponseWriter, id string) (*storage.Instance, bool) {
	instance, exists := h.nodeStore.Get(id)
	if !exists {
		h.writeError(w, "Node instance not found", http.StatusNotFound)
		return nil, false
	}
	return instance, true
}
