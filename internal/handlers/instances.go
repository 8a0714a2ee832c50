package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/captioner/internal/images"
	"github.com/lehigh-university-libraries/captioner/internal/nodes"
	"github.com/lehigh-university-libraries/captioner/internal/storage"
)

type instanceResponse struct {
	ID        string    `json:"id"`
	Class     string    `json:"class"`
	CreatedAt time.Time `json:"created_at"`
}

type executeResponse struct {
	Outputs map[string]any `json:"outputs"`
	Changed bool           `json:"changed"`
}

func (h *Handler) HandleDefinitions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.registry.Definitions())
}

func (h *Handler) HandleListInstances(w http.ResponseWriter, r *http.Request) {
	all := h.nodeStore.GetAll()
	list := make([]instanceResponse, 0, len(all))
	for _, instance := range all {
		list = append(list, toInstanceResponse(instance))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	h.writeJSON(w, list)
}

func (h *Handler) HandleCreateInstance(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Class string `json:"class"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	node, err := h.registry.New(request.Class)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	instance := &storage.Instance{
		ID:        uuid.NewString(),
		Class:     request.Class,
		Node:      node,
		CreatedAt: time.Now(),
	}
	h.nodeStore.Set(instance.ID, instance)

	slog.Info("Node instance created", "id", instance.ID, "class", instance.Class)
	h.writeJSONStatus(w, http.StatusCreated, toInstanceResponse(instance))
}

func (h *Handler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	instance, ok := h.getInstanceOrError(w, r.PathValue("id"))
	if !ok {
		return
	}

	var request struct {
		Inputs map[string]any `json:"inputs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	def := instance.Node.Definition()
	inputs, err := decodeInputs(def, request.Inputs)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	instance.Lock()
	changed := instance.Node.IsChanged(inputs)
	outputs, err := instance.Node.Execute(r.Context(), inputs)
	instance.Unlock()
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, nodes.ErrInvalidInput) {
			code = http.StatusBadRequest
		}
		h.writeError(w, err.Error(), code)
		return
	}

	encoded, err := encodeOutputs(def, outputs)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Debug("Node executed", "id", instance.ID, "class", instance.Class)
	h.writeJSON(w, executeResponse{Outputs: encoded, Changed: changed})
}

func (h *Handler) HandleDeleteInstance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.nodeStore.Delete(id) {
		h.writeError(w, "Node instance not found", http.StatusNotFound)
		return
	}
	slog.Info("Node instance deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func toInstanceResponse(instance *storage.Instance) instanceResponse {
	return instanceResponse{
		ID:        instance.ID,
		Class:     instance.Class,
		CreatedAt: instance.CreatedAt,
	}
}

// decodeInputs turns base64 PNG/JPEG strings in image slots into images.
func decodeInputs(def nodes.Definition, raw map[string]any) (nodes.Inputs, error) {
	inputs := make(nodes.Inputs, len(raw))
	for k, v := range raw {
		inputs[k] = v
	}

	for _, spec := range def.Inputs {
		if spec.Type != nodes.TypeImage {
			continue
		}
		v, ok := raw[spec.Name]
		if !ok || v == nil {
			continue
		}
		data, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be a base64 encoded image", spec.Name)
		}
		img, err := images.DecodeBase64(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Name, err)
		}
		inputs[spec.Name] = img
	}
	return inputs, nil
}

// encodeOutputs names the outputs and renders images as base64 PNG.
func encodeOutputs(def nodes.Definition, outputs nodes.Outputs) (map[string]any, error) {
	if len(outputs) != len(def.Outputs) {
		return nil, fmt.Errorf("node returned %d outputs, expected %d", len(outputs), len(def.Outputs))
	}

	encoded := make(map[string]any, len(outputs))
	for i, spec := range def.Outputs {
		value := outputs[i]
		if img, ok := value.(images.Image); ok {
			data, err := img.EncodeBase64PNG()
			if err != nil {
				return nil, fmt.Errorf("failed to encode %s: %w", spec.Name, err)
			}
			value = data
		}
		encoded[spec.Name] = value
	}
	return encoded, nil
}
