package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/awmpietro/guard-patrol-case/internal/app"
	"github.com/awmpietro/guard-patrol-case/internal/transport/patroldto"
)

type Handler struct {
	svc app.PatrolService
}

func NewHandler(svc app.PatrolService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Patrol(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in patroldto.PatrolRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, patroldto.InvalidBody("invalid json", err))
		return
	}

	status, body := patroldto.Dispatch(r.Context(), h.svc, in)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
