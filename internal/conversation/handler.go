package conversation

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/barbearia-labs/barber-ai-platform/internal/tenancy"
	"github.com/barbearia-labs/barber-ai-platform/pkg/logging"
)

// Handler wires HTTP requests to the conversation service.
type Handler struct {
	service  Service
	sessions *SessionStore
	logger   *logging.Logger
}

// NewHandler creates a conversation handler.
func NewHandler(service Service, sessions *SessionStore, logger *logging.Logger) *Handler {
	if service == nil {
		panic("conversation: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service:  service,
		sessions: sessions,
		logger:   logger,
	}
}

// Chat handles POST /chat: one conversational turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode chat request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// The tenancy middleware resolves the barbershop; a body-level id is
	// accepted only when the header did not set one.
	if shopID, ok := tenancy.ShopIDFromContext(r.Context()); ok {
		req.BarbershopID = shopID
	}
	if req.BarbershopID == uuid.Nil {
		http.Error(w, "Barbershop id required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.ProcessTurn(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to process turn", "error", err)
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Session handles GET /admin/sessions/{sessionID}: the raw session snapshot
// for support inspection. Mounted behind the admin JWT middleware.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		http.Error(w, "Session inspection unavailable", http.StatusNotFound)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	sess, err := h.sessions.Load(r.Context(), sessionID, time.Now())
	if err != nil {
		h.logger.Error("failed to load session", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}
	if sess == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
