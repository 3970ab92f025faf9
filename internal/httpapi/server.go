package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/avvvet/companion/internal/handlers"
	"github.com/avvvet/companion/internal/models"
	"github.com/avvvet/companion/internal/observability"
)

var errEmptyBody = errors.New("request body is empty")

// Chat is the part of the reply handler the HTTP surface drives.
type Chat interface {
	HandleChat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
	ClearHistory(ctx context.Context, userID string)
	GetStats(ctx context.Context, userID string) models.Stats
}

type Server struct {
	chat     Chat
	metrics  *observability.Metrics
	sessions func() int
}

// New builds the ops surface. sessions reports the active session count and
// may be nil.
func New(chat Chat, metrics *observability.Metrics, sessions func() int) *Server {
	return &Server{chat: chat, metrics: metrics, sessions: sessions}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type replyRequest struct {
	Kind    string `json:"kind,omitempty"`
	Text    string `json:"text,omitempty"`
	Command string `json:"command,omitempty"`
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/v1/users/{id}", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Delete("/history", s.handleClearHistory)
		r.Post("/reply", s.handleReply)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok"}
	if s.sessions != nil {
		body["active_sessions"] = s.sessions()
	}
	respondJSON(w, http.StatusOK, body)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.chat.GetStats(r.Context(), userID))
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	s.chat.ClearHistory(r.Context(), userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var body replyRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	ctx := handlers.WithTransport(r.Context(), "http")
	resp, err := s.chat.HandleChat(ctx, &models.ChatRequest{
		UserID:  userID,
		Kind:    body.Kind,
		Text:    body.Text,
		Command: body.Command,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func userIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "missing user id")
		return "", false
	}
	return id, true
}

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
