package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ramanasai/reflectboard/internal/board"
	"github.com/ramanasai/reflectboard/internal/coach"
	"github.com/ramanasai/reflectboard/internal/db"
)

const maxBody = 1 << 20

// Sent with missing-credential fallbacks so clients can show a setup hint.
const missingKeyHint = "API key not configured"

type reflectionRequest struct {
	Date         string             `json:"date" validate:"required,datetime=2006-01-02"`
	Items        []board.Note       `json:"items"`
	Connections  []board.Connection `json:"connections"`
	SelectedItem *board.Note        `json:"selectedItem"`
	ChatMessages []coach.Message    `json:"chatMessages"`
}

// chatRequest accepts two ways of saying how far the conversation is.
// When history is sent, the user messages in it are counted. Otherwise
// messageCount is the length of the client's transcript before this
// message, opening question included, so 1, 3 and 5 mean zero, one and
// two earlier user messages.
type chatRequest struct {
	Message       string          `json:"message" validate:"required,max=4000"`
	SelectedTopic string          `json:"selectedTopic" validate:"required,max=1000"`
	MessageCount  int             `json:"messageCount" validate:"min=0"`
	History       []coach.Message `json:"history"`
}

// priorUserMessages is the number of user messages sent before this one.
func (req chatRequest) priorUserMessages() int {
	if len(req.History) == 0 {
		return req.MessageCount / 2
	}
	n := 0
	for _, m := range req.History {
		if m.Sender == coach.SenderUser {
			n++
		}
	}
	return n
}

type chatResponse struct {
	Message  string `json:"message"`
	Fallback bool   `json:"fallback,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// listReflections handles GET /api/reflections, newest first. ?q= filters.
func (s *Server) listReflections(w http.ResponseWriter, r *http.Request) {
	var (
		recs []db.Record
		err  error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		recs, err = s.store.Search(r.Context(), q)
	} else {
		recs, err = s.store.List(r.Context())
	}
	if err != nil {
		s.storeError(w, "list reflections", err)
		return
	}
	if recs == nil {
		recs = []db.Record{}
	}
	s.respondJSON(w, http.StatusOK, recs)
}

func (s *Server) saveReflection(w http.ResponseWriter, r *http.Request) {
	var req reflectionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateStruct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.store.Upsert(r.Context(), db.Record{
		Date:         req.Date,
		Items:        req.Items,
		Connections:  req.Connections,
		SelectedItem: req.SelectedItem,
		ChatMessages: req.ChatMessages,
	})
	if err != nil {
		s.storeError(w, "save reflection", err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) getReflection(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		s.storeError(w, "get reflection", err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) deleteReflection(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "date")); err != nil {
		s.storeError(w, "delete reflection", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// chat answers one coaching turn. Upstream trouble never surfaces as an
// HTTP error: the reply falls back to a local question instead.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		s.respondError(w, http.StatusTooManyRequests, "too many chat requests")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := validateStruct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply := s.responder.Respond(r.Context(), coach.Turn{
		Topic:        req.SelectedTopic,
		Message:      req.Message,
		MessageCount: req.priorUserMessages(),
		History:      req.History,
	})

	resp := chatResponse{Message: reply.Text, Fallback: reply.Fallback}
	if reply.Reason == coach.ReasonMissingCredentials {
		resp.Error = missingKeyHint
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "reflection not found")
	case errors.Is(err, db.ErrInvalidDate):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrLocked):
		s.respondError(w, http.StatusLocked, "store is encrypted, passphrase required")
	case errors.Is(err, db.ErrDecrypt):
		s.respondError(w, http.StatusLocked, "record cannot be decrypted with the configured passphrase")
	default:
		s.logger.Error(op+" failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to "+op)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]any{
		"error":   true,
		"message": message,
		"code":    status,
	})
}
