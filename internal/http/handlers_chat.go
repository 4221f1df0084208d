package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"finestra/internal/advisor"
	"finestra/internal/log"
)

type chatRequest struct {
	Messages []advisor.Message `json:"messages"`
}

// handleChat streams the advisor reply as plain text chunks. The system
// prompt is rebuilt from current store state on every request, so the
// model always sees the latest numbers. Navigating away cancels the
// request context and stops the stream; stored data is untouched.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		respondError(w, http.StatusServiceUnavailable, "advisor not configured")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		respondError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	system := advisor.BuildContext(s.store.Settings(), s.store.Transactions(), s.store.Goals())

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	err := s.chat.StreamChat(r.Context(), system, req.Messages, func(text string) error {
		if _, err := w.Write([]byte(text)); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// Headers are already out; all that remains is to stop and log.
		// A cancelled context is the user navigating away, not a fault.
		if errors.Is(err, context.Canceled) {
			s.logger.InfoContext(r.Context(), "chat stream cancelled by client")
			return
		}
		s.logger.ErrorContext(r.Context(), "chat stream failed", log.FieldError, err.Error())
	}
}
