package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
)

type createSessionResponse struct {
	ID string `json:"id"`
}

type documentResponse struct {
	Text string `json:"text"`
}

type jobDescriptionRequest struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type messageEvent struct {
	Phase interview.Phase `json:"phase"`
	Text  string          `json:"text"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.store.Create()
	s.jsonResponse(w, http.StatusCreated, createSessionResponse{ID: sess.ID})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.PathValue("id")); err != nil {
		s.errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	data, err := readUpload(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	text, err := s.ingestor.Resume(sess.Documents, data)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, documentResponse{Text: text})
}

// readUpload accepts either a multipart form with a "file" field or the raw
// document as the request body.
func readUpload(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if len(data) == 0 {
			return nil, &ValidationError{Field: "body", Message: "resume is required"}
		}
		return data, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, &ValidationError{Field: "file", Message: err.Error()}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func (s *Server) handleJobDescription(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req jobDescriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	text := s.ingestor.JobDescription(r.Context(), sess.Documents, req.URL, req.Text)
	s.jsonResponse(w, http.StatusOK, documentResponse{Text: text})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.errorResponse(w, &ValidationError{Field: "message", Message: "message is required"})
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	log := s.logger.With(zap.String(logger.FieldSession, sess.ID))
	evaluated := false

	for update, err := range sess.Conversation.Send(r.Context(), req.Message) {
		if err != nil {
			if writeErr := sse.WriteError(err.Error()); writeErr == nil {
				sse.WriteComplete("failed") //nolint:errcheck
			}
			return
		}

		if update.Phase == interview.PhaseEvaluating {
			evaluated = true
		}

		if err := sse.WriteEvent("message", messageEvent{Phase: update.Phase, Text: update.Visible}); err != nil {
			log.Info("client went away", zap.Error(err))
			return
		}
	}

	if evaluated {
		if report := sess.Conversation.Report(); report != nil {
			if err := sse.WriteEvent("report", report); err != nil {
				log.Info("client went away", zap.Error(err))
				return
			}
		}
	}

	sse.WriteComplete("ok") //nolint:errcheck
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ValidationError{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}
