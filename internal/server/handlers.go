package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/document"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/store"
)

// Resumes rarely exceed a few megabytes even as scanned PDFs; audio answers
// can be larger.
const (
	maxDocumentUpload = 20 << 20
	maxAudioUpload    = 50 << 20
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type uploadResponse struct {
	SessionID            string `json:"session_id"`
	Message              string `json:"message"`
	ResumeLength         int    `json:"resume_length"`
	JobDescriptionLength int    `json:"job_description_length"`
}

func (s *Server) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxDocumentUpload); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("parse upload: %v", err))
		return
	}

	resumeText, err := s.extractFormDocument(r, "resume")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("resume: %v", err))
		return
	}

	jobText, err := s.extractFormDocument(r, "job_description")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("job description: %v", err))
		return
	}

	session, err := s.store.Create(resumeText, jobText)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info("documents uploaded",
		logger.Session(session.ID),
		zap.Int("resume_length", len(resumeText)),
		zap.Int("job_description_length", len(jobText)),
	)

	s.writeJSON(w, http.StatusCreated, uploadResponse{
		SessionID:            session.ID,
		Message:              "documents processed successfully",
		ResumeLength:         len(resumeText),
		JobDescriptionLength: len(jobText),
	})
}

func (s *Server) extractFormDocument(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("missing file field %q", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	return document.Extract(header.Filename, data)
}

type startRequest struct {
	SessionID string `json:"session_id"`
}

type startResponse struct {
	SessionID     string `json:"session_id"`
	FirstQuestion string `json:"first_question"`
}

func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.store.Update(req.SessionID, func(session *interview.Session) (*interview.Session, error) {
		return s.engine.Start(r.Context(), session)
	})
	if err != nil {
		s.writeInterviewError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, startResponse{
		SessionID:     updated.ID,
		FirstQuestion: updated.CurrentQuestion,
	})
}

type transcribeResponse struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}

func (s *Server) handleTranscribeAudio(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		s.writeError(w, http.StatusServiceUnavailable, "transcription is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("parse upload: %v", err))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, `missing file field "audio"`)
		return
	}
	defer file.Close()

	text, err := s.transcriber.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		s.logger.Error("transcription failed", zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "transcription failed")
		return
	}

	s.writeJSON(w, http.StatusOK, transcribeResponse{
		SessionID: strings.TrimSpace(r.FormValue("session_id")),
		Text:      text,
	})
}

type submitRequest struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type submitResponse struct {
	SessionID            string `json:"session_id"`
	NextQuestion         string `json:"next_question,omitempty"`
	ConclusionMessage    string `json:"conclusion_message,omitempty"`
	IsConcluded          bool   `json:"is_concluded"`
	TimeRemainingSeconds int    `json:"time_remaining_seconds"`
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.store.Update(req.SessionID, func(session *interview.Session) (*interview.Session, error) {
		return s.engine.SubmitAnswer(r.Context(), session, req.Answer)
	})
	if err != nil {
		s.writeInterviewError(w, err)
		return
	}

	status := s.engine.Status(updated)

	resp := submitResponse{
		SessionID:            updated.ID,
		IsConcluded:          status.Concluded,
		TimeRemainingSeconds: int(status.Remaining.Seconds()),
	}
	if status.Concluded {
		resp.ConclusionMessage = updated.CurrentQuestion
	} else {
		resp.NextQuestion = updated.CurrentQuestion
	}

	s.writeJSON(w, http.StatusOK, resp)
}

type statusResponse struct {
	SessionID            string `json:"session_id"`
	Started              bool   `json:"started"`
	IsConcluded          bool   `json:"is_concluded"`
	QuestionsAsked       int    `json:"questions_asked"`
	ElapsedSeconds       int    `json:"elapsed_seconds"`
	TimeRemainingSeconds int    `json:"time_remaining_seconds"`
	ConclusionReason     string `json:"conclusion_reason,omitempty"`
}

func (s *Server) handleInterviewStatus(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.writeInterviewError(w, err)
		return
	}

	status := s.engine.Status(session)

	s.writeJSON(w, http.StatusOK, statusResponse{
		SessionID:            session.ID,
		Started:              status.Started,
		IsConcluded:          status.Concluded,
		QuestionsAsked:       status.QuestionsAsked,
		ElapsedSeconds:       int(status.Elapsed.Seconds()),
		TimeRemainingSeconds: int(status.Remaining.Seconds()),
		ConclusionReason:     string(status.Reason),
	})
}

// writeInterviewError maps engine and store failures onto HTTP statuses.
// Anything unrecognized is treated as an upstream model failure.
func (s *Server) writeInterviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, store.ErrBusy):
		s.writeError(w, http.StatusConflict, "another pass is already running for this session")
	case errors.Is(err, interview.ErrAlreadyStarted),
		errors.Is(err, interview.ErrNotStarted),
		errors.Is(err, interview.ErrConcluded),
		errors.Is(err, interview.ErrEmptyAnswer),
		errors.Is(err, interview.ErrEmptyDocument):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("interview pass failed", zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "interview engine failure")
	}
}
