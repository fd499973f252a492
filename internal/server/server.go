package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/store"
)

// Transcriber converts an uploaded audio recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// Server is the HTTP front of the interview engine. It owns no interview
// state itself: sessions live in the store, passes run in the engine.
type Server struct {
	engine      *interview.Engine
	store       *store.Store
	transcriber Transcriber
	logger      *zap.Logger

	allowedOrigins []string
}

// New assembles the HTTP layer. The transcriber may be nil, in which case
// the audio endpoint reports the feature as unavailable.
func New(engine *interview.Engine, st *store.Store, transcriber Transcriber, allowedOrigins []string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{
		engine:         engine,
		store:          st,
		transcriber:    transcriber,
		logger:         log,
		allowedOrigins: allowedOrigins,
	}
}

// Handler builds the route table. Method patterns require Go 1.22.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /upload-documents", s.handleUploadDocuments)
	mux.HandleFunc("POST /start-interview", s.handleStartInterview)
	mux.HandleFunc("POST /transcribe-audio", s.handleTranscribeAudio)
	mux.HandleFunc("POST /submit-answer", s.handleSubmitAnswer)
	mux.HandleFunc("GET /interview-status/{id}", s.handleInterviewStatus)

	return s.cors(mux)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}
