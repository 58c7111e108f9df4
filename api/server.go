// Package api is the HTTP facade of the shopping assistant: text
// queries, audio transcription, the combined voice path, and product
// search.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ravin00/VoiceMart-Shopping-Assistant/logger"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/resilience"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/stt"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/types"
)

// QueryProcessor turns one utterance into a structured result.
type QueryProcessor interface {
	Process(ctx context.Context, req types.QueryRequest) types.QueryResponse
}

// Transcriber uploads audio to the speech service.
type Transcriber interface {
	Transcribe(ctx context.Context, filename, contentType string, audio io.Reader) (*types.TranscriptionResult, error)
}

// ProductSearcher runs a catalog search.
type ProductSearcher interface {
	Search(ctx context.Context, req types.ProductSearchRequest) (*types.ProductSearchResponse, error)
}

// EventPublisher pushes live events to websocket subscribers.
type EventPublisher interface {
	Publish(event types.EventMessage)
}

// Server wires the handlers to their collaborators. Transcriber,
// ProductSearcher and EventPublisher may be nil; the matching routes
// then answer 503 (events are simply not emitted).
type Server struct {
	processor   QueryProcessor
	transcriber Transcriber
	searcher    ProductSearcher
	events      EventPublisher
	maxUploadMB int
	log         *logger.Logger
}

func NewServer(processor QueryProcessor, transcriber Transcriber, searcher ProductSearcher, events EventPublisher, maxUploadMB int) *Server {
	if maxUploadMB <= 0 {
		maxUploadMB = 15
	}
	return &Server{
		processor:   processor,
		transcriber: transcriber,
		searcher:    searcher,
		events:      events,
		maxUploadMB: maxUploadMB,
		log:         logger.GetLogger().WithField("component", "api"),
	}
}

// Handler returns the routed HTTP handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v1/query:process", s.handleQueryProcess)
	mux.HandleFunc("POST /v1/stt:transcribe", s.handleTranscribe)
	mux.HandleFunc("POST /v1/voice:understand", s.handleVoiceUnderstand)
	mux.HandleFunc("POST /v1/products:search", s.handleProductSearch)
	return withCORS(mux)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "VoiceMart Shopping Assistant API",
		"health":  "/health",
		"endpoints": map[string]string{
			"query":            "/v1/query:process",
			"stt":              "/v1/stt:transcribe",
			"voice_understand": "/v1/voice:understand",
			"products":         "/v1/products:search",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQueryProcess(w http.ResponseWriter, r *http.Request) {
	var req types.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", err.Error())
		return
	}

	requestID := s.requestID(r)
	res := s.processor.Process(r.Context(), req)
	s.publish("query", requestID, res)

	w.Header().Set("X-Request-ID", requestID)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, "stt_unavailable", "speech service is not configured", "")
		return
	}

	requestID := s.requestID(r)
	file, header, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := s.transcriber.Transcribe(r.Context(), header.Filename, header.ContentType, file)
	if err != nil {
		s.collaboratorError(w, requestID, "stt_failed", "transcription failed", err)
		return
	}

	s.publish("transcript", requestID, result)
	w.Header().Set("X-Request-ID", requestID)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleVoiceUnderstand(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, "stt_unavailable", "speech service is not configured", "")
		return
	}

	requestID := s.requestID(r)
	file, header, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	transcript, err := s.transcriber.Transcribe(r.Context(), header.Filename, header.ContentType, file)
	if err != nil {
		s.collaboratorError(w, requestID, "stt_failed", "transcription failed", err)
		return
	}
	s.publish("transcript", requestID, transcript)

	query := s.processor.Process(r.Context(), types.QueryRequest{
		Text:   transcript.Text,
		UserID: r.FormValue("user_id"),
		Locale: r.FormValue("locale"),
	})
	s.publish("query", requestID, query)

	w.Header().Set("X-Request-ID", requestID)
	writeJSON(w, http.StatusOK, types.VoiceUnderstandResponse{
		Transcript: *transcript,
		Query:      query,
	})
}

func (s *Server) handleProductSearch(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		writeError(w, http.StatusServiceUnavailable, "finder_unavailable", "product finder is not configured", "")
		return
	}

	var req types.ProductSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "query is required", "")
		return
	}

	requestID := s.requestID(r)
	res, err := s.searcher.Search(r.Context(), req)
	if err != nil {
		s.collaboratorError(w, requestID, "finder_failed", "product search failed", err)
		return
	}

	w.Header().Set("X-Request-ID", requestID)
	writeJSON(w, http.StatusOK, res)
}

// readUpload parses the multipart form and validates size and MIME
// type. On failure the response has already been written.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (io.ReadCloser, *multipartHeader, bool) {
	maxBytes := int64(s.maxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file_too_large",
				fmt.Sprintf("file too large (> %dMB)", s.maxUploadMB), "")
			return nil, nil, false
		}
		writeError(w, http.StatusBadRequest, "bad_request", "expected multipart upload", err.Error())
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "missing file field", err.Error())
		return nil, nil, false
	}

	contentType := header.Header.Get("Content-Type")
	if !stt.IsAllowedMIME(contentType) {
		file.Close()
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type",
			"unsupported media type: "+contentType, "")
		return nil, nil, false
	}

	return file, &multipartHeader{Filename: header.Filename, ContentType: contentType}, true
}

type multipartHeader struct {
	Filename    string
	ContentType string
}

func (s *Server) requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

func (s *Server) publish(eventType, requestID string, payload any) {
	if s.events == nil {
		return
	}
	s.events.Publish(types.EventMessage{Type: eventType, Payload: payload, RequestID: requestID})
}

// collaboratorError maps a downstream failure onto a response status:
// an open breaker or exhausted retries is a 502, a collaborator 4xx is
// passed through as 400 territory.
func (s *Server) collaboratorError(w http.ResponseWriter, requestID, code, msg string, err error) {
	s.log.WithField("request_id", requestID).Error(msg, err)
	s.publish("error", requestID, types.ErrorDetail{Code: code, Message: msg, Details: err.Error()})

	status := http.StatusBadGateway
	var se *resilience.StatusError
	if errors.As(err, &se) && se.Status >= 400 && se.Status < 500 {
		status = se.Status
	}
	writeError(w, status, code, msg, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, msg, details string) {
	writeJSON(w, status, map[string]types.ErrorDetail{
		"error": {Code: code, Message: msg, Details: details},
	})
}
