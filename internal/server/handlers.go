package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/civicroute/internal/decision"
	"github.com/hyperjump/civicroute/internal/metrics"
	"github.com/hyperjump/civicroute/internal/models"
)

// DecisionIDHeader carries the id assigned to each prediction.
const DecisionIDHeader = "X-Decision-ID"

// multipart parts beyond this are spooled to disk
const maxMemory = 8 << 20

func (s *Server) handlePredictImage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := metrics.StatusOK
	defer func() { s.metrics.ObserveRequest(status, time.Since(start)) }()

	if s.config.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		status = metrics.StatusClientError
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		s.respondError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		status = metrics.StatusClientError
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		status = metrics.StatusClientError
		s.respondError(w, http.StatusBadRequest, "File must be an image")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		status = metrics.StatusClientError
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	id := uuid.NewString()
	s.logger.Debug("predict request",
		zap.String("decision_id", id),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("filename", header.Filename),
		zap.Int("bytes", len(data)),
	)
	rec, err := s.predictor.HandleImage(r.Context(), data)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidImage):
			status = metrics.StatusClientError
			s.respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, models.ErrDimensionMismatch):
			status = metrics.StatusError
			s.logger.Error("embedding store does not match query embedder", zap.String("decision_id", id), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "internal error")
		default:
			status = metrics.StatusError
			s.logger.Error("prediction failed", zap.String("decision_id", id), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	s.metrics.RecordDecision(rec.Department)
	s.logger.Debug("decision",
		zap.String("decision_id", id),
		zap.String("issue_type", rec.IssueType),
		zap.String("department", rec.Department),
		zap.Float64("confidence", rec.Confidence),
	)
	w.Header().Set(DecisionIDHeader, id)
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDepartments(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string][]string{"departments": decision.Departments()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
