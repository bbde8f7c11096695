package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type chatResp struct {
	Response string `json:"response"`
}

type errorResp struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	l := s.analyzer.LLM()
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"provider": l.Name(),
		"model":    l.GetModel(),
	})
}

// handleAnalyze accepts a multipart upload with a "file" part and an
// optional "context" field.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "expected multipart form with a file upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Provide file upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	analysisID := uuid.NewString()
	logger := s.logger.With(
		zap.String("analysis_id", analysisID),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("filename", header.Filename),
		zap.Int("bytes", len(data)))
	logger.Info("analysis requested")

	result, err := s.analyzer.AnalyzeBytes(r.Context(), data, r.FormValue("context"))
	if err != nil {
		logger.Error("analysis failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "analysis failed: "+err.Error())
		return
	}

	w.Header().Set("X-Analysis-ID", analysisID)
	writeJSON(w, http.StatusOK, result)
}

// handleChat accepts a "message" field, form-encoded or multipart.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "request exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "malformed form body")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	message := strings.TrimSpace(r.FormValue("message"))
	if message == "" {
		writeError(w, http.StatusBadRequest, "missing 'message'")
		return
	}

	reply, err := s.analyzer.Chat(r.Context(), message)
	if err != nil {
		s.logger.Error("chat failed", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		writeError(w, http.StatusBadGateway, "chat backend error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, chatResp{Response: reply})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResp{Detail: detail})
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
