package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"docsim/internal/extract"
	"docsim/internal/logging"
	"docsim/internal/runstore"
	"docsim/internal/similarity"
)

const multipartMemory = 32 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if limit := s.cfg.Server.MaxUploadBytes; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	var (
		req CompareRequest
		err error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		req, err = s.readMultipart(r)
	} else {
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			err = fmt.Errorf("decode request: %w", err)
		}
	}
	if err != nil {
		s.writeError(w, requestErrorStatus(err), err.Error())
		return
	}

	opts := CompareOptions{
		Policy:         req.Policy,
		Duplicates:     req.Duplicates,
		FoldDiacritics: req.FoldDiacritics,
		Save:           s.svc.HistoryEnabled() && s.cfg.History.Enabled,
	}
	if req.Save != nil {
		opts.Save = *req.Save
	}

	analysis, err := s.svc.Compare(r.Context(), req.Documents, opts)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrInvalidOption),
			errors.Is(err, similarity.ErrDuplicateName),
			errors.Is(err, similarity.ErrEmptyName):
			status = http.StatusBadRequest
		case errors.Is(err, ErrHistoryDisabled):
			status = http.StatusConflict
		}
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) readMultipart(r *http.Request) (CompareRequest, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return CompareRequest{}, fmt.Errorf("parse multipart form: %w", err)
	}
	req := CompareRequest{
		Policy:     r.FormValue("policy"),
		Duplicates: r.FormValue("duplicates"),
	}
	if value := r.FormValue("fold_diacritics"); value != "" {
		fold, err := strconv.ParseBool(value)
		if err != nil {
			return CompareRequest{}, fmt.Errorf("%w: fold_diacritics %q", ErrInvalidOption, value)
		}
		req.FoldDiacritics = &fold
	}
	if value := r.FormValue("save"); value != "" {
		save, err := strconv.ParseBool(value)
		if err != nil {
			return CompareRequest{}, fmt.Errorf("%w: save %q", ErrInvalidOption, value)
		}
		req.Save = &save
	}

	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			return CompareRequest{}, fmt.Errorf("open upload %s: %w", header.Filename, err)
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return CompareRequest{}, fmt.Errorf("read upload %s: %w", header.Filename, err)
		}
		input, err := s.svc.ExtractUpload(r.Context(), header.Filename, data)
		if err != nil {
			return CompareRequest{}, err
		}
		req.Documents = append(req.Documents, input)
	}
	return req, nil
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := 0
	if value := strings.TrimSpace(r.URL.Query().Get("limit")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	runs, err := s.svc.Runs(r.Context(), limit)
	if err != nil {
		s.writeError(w, historyErrorStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, RunListResponse{Runs: runs})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		analysis, err := s.svc.Run(r.Context(), id)
		if err != nil {
			s.writeError(w, historyErrorStatus(err), err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, analysis)
	case http.MethodDelete:
		deleted, err := s.svc.DeleteRun(r.Context(), id)
		if err != nil {
			s.writeError(w, historyErrorStatus(err), err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, DeleteResponse{Deleted: deleted})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func requestErrorStatus(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, extract.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, extract.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, extract.ErrUnreadable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func historyErrorStatus(err error) int {
	switch {
	case errors.Is(err, runstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, runstore.ErrAmbiguousID):
		return http.StatusBadRequest
	case errors.Is(err, ErrHistoryDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
