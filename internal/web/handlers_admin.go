package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/hsncheck/internal/core"
)

const (
	// multipartOverhead allows for form boundaries and headers around the file.
	multipartOverhead = 1 << 20

	// multipartMemory is how much of an upload is held in memory before
	// spilling to a temp file.
	multipartMemory = 8 << 20

	// uploadRetryAfter is the Retry-After hint when all upload slots are busy.
	uploadRetryAfter = "5"
)

// uploadResponse is the reply of POST /api/admin/upload.
type uploadResponse struct {
	Version    string   `json:"version"`
	HSNRecords int      `json:"hsn_records"`
	SACRecords int      `json:"sac_records"`
	Warnings   []string `json:"warnings"`
}

// handleUpload replaces the reference data with an uploaded workbook.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		err = uploadFormError(err, maxSize)
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			err = core.ErrNoFile
		}
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer file.Close()

	if header.Size > maxSize {
		err := fmt.Errorf("%w: %d bytes exceeds limit of %d", errFileTooLarge, header.Size, maxSize)
		s.respondError(w, r, err, statusFor(err))
		return
	}

	info, err := s.service.Upload(withClient(r), header.Filename, file)
	if err != nil {
		if errors.Is(err, core.ErrTooManyUploads) {
			w.Header().Set("Retry-After", uploadRetryAfter)
		}
		s.respondError(w, r, err, statusFor(err))
		return
	}

	warnings := info.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, r, http.StatusOK, uploadResponse{
		Version:    info.ID,
		HSNRecords: info.HSNRecords,
		SACRecords: info.SACRecords,
		Warnings:   warnings,
	})
}

// handleDashboard returns invalid-code statistics and the data version.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Dashboard())
}

// uploadFormError classifies a multipart parse failure.
func uploadFormError(err error, maxSize int64) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), strings.Contains(err.Error(), "request body too large"):
		return fmt.Errorf("%w: limit is %d bytes", errFileTooLarge, maxSize)
	case errors.Is(err, http.ErrNotMultipart):
		return core.ErrNoFile
	default:
		return fmt.Errorf("parse upload form: %w", err)
	}
}
