package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/curator/internal/enrich"
	"github.com/MrSnakeDoc/curator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/curator/internal/httpserver/mw"
	"github.com/MrSnakeDoc/curator/internal/logger"
	"github.com/MrSnakeDoc/curator/internal/organise"
	"github.com/MrSnakeDoc/curator/internal/store"
	"github.com/MrSnakeDoc/curator/internal/utils"
)

const (
	maxJSONBody     = 1 << 20
	multipartMemory = 8 << 20
)

type limitQuery struct {
	Limit int `validate:"min=1,max=100"`
}

type startedResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
	JobID   string `json:"jobId"`
	Limit   int    `json:"limit"`
}

type previewResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

type extractMetadataRequest struct {
	URL string `json:"url" validate:"required"`
}

type documentUpload struct {
	Filename string `validate:"required"`
	Size     int64  `validate:"gte=0"`
}

// parseLimit reads ?limit=, defaulting to organise.DefaultLimit.
func parseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return organise.DefaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}
	if err := validateStruct(limitQuery{Limit: n}); err != nil {
		return 0, err
	}
	return n, nil
}

// AutoOrganise starts a background bulk pass and answers 202 immediately.
func AutoOrganise(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, _ := mw.ScopeFrom(r.Context())

		limit, err := parseLimit(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		job, err := d.Organiser.StartBulkPass(r.Context(), scope, limit)
		switch {
		case errors.Is(err, organise.ErrInvalidLimit):
			writeError(w, http.StatusBadRequest, "Limit must be between 1 and 100")
			return
		case err != nil:
			writeInternal(w, d, "Failed to start auto-organise", err)
			return
		}

		writeJSON(w, http.StatusAccepted, startedResponse{
			Success: true,
			Status:  "started",
			Message: "Auto organise in progress. Your resources are being organized.",
			JobID:   job.ID,
			Limit:   limit,
		})
	}
}

// Preview reports how many resources a bulk pass would process.
func Preview(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, _ := mw.ScopeFrom(r.Context())
		noCache(w)

		limit, err := parseLimit(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		count, err := d.Organiser.PreviewCandidateCount(r.Context(), scope, limit)
		switch {
		case errors.Is(err, organise.ErrInvalidLimit):
			writeError(w, http.StatusBadRequest, "Limit must be between 1 and 100")
			return
		case err != nil:
			writeInternal(w, d, "Failed to get preview", err)
			return
		}

		writeJSON(w, http.StatusOK, previewResponse{
			Success: true,
			Count:   count,
			Message: fmt.Sprintf("Found %d unorganised resources", count),
		})
	}
}

// JobStatus returns the status record of a bulk pass owned by the caller.
func JobStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, _ := mw.ScopeFrom(r.Context())
		noCache(w)

		id := chi.URLParam(r, "id")
		rec, err := d.Organiser.Job(r.Context(), id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Job not found")
			return
		case err != nil:
			writeInternal(w, d, "Failed to load job", err)
			return
		case rec.Scope != scope:
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}

		writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: rec})
	}
}

// ExtractMetadata suggests form fields for a URL.
func ExtractMetadata(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, _ := mw.ScopeFrom(r.Context())

		var req extractMetadataRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Request body must be JSON")
			return
		}
		req.URL = strings.TrimSpace(req.URL)
		if err := validateStruct(req); err != nil {
			writeError(w, http.StatusBadRequest, "URL is required")
			return
		}

		suggestion, err := d.Organiser.PrefillFromURL(r.Context(), req.URL, scope)
		switch {
		case errors.Is(err, organise.ErrMissingInput):
			writeError(w, http.StatusBadRequest, "URL is required")
			return
		case errors.Is(err, organise.ErrInvalidURL):
			writeError(w, http.StatusBadRequest, "URL must be an absolute http or https address")
			return
		case err != nil:
			writeInternal(w, d, "Failed to extract metadata", err)
			return
		}

		writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: suggestion})
	}
}

// ExtractDocumentMetadata suggests form fields for an uploaded file sent as
// the multipart field "file".
func ExtractDocumentMetadata(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, _ := mw.ScopeFrom(r.Context())

		// Leave room for the multipart envelope around the file itself.
		r.Body = http.MaxBytesReader(w, r.Body, d.MaxUploadBytes+maxJSONBody)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds the %d byte limit", d.MaxUploadBytes))
				return
			}
			writeError(w, http.StatusBadRequest, "File is required")
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "File is required")
			return
		}
		defer utils.Close(file)

		if err := validateStruct(documentUpload{Filename: header.Filename, Size: header.Size}); err != nil {
			writeError(w, http.StatusBadRequest, "File is required")
			return
		}
		if header.Size > d.MaxUploadBytes {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds the %d byte limit", d.MaxUploadBytes))
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			writeInternal(w, d, "Failed to read uploaded file", err)
			return
		}
		contentType := header.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(content)
		}

		d.Logger.Info("document prefill requested",
			logger.String("filename", header.Filename),
			logger.Int("size", len(content)),
			logger.String("user_id", scope.UserID),
			logger.String("persona", scope.Persona))

		suggestion, err := d.Organiser.PrefillFromDocument(r.Context(), enrich.Document{
			Filename:    header.Filename,
			ContentType: contentType,
			Content:     content,
		}, scope)
		switch {
		case errors.Is(err, organise.ErrMissingInput):
			writeError(w, http.StatusBadRequest, "File is required")
			return
		case err != nil:
			writeInternal(w, d, "Failed to extract document metadata", err)
			return
		}

		writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: suggestion})
	}
}
