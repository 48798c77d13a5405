package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/instashare/instashare/internal/common"
	"github.com/instashare/instashare/internal/logging"
	"github.com/instashare/instashare/internal/server/files"
	"github.com/instashare/instashare/internal/server/models"
	"github.com/instashare/instashare/internal/server/pipeline"
)

// Admitter accepts validated uploads into the ingestion pipeline.
type Admitter interface {
	Admit(ctx context.Context, in pipeline.AdmitInput) (*models.File, error)
}

// FilesHandler serves the file management endpoints.
type FilesHandler struct {
	svc      *files.Service
	admitter Admitter
	logger   logging.Logger

	maxUploadBytes int64
}

func NewFilesHandler(svc *files.Service, admitter Admitter, maxUploadBytes int64, logger logging.Logger) *FilesHandler {
	return &FilesHandler{
		svc:            svc,
		admitter:       admitter,
		logger:         logger.With("module", "httpapi"),
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *FilesHandler) RegisterRoutes(r chi.Router) {
	r.Route("/files", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Upload)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/download", h.Download)
		r.Put("/{id}", h.Rename)
		r.Patch("/{id}", h.Rename)
		r.Delete("/{id}", h.Delete)
	})
}

// Upload admits a multipart upload ("file" part, client filename) into the
// pipeline and answers with the created record.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, common.FieldError("file", "a file is required"))
		return
	}
	defer file.Close()

	var ownerID *string
	if id, ok := UserID(r.Context()); ok {
		ownerID = &id
	}

	created, err := h.admitter.Admit(r.Context(), pipeline.AdmitInput{
		Name:    header.Filename,
		OwnerID: ownerID,
		Reader:  file,
	})
	if err != nil {
		h.logger.Warn(r.Context(), "Upload rejected", "file_name", header.Filename, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// List answers the listing endpoint. filter and sort arrive as JSON-encoded
// query parameters; current/pageSize control paging.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	items, total, err := h.svc.List(r.Context(), params)
	if err != nil {
		h.logger.Error(r.Context(), "Listing files failed", "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope{Success: true, Data: items, Total: total})
}

func (h *FilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Download streams the compressed artifact. Only ZIPPED files are
// downloadable.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	rc, name, err := h.svc.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error(r.Context(), "Streaming download failed",
			"file_id", chi.URLParam(r, "id"), "error", err)
	}
}

type renameRequest struct {
	Name string `json:"name"`
}

// Rename updates the record's name, the only client-modifiable attribute.
func (h *FilesHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.FieldError("name", "a name is required"))
		return
	}

	f, err := h.svc.Rename(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, f)
}

func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseListParams decodes the listing contract: filter is a JSON object of
// column to accepted values, sort a JSON object of column to
// "ascend"/"descend".
func parseListParams(r *http.Request) (files.ListParams, error) {
	q := r.URL.Query()
	params := files.ListParams{Keyword: q.Get("keyword")}

	if raw := q.Get("filter"); raw != "" {
		var filter map[string][]string
		if err := json.Unmarshal([]byte(raw), &filter); err != nil {
			return params, common.FieldError("filter", "malformed filter")
		}
		for _, s := range filter["status"] {
			status := models.FileStatus(s)
			if !status.Valid() {
				return params, common.FieldError("filter", "unknown status "+s)
			}
			params.Statuses = append(params.Statuses, status)
		}
	}

	if raw := q.Get("sort"); raw != "" {
		var sorters map[string]string
		if err := json.Unmarshal([]byte(raw), &sorters); err != nil {
			return params, common.FieldError("sort", "malformed sort")
		}
		for column, dir := range sorters {
			params.Sort = append(params.Sort, files.SortOrder{Column: column, Desc: dir == "descend"})
		}
	}

	if raw := q.Get("current"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return params, common.FieldError("current", "must be a positive integer")
		}
		params.Current = n
	}
	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return params, common.FieldError("pageSize", "must be a positive integer")
		}
		params.PageSize = n
	}

	return params, nil
}
