// Package handler exposes the artifact gateway endpoints: file pinning and
// timed access links.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"docproof/internal/artifact"
	dErrors "docproof/pkg/domain-errors"
	"docproof/pkg/platform/httputil"
	"docproof/pkg/requestcontext"
)

// Service defines the artifact operations the handler needs.
type Service interface {
	Store(ctx context.Context, upload artifact.Upload) (string, error)
	View(ctx context.Context, cid string) (string, time.Duration, error)
}

// Handler wires artifact endpoints to the artifact service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an artifact handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterProtected mounts the endpoints that require a session.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/upload", h.HandleUpload)
	r.Get("/view/{cid}", h.HandleView)
}

// HandleUpload handles POST /upload requests.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(artifact.MaxUploadSize); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart payload"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.NewValidation([]dErrors.FieldViolation{
			{Field: "file", Message: "no file uploaded"},
		}))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, artifact.MaxUploadSize+1))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "file read failed", err))
		return
	}

	cid, err := h.service.Store(ctx, artifact.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "upload failed",
			"request_id", requestcontext.RequestID(ctx),
			"filename", header.Filename,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "File uploaded successfully",
		"cid":     cid,
	})
}

// HandleView handles GET /view/{cid} requests.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	url, expiry, err := h.service.View(ctx, chi.URLParam(r, "cid"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"url":       url,
		"expiresIn": int(expiry.Seconds()),
	})
}
