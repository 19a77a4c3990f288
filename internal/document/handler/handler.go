// Package handler exposes issuance, recipient lookup and the public
// dashboard statistics.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"docproof/internal/document"
	dErrors "docproof/pkg/domain-errors"
	"docproof/pkg/platform/httputil"
	"docproof/pkg/requestcontext"
)

// Service defines the document operations the handler needs.
type Service interface {
	Issue(ctx context.Context, accountID uuid.UUID, req document.IssueRequest) (*document.IssuedDocument, error)
	LookupRecipient(ctx context.Context, docHash string) (string, error)
	DashboardStats(ctx context.Context) (*document.Stats, error)
}

// Handler wires document endpoints to the document service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a document handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/dashboard-stats", h.HandleDashboardStats)
}

// RegisterProtected mounts the endpoints that require a session.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/issue", h.HandleIssue)
	r.Post("/getWallet", h.HandleLookupRecipient)
}

// HandleIssue handles POST /issue requests.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := uuid.Parse(requestcontext.AccountID(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid session subject"))
		return
	}

	var req document.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	doc, err := h.service.Issue(ctx, accountID, req)
	if err != nil {
		h.logger.WarnContext(ctx, "document issue failed",
			"request_id", requestcontext.RequestID(ctx),
			"doc_hash", req.DocHash,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document issued",
		"request_id", requestcontext.RequestID(ctx),
		"doc_hash", doc.DocHash,
		"org_wallet", doc.OrgWallet,
	)
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":  "Document issued successfully",
		"document": doc,
	})
}

// HandleLookupRecipient handles POST /getWallet requests.
func (h *Handler) HandleLookupRecipient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		DocHash string `json:"docHash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "docHash is required"))
		return
	}

	wallet, err := h.service.LookupRecipient(ctx, req.DocHash)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message":       "Wallet address found",
		"walletAddress": wallet,
	})
}

// HandleDashboardStats handles GET /dashboard-stats requests.
func (h *Handler) HandleDashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.service.DashboardStats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard stats failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": stats})
}
