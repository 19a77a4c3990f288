// Package handler exposes the wallet authentication endpoint.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docproof/internal/auth"
	dErrors "docproof/pkg/domain-errors"
	"docproof/pkg/platform/httputil"
	"docproof/pkg/requestcontext"
)

// Service defines the authentication operations the handler needs.
type Service interface {
	Authenticate(ctx context.Context, wallet, signature string) (*auth.Result, error)
}

// Handler wires wallet verification to the auth service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an auth handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/walletverify", h.HandleWalletVerify)
}

// RegisterProtected mounts the session liveness probe.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/auth/check", h.HandleCheck)
}

// HandleWalletVerify handles POST /walletverify requests.
func (h *Handler) HandleWalletVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		WalletAddress string `json:"walletAddress"`
		Signature     string `json:"signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "walletAddress and signature are required"))
		return
	}

	result, err := h.service.Authenticate(ctx, req.WalletAddress, req.Signature)
	if err != nil {
		h.logger.WarnContext(ctx, "wallet verification rejected",
			"request_id", requestcontext.RequestID(ctx),
			"wallet", req.WalletAddress,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "wallet verified",
		"request_id", requestcontext.RequestID(ctx),
		"wallet", req.WalletAddress,
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleCheck handles GET /auth/check requests. Reaching it at all means the
// session middleware accepted the credential.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"valid": true})
}
