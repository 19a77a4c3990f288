// Package handler exposes verifier account endpoints: registration, sign-in
// and verification recording.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"docproof/internal/verifier"
	dErrors "docproof/pkg/domain-errors"
	"docproof/pkg/platform/httputil"
	"docproof/pkg/requestcontext"
)

// Service defines the verifier operations the handler needs.
type Service interface {
	SignUp(ctx context.Context, req verifier.SignUpRequest) (*verifier.Verifier, error)
	SignIn(ctx context.Context, email, password string) (string, *verifier.Verifier, error)
	RecordVerification(ctx context.Context, name, email, cid string) (*verifier.VerificationEvent, error)
	ByID(ctx context.Context, id uuid.UUID) (*verifier.Verifier, error)
}

// Handler wires verifier endpoints to the verifier service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a verifier handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/signup", h.HandleSignUp)
	r.Post("/signin", h.HandleSignIn)
}

// RegisterProtected mounts the endpoints that require a session.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/verify", h.HandleVerify)
	r.Get("/dashboard", h.HandleDashboard)
}

// HandleSignUp handles POST /signup requests.
func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifier.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	v, err := h.service.SignUp(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "verifier signup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created successfully",
		"user":    v,
	})
}

// HandleSignIn handles POST /signin requests.
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "email and password are required"))
		return
	}

	token, _, err := h.service.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "verifier signin rejected",
			"request_id", requestcontext.RequestID(ctx),
			"email", req.Email,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   token,
	})
}

// HandleVerify handles POST /verify requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		CID   string `json:"cid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "name, email and cid are required"))
		return
	}

	event, err := h.service.RecordVerification(ctx, req.Name, req.Email, req.CID)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification record failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Verification details stored successfully",
		"data":    event,
	})
}

// HandleDashboard handles GET /dashboard requests: it resolves the session
// back to a verifier account, confirming the token belongs to one.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := uuid.Parse(requestcontext.AccountID(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid session subject"))
		return
	}

	v, err := h.service.ByID(ctx, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Token valid",
		"user":    v,
	})
}
