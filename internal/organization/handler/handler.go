// Package handler exposes the organization endpoints: challenge issuance,
// KYC submission and the owner review queue.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docproof/internal/artifact"
	"docproof/internal/organization"
	dErrors "docproof/pkg/domain-errors"
	"docproof/pkg/platform/httputil"
	"docproof/pkg/requestcontext"
)

// Service defines the organization operations the handler needs.
type Service interface {
	Challenge(ctx context.Context, wallet string) (string, error)
	SubmitKYC(ctx context.Context, wallet string, sub organization.KYCSubmission) (*organization.Organization, error)
	Decide(ctx context.Context, wallet string, decision organization.KYCStatus) (*organization.Organization, error)
	Profile(ctx context.Context, wallet string) (*organization.Organization, error)
	ListPending(ctx context.Context) ([]*organization.Organization, error)
}

// ArtifactStore pins uploaded certificates; satisfied by *artifact.Service.
type ArtifactStore interface {
	Store(ctx context.Context, upload artifact.Upload) (string, error)
}

// Handler wires organization endpoints to the organization service.
type Handler struct {
	service   Service
	artifacts ArtifactStore
	logger    *slog.Logger
}

// New constructs an organization handler with its dependencies.
func New(service Service, artifacts ArtifactStore, logger *slog.Logger) *Handler {
	return &Handler{service: service, artifacts: artifacts, logger: logger}
}

// RegisterPublic mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/nonce", h.HandleNonce)
}

// RegisterProtected mounts the endpoints that require a session.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/kyc", h.HandleSubmitKYC)
	r.Get("/me", h.HandleProfile)
}

// RegisterOwner mounts the owner-only review endpoints.
func (h *Handler) RegisterOwner(r chi.Router) {
	r.Post("/updateOrgStatus", h.HandleDecide)
	r.Get("/kycrequests", h.HandleListPending)
}

// HandleNonce handles POST /nonce requests.
func (h *Handler) HandleNonce(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		WalletAddress string `json:"walletAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WalletAddress == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "walletAddress is required"))
		return
	}

	nonce, err := h.service.Challenge(ctx, req.WalletAddress)
	if err != nil {
		h.logger.ErrorContext(ctx, "challenge failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"nonce": nonce})
}

// HandleSubmitKYC handles POST /kyc requests. The payload is multipart: the
// profile fields plus the certificate file, which is pinned to the artifact
// gateway before the submission is persisted.
func (h *Handler) HandleSubmitKYC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet := requestcontext.WalletAddress(ctx)
	if wallet == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "organization session required"))
		return
	}

	if err := r.ParseMultipartForm(artifact.MaxUploadSize); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart payload"))
		return
	}

	certRef, err := h.pinCertificate(ctx, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub := organization.KYCSubmission{
		OrgName:        r.FormValue("orgName"),
		OrgType:        r.FormValue("orgType"),
		OfficialEmail:  r.FormValue("officialEmail"),
		Website:        r.FormValue("website"),
		Address:        r.FormValue("address"),
		Country:        r.FormValue("country"),
		RegistrationNo: r.FormValue("registrationNo"),
		CertificateRef: certRef,
		FullName:       r.FormValue("fullName"),
		Position:       r.FormValue("position"),
		ContactNo:      r.FormValue("contactNo"),
		PersonalEmail:  r.FormValue("personalEmail"),
	}

	org, err := h.service.SubmitKYC(ctx, wallet, sub)
	if err != nil {
		h.logger.ErrorContext(ctx, "kyc submission failed",
			"request_id", requestcontext.RequestID(ctx),
			"wallet", wallet,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "kyc submitted",
		"request_id", requestcontext.RequestID(ctx),
		"wallet", wallet,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":    "KYC submitted successfully",
		"kycDetails": org.KYC,
	})
}

// HandleDecide handles POST /updateOrgStatus requests. Owner-only; the
// middleware chain enforces that before this runs.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		WalletAddress string `json:"walletAddress"`
		Status        string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WalletAddress == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "walletAddress and status are required"))
		return
	}

	org, err := h.service.Decide(ctx, req.WalletAddress, organization.KYCStatus(req.Status))
	if err != nil {
		h.logger.ErrorContext(ctx, "kyc decision failed",
			"request_id", requestcontext.RequestID(ctx),
			"wallet", req.WalletAddress,
			"status", req.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":       "Organization status updated",
		"status":        org.KYC.Status,
		"isKycVerified": org.IsKYCVerified(),
	})
}

// HandleListPending handles GET /kycrequests requests.
func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgs, err := h.service.ListPending(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "pending listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"requests": orgs})
}

// HandleProfile handles GET /me requests.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet := requestcontext.WalletAddress(ctx)
	if wallet == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "organization session required"))
		return
	}

	org, err := h.service.Profile(ctx, wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"kycDetails":    org.KYC,
		"isKycVerified": org.IsKYCVerified(),
	})
}

func (h *Handler) pinCertificate(ctx context.Context, r *http.Request) (string, error) {
	file, header, err := r.FormFile("certificate")
	if err != nil {
		return "", dErrors.NewValidation([]dErrors.FieldViolation{
			{Field: "certificate", Message: "certificate file is required"},
		})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, artifact.MaxUploadSize+1))
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeInternal, "certificate read failed", err)
	}

	return h.artifacts.Store(ctx, artifact.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
}
