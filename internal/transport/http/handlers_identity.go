package httptransport

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"docproof/internal/organization"
	"docproof/internal/verifier"
	dErrors "docproof/pkg/domain-errors"
	"docproof/pkg/platform/httputil"
	"docproof/pkg/platform/sentinel"
	"docproof/pkg/requestcontext"
)

// OrganizationDirectory resolves organization accounts by id.
type OrganizationDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error)
}

// VerifierDirectory resolves verifier accounts by id.
type VerifierDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*verifier.Verifier, error)
}

// IdentityHandler classifies an authenticated session as organization,
// verifier or guest. The frontend routes users to the right surface based
// on this.
type IdentityHandler struct {
	orgs      OrganizationDirectory
	verifiers VerifierDirectory
}

func NewIdentityHandler(orgs OrganizationDirectory, verifiers VerifierDirectory) *IdentityHandler {
	return &IdentityHandler{orgs: orgs, verifiers: verifiers}
}

// HandleCheckUserType handles GET /check-user-type requests.
func (h *IdentityHandler) HandleCheckUserType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := uuid.Parse(requestcontext.AccountID(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid session subject"))
		return
	}

	org, err := h.orgs.FindByID(ctx, accountID)
	if err == nil {
		name := "Unnamed Organization"
		if org.KYC != nil && org.KYC.OrgName != "" {
			name = org.KYC.OrgName
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"type": "organization",
			"name": name,
		})
		return
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "account lookup failed", err))
		return
	}

	v, err := h.verifiers.FindByID(ctx, accountID)
	if err == nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"type":  "verifier",
			"name":  v.FirstName,
			"email": v.Email,
		})
		return
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "account lookup failed", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"type": "normal",
		"name": "Guest User",
	})
}
