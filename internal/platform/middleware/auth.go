package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"docproof/pkg/requestcontext"
)

// SessionValidator defines the interface for validating session tokens.
type SessionValidator interface {
	ValidateToken(tokenString string) (*SessionClaims, error)
}

// SessionClaims represents the identity asserted by a validated session.
// Organization sessions carry a wallet address; verifier sessions carry an
// email. Both carry the principal's internal id.
type SessionClaims struct {
	AccountID     string
	WalletAddress string
	Email         string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errCode + `","error_description":"` + errDesc + `"}`))
}

// RequireAuth enforces a present, valid, unexpired session credential and
// attaches the decoded identity to the request context. Downstream handlers
// trust the context and do not re-verify identity.
func RequireAuth(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(r.Context(), "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx := requestcontext.WithAccountID(r.Context(), claims.AccountID)
			if claims.WalletAddress != "" {
				ctx = requestcontext.WithWalletAddress(ctx, claims.WalletAddress)
			}
			if claims.Email != "" {
				ctx = requestcontext.WithEmail(ctx, claims.Email)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOwner restricts a route to the configured owner principal. Must be
// mounted after RequireAuth. Wallet comparison is case-insensitive.
func RequireOwner(ownerWallet string, logger *slog.Logger) func(http.Handler) http.Handler {
	owner := strings.ToLower(ownerWallet)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wallet := requestcontext.WalletAddress(r.Context())
			if owner == "" || wallet == "" || !strings.EqualFold(wallet, owner) {
				logger.WarnContext(r.Context(), "forbidden - owner-only route",
					"wallet", wallet,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Only the owner may access this route")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
