package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"tradegate/internal/jwttoken"
	id "tradegate/pkg/domain"
	"tradegate/pkg/requestcontext"
)

// TokenValidator defines the interface for validating access tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwttoken.Claims, error)
}

// RequireAuth validates the bearer token and loads the caller's identity into
// the request context as a typed BuyerID or SellerID depending on the token
// role. Requests without a valid token get 401 before reaching handlers.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, "Missing bearer token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				unauthorized(w, "Invalid or expired token")
				return
			}

			accountID, err := uuid.Parse(claims.AccountID)
			if err != nil || accountID == uuid.Nil {
				unauthorized(w, "Invalid token subject")
				return
			}

			switch jwttoken.Role(claims.Role) {
			case jwttoken.RoleBuyer:
				ctx = requestcontext.WithBuyerID(ctx, id.BuyerID(accountID))
			case jwttoken.RoleSeller:
				ctx = requestcontext.WithSellerID(ctx, id.SellerID(accountID))
			default:
				unauthorized(w, "Unknown token role")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
