package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"sahaya_api/internal/common"
	"sahaya_api/internal/common/security"
	"sahaya_api/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const identityCtxKey contextKey = "identity"

// UserLookup loads the record behind an authenticated identity.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Session verifies the access_token cookie and rejects requests without a
// valid token. On success the caller's model.Identity is in the context.
func Session(tokenAuth *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	verify := jwtauth.Verify(tokenAuth, security.TokenFromCookie)
	return func(next http.Handler) http.Handler {
		return verify(Authenticator(next))
	}
}

// Authenticator turns the token left by jwtauth.Verify into an Identity.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			common.RespondWithMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := WithIdentity(r.Context(), model.Identity{UserID: userID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin admits only callers whose stored role is admin. The role is
// read from the store on every request, so a demotion takes effect immediately.
func RequireAdmin(lookup UserLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				common.RespondWithMessage(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			user, err := lookup.GetUserByID(r.Context(), identity.UserID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					// Token outlived its account.
					common.RespondWithMessage(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
				common.RespondWithServiceError(w, r, logger, err)
				return
			}
			if user.Role != model.RoleAdmin {
				common.RespondWithMessage(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey).(model.Identity)
	return identity, ok
}
