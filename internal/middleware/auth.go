package middleware

import (
	"context"
	"net/http"
	"strconv"

	"liquidhire/internal/models"
	"liquidhire/internal/utils"
)

const authUserKey contextKey = "auth_user_id"

// RequireAuth validates the Bearer token and stores the caller's user ID in
// the request context.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := utils.VerifyToken(r, secret)
			if err != nil {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "unauthorized",
					Message: err.Error(),
				})
				return
			}

			sub, err := utils.GetUserIDFromClaims(claims)
			if err != nil {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "unauthorized",
					Message: err.Error(),
				})
				return
			}
			userID, err := strconv.ParseUint(sub, 10, 64)
			if err != nil {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "unauthorized",
					Message: "invalid subject claim",
				})
				return
			}

			ctx := context.WithValue(r.Context(), authUserKey, uint(userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthUserID returns the authenticated user ID stored by RequireAuth.
func AuthUserID(r *http.Request) (uint, bool) {
	id, ok := r.Context().Value(authUserKey).(uint)
	return id, ok
}
