package http

import (
	"net/http"

	"github.com/doowon-lab/dwportal/pkg/domain/model/auth"
	"github.com/doowon-lab/dwportal/pkg/usecase"
)

// authMiddleware resolves the session cookie pair and attaches the token to
// the request context. The token carries the downstream credential every
// proxied call forwards.
func authMiddleware(authUC *usecase.AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenIDCookie, err := r.Cookie("token_id")
			if err != nil {
				writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Error: "로그인이 필요합니다."})
				return
			}

			tokenSecretCookie, err := r.Cookie("token_secret")
			if err != nil {
				writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Error: "로그인이 필요합니다."})
				return
			}

			tokenID := auth.TokenID(tokenIDCookie.Value)
			tokenSecret := auth.TokenSecret(tokenSecretCookie.Value)

			token, err := authUC.ValidateToken(r.Context(), tokenID, tokenSecret)
			if err != nil {
				writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Error: "세션이 만료되었습니다. 다시 로그인해 주세요."})
				return
			}

			ctx := auth.ContextWithToken(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
