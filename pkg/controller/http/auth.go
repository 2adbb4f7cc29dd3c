package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/doowon-lab/dwportal/pkg/domain/model/auth"
	"github.com/doowon-lab/dwportal/pkg/usecase"
	"github.com/doowon-lab/dwportal/pkg/utils/errutil"
)

type successResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password" masq:"secret"`
}

type userMeResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
}

// authLoginHandler verifies the Basic pair against the tracker and sets the
// session cookie pair on success.
func authLoginHandler(authUC *usecase.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid login request"), http.StatusBadRequest)
			return
		}

		token, err := authUC.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeJSON(r.Context(), w, http.StatusUnauthorized,
				errorResponse{Error: "아이디 또는 비밀번호가 올바르지 않습니다."})
			return
		}

		setSessionCookies(w, r, token)
		writeJSON(r.Context(), w, http.StatusOK, userMeResponse{
			Success:  true,
			Username: token.Username,
		})
	}
}

// authLogoutHandler deletes the session and clears the cookie pair
func authLogoutHandler(authUC *usecase.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("token_id"); err == nil {
			if err := authUC.Logout(r.Context(), auth.TokenID(cookie.Value)); err != nil {
				errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to logout"), http.StatusInternalServerError)
				return
			}
		}

		clearSessionCookies(w, r)
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

// authMeHandler returns the current session's user
func authMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := auth.TokenFromContext(r.Context())
		if token == nil {
			writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Error: "로그인이 필요합니다."})
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, userMeResponse{
			Success:  true,
			Username: token.Username,
		})
	}
}

func setSessionCookies(w http.ResponseWriter, r *http.Request, token *auth.Token) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token_id",
		Value:    string(token.ID),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  token.ExpiresAt,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "token_secret",
		Value:    string(token.Secret),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  token.ExpiresAt,
	})
}

func clearSessionCookies(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{"token_id", "token_secret"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}
