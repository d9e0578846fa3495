package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"orderreport/internal/lib/sl"
	"orderreport/internal/service"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type Authenticator interface {
	Authenticate(login, password string) error
	IssueToken(login string) (string, error)
}

// LoginHandler exchanges operator credentials for a bearer token returned in
// the Authorization header.
func LoginHandler(log *slog.Logger, auth Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			renderError(w, r, http.StatusBadRequest, "invalid json")
			return
		}

		if err := auth.Authenticate(req.Login, req.Password); err != nil {
			renderError(w, r, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
			return
		}

		token, err := auth.IssueToken(req.Login)
		if err != nil {
			log.Error("token generation failed", sl.Err(err))
			renderError(w, r, http.StatusInternalServerError, "token generation failed")
			return
		}

		w.Header().Set("Authorization", "Bearer "+token)
		w.WriteHeader(http.StatusOK)
	}
}
