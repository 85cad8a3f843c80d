package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"campus-records/internal/middleware"
	"campus-records/internal/model"
	"campus-records/internal/service"
	"campus-records/pkg/apierror"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	result, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, loginError(err))
		return
	}

	writeSuccess(w, http.StatusOK, result, nil)
}

// Me reports the principal the authenticator derived from the token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"username": principal.Subject,
		"roles":    principal.Roles,
	}, nil)
}

// loginError keeps the three login failures distinct but pins them all
// to HTTP 400 at this endpoint, matching the documented contract.
func loginError(err error) error {
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return apierror.New("USER_NOT_FOUND", "username does not exist", "", http.StatusBadRequest)
	case errors.Is(err, model.ErrInvalidCredentials):
		return apierror.New("INVALID_CREDENTIALS", "password is incorrect", "", http.StatusBadRequest)
	case errors.Is(err, model.ErrAccountDisabled):
		return apierror.New("ACCOUNT_DISABLED", "account has been disabled", "", http.StatusBadRequest)
	default:
		return err
	}
}
