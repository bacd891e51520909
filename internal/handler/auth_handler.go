package handler

import (
	"encoding/json"
	"net/http"

	"bank-portal/internal/auth"
	"bank-portal/internal/errors"
	"bank-portal/internal/router"
	"bank-portal/internal/session"
	"bank-portal/internal/utils"
)

type AuthHandler struct {
	client  *auth.Client
	checker *session.Checker
}

func NewAuthHandler(client *auth.Client, checker *session.Checker) *AuthHandler {
	return &AuthHandler{
		client:  client,
		checker: checker,
	}
}

type LoginRequest struct {
	CustomerNo   *int64 `json:"customer_no"`
	PasswordHash string `json:"password_hash"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Redirect    string `json:"redirect"`
}

type StatusResponse struct {
	Authenticated bool `json:"authenticated"`
	Expired       bool `json:"expired"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	if utils.HasEmptyValues(map[string]any{
		"customer_no":   req.CustomerNo,
		"password_hash": req.PasswordHash,
	}) {
		writeError(w, errors.NewAppError(errors.InvalidInput, "customer_no and password_hash are required"))
		return
	}

	token, err := h.client.Login(r.Context(), *req.CustomerNo, req.PasswordHash)
	if err != nil {
		appErr := asAppError(err)
		redirect := router.FailedPath
		if appErr.Code == errors.AuthError {
			redirect = router.InvalidCredentialsPath
		}
		writeErrorRedirect(w, appErr, redirect)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		Redirect:    router.HomePath,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.client.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Authenticated: h.client.IsAuthenticated(),
		Expired:       h.checker.Expired(),
	})
}
