package handler

import (
	"encoding/json"
	"net/http"

	"bank-portal/internal/errors"
)

type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *Error      `json:"error,omitempty"`
}

type Error struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := Response{Data: data}
	json.NewEncoder(w).Encode(response)
}

func writeError(w http.ResponseWriter, appErr *errors.AppError) {
	writeErrorRedirect(w, appErr, "")
}

// writeErrorRedirect also names the page the portal should show next.
func writeErrorRedirect(w http.ResponseWriter, appErr *errors.AppError, redirect string) {
	w.Header().Set("Content-Type", "application/json")

	statusCode := appErr.HTTPStatus()
	errResponse := Error{
		Code:     string(appErr.Code),
		Message:  appErr.Message,
		Details:  appErr.Details,
		Redirect: redirect,
	}

	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{Error: &errResponse})
}

// asAppError keeps AppErrors as they are and hides anything else behind
// an internal error.
func asAppError(err error) *errors.AppError {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr
	}
	return errors.NewAppError(errors.InternalError, "an unexpected error occurred")
}
