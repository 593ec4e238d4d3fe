package http

import (
	"encoding/json"
	"net/http"
	apperrors "salonbook/pkg/errors"
)

type ErrorResponse struct {
	Code    string         `json:"code"`
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data any `json:"data"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError maps any error to its AppError status. Errors that are not AppErrors become a
// 500 without leaking their text.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)

	status := appErr.StatusCode()
	if status == 0 {
		status = http.StatusInternalServerError
	}

	resp := ErrorResponse{
		Code:    appErr.Code,
		Error:   appErr.Message,
		Details: appErr.Details,
	}
	return WriteJSON(w, status, resp)
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}
