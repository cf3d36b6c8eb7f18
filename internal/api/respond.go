package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"tokenLauncher/internal/launch"
)

const (
	msgLaunched        = "Token launched successfully"
	msgValidation      = "Name, symbol are required"
	msgLaunchFailed    = "Failed to launch token"
	msgTokenNotFound   = "Token not found"
	msgInvalidTokenID  = "Invalid token id"
	msgTooManyRequests = "Too many requests"
	msgInternal        = "Internal server error"
)

type launchResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	TokenAddress string `json:"token_address"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Success: false, Error: msg})
}

// writeLaunchErr maps a launch failure to its status. Only validation is the caller's fault.
func writeLaunchErr(w http.ResponseWriter, err error) {
	if launch.KindOf(err) == launch.KindValidation || errors.Is(err, launch.ErrValidation) {
		writeError(w, http.StatusBadRequest, msgValidation)
		return
	}
	writeError(w, http.StatusInternalServerError, msgLaunchFailed)
}
