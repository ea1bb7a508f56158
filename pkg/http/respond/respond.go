// Package respond writes JSON responses.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/mpapenbr/simlap-service-go/log"
)

// ErrorBody is the payload of every error response
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Usage   any    `json:"usage,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Default().Named("http").Warn("could not write response", log.ErrorField(err))
	}
}

func Error(w http.ResponseWriter, status int, body ErrorBody) {
	JSON(w, status, body)
}
