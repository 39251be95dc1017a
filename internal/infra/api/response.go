package api

import (
	"encoding/json"
	"net/http"
)

const (
	MsgInternal    = "Internal Server Error"
	MsgRateLimited = "Too many sync requests"
)

type dataEnvelope struct {
	StatusCode int `json:"statusCode"`
	Data       any `json:"data"`
}

type errorEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// WriteJSON writes {"statusCode", "data"} with the same HTTP status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	write(w, status, dataEnvelope{StatusCode: status, Data: data})
}

// WriteError writes {"statusCode", "message"} with the same HTTP status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	write(w, status, errorEnvelope{StatusCode: status, Message: msg})
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
