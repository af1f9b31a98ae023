package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shoplite/apiserver/types"
)

type contextKey string

const (
	contextUserKey  contextKey = "user"
	contextTokenKey contextKey = "token"
)

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ValidationResponse is the 422 payload: a message plus field-keyed errors.
type ValidationResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// DataResponse wraps a successful payload in a data envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// MessageResponse is a data envelope carrying only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

func userFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	return user, ok
}

func tokenFromContext(ctx context.Context) (types.Token, bool) {
	token, ok := ctx.Value(contextTokenKey).(types.Token)
	return token, ok
}

func withIdentity(ctx context.Context, user types.User, token types.Token) context.Context {
	ctx = context.WithValue(ctx, contextUserKey, user)
	return context.WithValue(ctx, contextTokenKey, token)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeData(w http.ResponseWriter, status int, value any) {
	writeJSON(w, status, DataResponse{Data: value})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

func writeValidationErrors(w http.ResponseWriter, fields map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{
		Message: "The given data was invalid.",
		Errors:  fields,
	})
}
