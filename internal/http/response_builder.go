// Package http provides the JSON API server and its handlers.
//
// This file implements the Builder Pattern for constructing JSON responses.
// Every response shares one envelope: the payload under "data", an optional
// toast "notification" and, on failure, "error" with the offending "field".
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"finsimples/internal/cache"
)

// HeaderInvalidate names the resource kinds a response made stale.
const HeaderInvalidate = "X-Invalidate"

// NotificationVariant selects how a client renders a notification.
type NotificationVariant string

const (
	NotificationDefault     NotificationVariant = "default"
	NotificationDestructive NotificationVariant = "destructive"
)

type Notification struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Variant     NotificationVariant `json:"variant"`
}

type envelope struct {
	Data         any           `json:"data,omitempty"`
	Error        string        `json:"error,omitempty"`
	Field        string        `json:"field,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode int
	body       envelope
	headers    map[string]string
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Data sets the payload.
func (b *ResponseBuilder) Data(v any) *ResponseBuilder {
	b.body.Data = v
	return b
}

func (b *ResponseBuilder) Error(msg, field string) *ResponseBuilder {
	b.body.Error = msg
	b.body.Field = field
	return b
}

func (b *ResponseBuilder) Notify(title, description string, variant NotificationVariant) *ResponseBuilder {
	b.body.Notification = &Notification{Title: title, Description: description, Variant: variant}
	return b
}

// Success adds a default notification.
func (b *ResponseBuilder) Success(title, description string) *ResponseBuilder {
	return b.Notify(title, description, NotificationDefault)
}

// Failure adds a destructive notification.
func (b *ResponseBuilder) Failure(title, description string) *ResponseBuilder {
	return b.Notify(title, description, NotificationDestructive)
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Write sends the response. Kinds invalidated while serving r are listed in
// the X-Invalidate header.
func (b *ResponseBuilder) Write(w http.ResponseWriter, r *http.Request) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if rec := cache.RecorderFrom(r.Context()); rec != nil {
		if kinds := rec.Kinds(); len(kinds) > 0 {
			names := make([]string, len(kinds))
			for i, k := range kinds {
				names[i] = string(k)
			}
			w.Header().Set(HeaderInvalidate, strings.Join(names, ","))
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.statusCode == http.StatusNoContent {
		return
	}
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", "error", err)
	}
}

// ErrorResponse creates an error response with a destructive notification.
func ErrorResponse(statusCode int, title, message string) *ResponseBuilder {
	return NewResponse().
		Status(statusCode).
		Error(message, "").
		Failure(title, message)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, "Requisição inválida", message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, "Não encontrado", message)
}

// UnauthorizedError creates a 401 Unauthorized error response.
func UnauthorizedError() *ResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, "Sessão necessária", "Entre na sua conta para continuar.").
		Header("WWW-Authenticate", `Bearer realm="finsimples"`)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(title string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, title, "Tente novamente mais tarde.")
}
