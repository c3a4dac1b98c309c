// Package http serves the Gnomeshade REST API.
//
// This file implements the Builder Pattern for constructing JSON and
// problem-details responses so every handler writes status, headers and
// body the same way.

package http

import (
	"encoding/json"
	"net/http"

	"gnomeshade/api"
)

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode  int
	body        any
	contentType string
	headers     map[string]string
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode:  http.StatusOK,
		contentType: "application/json; charset=utf-8",
		headers:     make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Location sets the Location header of a created resource.
func (b *ResponseBuilder) Location(path string) *ResponseBuilder {
	return b.Header("Location", path)
}

// JSON sets the value encoded as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.body = v
	return b
}

// Problem sets an RFC 7807 body and its status.
func (b *ResponseBuilder) Problem(p api.Problem) *ResponseBuilder {
	b.contentType = api.ProblemContentType
	b.statusCode = p.Status
	b.body = p
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", b.contentType)
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

// ProblemResponse creates a problem-details response with the status text
// as title.
func ProblemResponse(statusCode int, detail string) *ResponseBuilder {
	return NewResponse().Problem(api.Problem{
		Type:   "about:blank",
		Title:  http.StatusText(statusCode),
		Status: statusCode,
		Detail: detail,
	})
}

// BadRequestError creates a 400 Bad Request problem.
func BadRequestError(detail string) *ResponseBuilder {
	return ProblemResponse(http.StatusBadRequest, detail)
}

// NotFoundError creates a 404 Not Found problem.
func NotFoundError(detail string) *ResponseBuilder {
	return ProblemResponse(http.StatusNotFound, detail)
}

// UnauthorizedError creates a 401 problem with a bearer challenge.
func UnauthorizedError(detail string) *ResponseBuilder {
	return ProblemResponse(http.StatusUnauthorized, detail).Header("WWW-Authenticate", `Bearer realm="gnomeshade"`)
}

// InternalServerError creates a 500 problem. Details are never exposed.
func InternalServerError() *ResponseBuilder {
	return ProblemResponse(http.StatusInternalServerError, "")
}
