package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gnomeshade/api"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusCreated).
		Location("/api/v1.0/units/1").
		JSON(map[string]string{"name": "kg"}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Location"); got != "/api/v1.0/units/1" {
		t.Errorf("Location = %q", got)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Body.String() != "{\"name\":\"kg\"}\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().Status(http.StatusNoContent).Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "" {
		t.Errorf("Content-Type = %q, want empty", got)
	}
}

func TestProblemResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *ResponseBuilder
		code    int
	}{
		{"bad request", BadRequestError("bad"), http.StatusBadRequest},
		{"not found", NotFoundError("missing"), http.StatusNotFound},
		{"unauthorized", UnauthorizedError("who"), http.StatusUnauthorized},
		{"internal", InternalServerError(), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.code {
				t.Errorf("Status code = %d, want %d", w.Code, tt.code)
			}
			if got := w.Header().Get("Content-Type"); got != api.ProblemContentType {
				t.Errorf("Content-Type = %q", got)
			}
			var p api.Problem
			if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
				t.Fatalf("decode problem: %v", err)
			}
			if p.Status != tt.code || p.Title != http.StatusText(tt.code) {
				t.Errorf("problem = %+v", p)
			}
		})
	}
}

func TestUnauthorizedError_Challenge(t *testing.T) {
	w := httptest.NewRecorder()
	UnauthorizedError("missing token").Write(w)

	if got := w.Header().Get("WWW-Authenticate"); got != `Bearer realm="gnomeshade"` {
		t.Errorf("WWW-Authenticate = %q", got)
	}
}
