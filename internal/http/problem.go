package http

import (
	"errors"
	"net/http"

	"gnomeshade/api"
	"gnomeshade/internal/core"
	"gnomeshade/internal/log"
	"gnomeshade/internal/middleware/trace"
)

var errUnauthorized = errors.New("authentication required")

// fail writes the problem-details response matching err. Unexpected errors
// are logged and reported without detail.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	p := api.Problem{Type: "about:blank", Instance: r.URL.Path, TraceID: trace.GetRequestID(r.Context())}

	var fields FieldErrors
	switch {
	case errors.As(err, &fields):
		p.Status, p.Detail, p.Errors = http.StatusBadRequest, "One or more validation errors occurred.", fields
	case errors.Is(err, core.ErrNoItems):
		p.Status, p.Detail = http.StatusBadRequest, err.Error()
	case errors.Is(err, core.ErrValidation):
		p.Status, p.Detail, p.Errors = http.StatusBadRequest, "One or more validation errors occurred.", validationErrors(err)
	case errors.Is(err, core.ErrInvalidAmount):
		p.Status, p.Detail = http.StatusBadRequest, err.Error()
	case errors.Is(err, errUnauthorized), errors.Is(err, core.ErrBadLogin):
		p.Status, p.Detail = http.StatusUnauthorized, err.Error()
	case errors.Is(err, core.ErrForbidden):
		p.Status, p.Detail = http.StatusForbidden, "The resource belongs to another user."
	case errors.Is(err, core.ErrNotFound):
		p.Status, p.Detail = http.StatusNotFound, "The resource does not exist."
	case errors.Is(err, core.ErrConflict):
		p.Status, p.Detail = http.StatusConflict, "The resource conflicts with an existing one."
	default:
		p.Status = http.StatusInternalServerError
		fields := log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "")
		fields[log.FieldErrorType] = log.ErrorTypeInternal
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, operationOf(r.Method), fields)
	}
	p.Title = http.StatusText(p.Status)

	b := NewResponse().Problem(p)
	if p.Status == http.StatusUnauthorized {
		b.Header("WWW-Authenticate", `Bearer realm="gnomeshade"`)
	}
	b.Write(w)
}

// validationErrors flattens the domain validation errors inside err,
// including those joined with errors.Join.
func validationErrors(err error) map[string][]string {
	out := map[string][]string{}
	var walk func(error)
	walk = func(err error) {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			out[ve.Field] = append(out[ve.Field], ve.Message)
		}
	}
	walk(err)
	return out
}

func operationOf(method string) string {
	switch method {
	case http.MethodPost:
		return log.OpCreate
	case http.MethodPut:
		return log.OpUpsert
	case http.MethodDelete:
		return log.OpDelete
	default:
		return log.OpRead
	}
}
