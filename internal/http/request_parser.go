// Package http serves the Gnomeshade REST API.
//
// This file implements utilities for decoding and validating request
// bodies, path parameters and query strings.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"gnomeshade/internal/core"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// FieldErrors is a request that failed decoding or validation, keyed by
// JSON field name.
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msgs := range e {
		parts = append(parts, field+": "+strings.Join(msgs, ", "))
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func (e FieldErrors) Is(target error) bool { return target == core.ErrValidation }

func (e FieldErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// DecodeJSON reads a JSON body of at most 1 MiB into dst and validates it.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return FieldErrors{"body": {"is required"}}
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return FieldErrors{"body": {fmt.Sprintf("must not exceed %d bytes", maxBodyBytes)}}
		}
		if errors.Is(err, core.ErrInvalidAmount) {
			return err
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return FieldErrors{typeErr.Field: {"has an invalid type"}}
		}
		return FieldErrors{"body": {"is not valid JSON"}}
	}
	return Validate(dst)
}

// Validate runs struct tag validation and converts failures to FieldErrors.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		out.add(fieldPath(fe.Namespace()), describe(fe))
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "is invalid"
}

// PathID parses a UUID path parameter.
func PathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, FieldErrors{name: {"must be a UUID"}}
	}
	return id, nil
}

// QueryUUID parses an optional UUID query parameter.
func QueryUUID(query url.Values, name string) (*uuid.UUID, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, FieldErrors{name: {"must be a UUID"}}
	}
	return &id, nil
}

// QueryBool parses an optional boolean query parameter.
func QueryBool(query url.Values, name string) (bool, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, FieldErrors{name: {"must be true or false"}}
	}
	return b, nil
}

// QueryTime parses an optional RFC 3339 timestamp or YYYY-MM-DD date.
func QueryTime(query url.Values, name string) (*time.Time, error) {
	errs := FieldErrors{}
	t := queryTime(query, name, errs)
	if len(errs) > 0 {
		return nil, errs
	}
	return t, nil
}

func queryTime(query url.Values, name string, errs FieldErrors) *time.Time {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	errs.add(name, "must be an RFC 3339 timestamp or a YYYY-MM-DD date")
	return nil
}

// TimeRange holds the optional from/to query bounds.
type TimeRange struct {
	From *time.Time
	To   *time.Time
}

// ParseTimeRange reads from and to, rejecting a range that ends before it
// starts.
func ParseTimeRange(query url.Values) (TimeRange, error) {
	errs := FieldErrors{}
	rng := TimeRange{From: queryTime(query, "from", errs), To: queryTime(query, "to", errs)}
	if rng.From != nil && rng.To != nil && rng.To.Before(*rng.From) {
		errs.add("to", "must not be before from")
	}
	if len(errs) > 0 {
		return TimeRange{}, errs
	}
	return rng, nil
}

// ParseSplit reads the report grouping, defaulting to monthly.
func ParseSplit(query url.Values) (core.Split, error) {
	return core.ParseSplit(query.Get("split"))
}
