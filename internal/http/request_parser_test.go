package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gnomeshade/api"
	"gnomeshade/internal/core"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "valid", body: `{"name":"Groceries"}`},
		{name: "empty body", body: ``, wantField: "body"},
		{name: "malformed", body: `{"name":`, wantField: "body"},
		{name: "wrong type", body: `{"name":5}`, wantField: "name"},
		{name: "missing name", body: `{}`, wantField: "name"},
		{name: "too long", body: `{"name":"` + strings.Repeat("x", 300) + `"}`, wantField: "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst api.CategoryCreation
			err := DecodeJSON(httptest.NewRecorder(), r, &dst)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("DecodeJSON() error = %v", err)
				}
				return
			}
			var fe FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("DecodeJSON() error = %v, want FieldErrors", err)
			}
			if _, ok := fe[tt.wantField]; !ok {
				t.Errorf("FieldErrors = %v, want key %q", fe, tt.wantField)
			}
			if !errors.Is(err, core.ErrValidation) {
				t.Error("FieldErrors should match core.ErrValidation")
			}
		})
	}
}

func TestValidate_NestedFieldPath(t *testing.T) {
	in := api.DetailedTransactionCreation{
		Transfers: []api.TransferCreation{{}},
	}
	err := Validate(in)

	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("Validate() error = %v", err)
	}
	if _, ok := fe["transfers[0].sourceAccountId"]; !ok {
		t.Errorf("FieldErrors = %v, want transfers[0].sourceAccountId", fe)
	}
}

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		wantErr bool
		from    *time.Time
	}{
		{name: "empty", query: url.Values{}},
		{name: "date only", query: url.Values{"from": {"2024-03-01"}}, from: ptr(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))},
		{name: "rfc3339", query: url.Values{"from": {"2024-03-01T10:00:00+02:00"}}, from: ptr(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))},
		{name: "garbage", query: url.Values{"from": {"yesterday"}}, wantErr: true},
		{name: "inverted", query: url.Values{"from": {"2024-03-02"}, "to": {"2024-03-01"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeRange(tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeRange() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.from != nil && (got.From == nil || !got.From.Equal(*tt.from)) {
				t.Errorf("From = %v, want %v", got.From, tt.from)
			}
		})
	}
}

func TestQueryParsers(t *testing.T) {
	q := url.Values{"onlyActive": {"true"}, "transactionId": {"nope"}, "split": {"yearly"}}

	if b, err := QueryBool(q, "onlyActive"); err != nil || !b {
		t.Errorf("QueryBool() = %v, %v", b, err)
	}
	if _, err := QueryBool(url.Values{"onlyActive": {"maybe"}}, "onlyActive"); err == nil {
		t.Error("QueryBool() should reject maybe")
	}
	if _, err := QueryUUID(q, "transactionId"); err == nil {
		t.Error("QueryUUID() should reject a non-UUID")
	}
	if id, err := QueryUUID(url.Values{}, "transactionId"); err != nil || id != nil {
		t.Errorf("QueryUUID() on missing = %v, %v", id, err)
	}
	if s, err := ParseSplit(q); err != nil || s != core.SplitYearly {
		t.Errorf("ParseSplit() = %v, %v", s, err)
	}
	if s, _ := ParseSplit(url.Values{}); s != core.SplitMonthly {
		t.Errorf("ParseSplit() default = %v", s)
	}
}

func ptr[T any](v T) *T { return &v }
