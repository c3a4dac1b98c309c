// Package api holds the JSON request and response bodies of the Gnomeshade
// REST API. The server and the client SDK share these types.
package api

import (
	"time"

	"github.com/google/uuid"
)

const (
	V1 = "/api/v1.0"
	V2 = "/api/v2"

	ProblemContentType = "application/problem+json"
)

// Problem is an RFC 7807 problem details body. Errors maps field names to
// their validation messages.
type Problem struct {
	Type     string              `json:"type,omitempty"`
	Title    string              `json:"title"`
	Status   int                 `json:"status"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
	TraceID  string              `json:"traceId,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
}

// Entity is the header shared by every owned resource.
type Entity struct {
	ID               uuid.UUID `json:"id"`
	CreatedAt        time.Time `json:"createdAt"`
	OwnerID          uuid.UUID `json:"ownerId"`
	CreatedByUserID  uuid.UUID `json:"createdByUserId"`
	ModifiedAt       time.Time `json:"modifiedAt"`
	ModifiedByUserID uuid.UUID `json:"modifiedByUserId"`
}

type Login struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Register struct {
	Username string `json:"username" validate:"required,min=3,max=256"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"fullName" validate:"required,max=256"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    uuid.UUID `json:"userId"`
}

type UserInfo struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	FullName       string    `json:"fullName"`
	CounterpartyID uuid.UUID `json:"counterpartyId"`
}

type Currency struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	AlphabeticCode string    `json:"alphabeticCode"`
	NumericCode    int       `json:"numericCode"`
	MinorUnit      int       `json:"minorUnit"`
}

type Counterparty struct {
	Entity
	Name string `json:"name"`
}

type CounterpartyCreation struct {
	Name string `json:"name" validate:"required,max=256"`
}
