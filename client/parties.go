package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"gnomeshade/api"
)

func (c *Client) Currencies(ctx context.Context) ([]api.Currency, error) {
	return get[[]api.Currency](ctx, c, api.V1+"/currencies", nil)
}

// MyCounterparty returns the counterparty representing the logged in user.
func (c *Client) MyCounterparty(ctx context.Context) (api.Counterparty, error) {
	return get[api.Counterparty](ctx, c, api.V1+"/counterparties/me", nil)
}

func (c *Client) Counterparties(ctx context.Context) ([]api.Counterparty, error) {
	return get[[]api.Counterparty](ctx, c, api.V1+"/counterparties", nil)
}

func (c *Client) Counterparty(ctx context.Context, id uuid.UUID) (api.Counterparty, error) {
	return get[api.Counterparty](ctx, c, api.V1+"/counterparties/"+id.String(), nil)
}

func (c *Client) CreateCounterparty(ctx context.Context, in api.CounterpartyCreation) (uuid.UUID, error) {
	return c.create(ctx, api.V1+"/counterparties", in)
}

func (c *Client) PutCounterparty(ctx context.Context, id uuid.UUID, in api.CounterpartyCreation) (bool, error) {
	return c.put(ctx, api.V1+"/counterparties/"+id.String(), in)
}

func (c *Client) DeleteCounterparty(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, api.V1+"/counterparties/"+id.String())
}

// MergeCounterparties moves the accounts and loans of source to target and
// deletes source.
func (c *Client) MergeCounterparties(ctx context.Context, target, source uuid.UUID) error {
	_, err := c.do(ctx, http.MethodPost, api.V1+"/counterparties/"+target.String()+"/merge/"+source.String(), nil, nil, nil)
	return err
}
