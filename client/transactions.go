package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"gnomeshade/api"
)

// Transactions lists transactions valued within [from, to]. Either bound
// may be nil.
func (c *Client) Transactions(ctx context.Context, from, to *time.Time) ([]api.Transaction, error) {
	return get[[]api.Transaction](ctx, c, api.V1+"/transactions", rangeQuery(from, to))
}

// DetailedTransactions is the v2 listing with items and totals.
func (c *Client) DetailedTransactions(ctx context.Context, from, to *time.Time) ([]api.DetailedTransaction, error) {
	return get[[]api.DetailedTransaction](ctx, c, api.V2+"/transactions", rangeQuery(from, to))
}

func (c *Client) Transaction(ctx context.Context, id uuid.UUID) (api.Transaction, error) {
	return get[api.Transaction](ctx, c, api.V1+"/transactions/"+id.String(), nil)
}

func (c *Client) TransactionDetails(ctx context.Context, id uuid.UUID) (api.DetailedTransaction, error) {
	return get[api.DetailedTransaction](ctx, c, api.V1+"/transactions/"+id.String()+"/details", nil)
}

func (c *Client) CreateTransaction(ctx context.Context, in api.TransactionCreation) (uuid.UUID, error) {
	return c.create(ctx, api.V1+"/transactions", in)
}

// CreateDetailedTransaction creates a transaction and all its items at once.
func (c *Client) CreateDetailedTransaction(ctx context.Context, in api.DetailedTransactionCreation) (uuid.UUID, error) {
	return c.create(ctx, api.V1+"/transactions/detailed", in)
}

func (c *Client) PutTransaction(ctx context.Context, id uuid.UUID, in api.TransactionCreation) (bool, error) {
	return c.put(ctx, api.V1+"/transactions/"+id.String(), in)
}

// DeleteTransaction deletes the transaction together with its items.
func (c *Client) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, api.V1+"/transactions/"+id.String())
}

// MergeTransactions moves the items of source into target and deletes
// source.
func (c *Client) MergeTransactions(ctx context.Context, target, source uuid.UUID) error {
	_, err := c.do(ctx, http.MethodPost, api.V1+"/transactions/"+target.String()+"/merge/"+source.String(), nil, nil, nil)
	return err
}

func byTransaction(transactionID *uuid.UUID) url.Values {
	if transactionID == nil {
		return nil
	}
	return url.Values{"transactionId": {transactionID.String()}}
}

// Transfers lists transfers, optionally of one transaction.
func (c *Client) Transfers(ctx context.Context, transactionID *uuid.UUID) ([]api.Transfer, error) {
	return get[[]api.Transfer](ctx, c, api.V1+"/transfers", byTransaction(transactionID))
}

func (c *Client) Transfer(ctx context.Context, id uuid.UUID) (api.Transfer, error) {
	return get[api.Transfer](ctx, c, api.V1+"/transfers/"+id.String(), nil)
}

func (c *Client) CreateTransfer(ctx context.Context, in api.TransferCreation) (uuid.UUID, error) {
	return c.create(ctx, api.V1+"/transfers", in)
}

func (c *Client) PutTransfer(ctx context.Context, id uuid.UUID, in api.TransferCreation) (bool, error) {
	return c.put(ctx, api.V1+"/transfers/"+id.String(), in)
}

func (c *Client) DeleteTransfer(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, api.V1+"/transfers/"+id.String())
}

// Purchases lists purchases, optionally of one transaction.
func (c *Client) Purchases(ctx context.Context, transactionID *uuid.UUID) ([]api.Purchase, error) {
	return get[[]api.Purchase](ctx, c, api.V1+"/purchases", byTransaction(transactionID))
}

func (c *Client) Purchase(ctx context.Context, id uuid.UUID) (api.Purchase, error) {
	return get[api.Purchase](ctx, c, api.V1+"/purchases/"+id.String(), nil)
}

func (c *Client) CreatePurchase(ctx context.Context, in api.PurchaseCreation) (uuid.UUID, error) {
	return c.create(ctx, api.V1+"/purchases", in)
}

func (c *Client) PutPurchase(ctx context.Context, id uuid.UUID, in api.PurchaseCreation) (bool, error) {
	return c.put(ctx, api.V1+"/purchases/"+id.String(), in)
}

func (c *Client) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, api.V1+"/purchases/"+id.String())
}
