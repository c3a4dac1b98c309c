package client

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"

	"gnomeshade/api"
)

// Accounts lists the user's accounts. With onlyActive, disabled accounts
// are left out.
func (c *Client) Accounts(ctx context.Context, onlyActive bool) ([]api.Account, error) {
	var q url.Values
	if onlyActive {
		q = url.Values{"onlyActive": {"true"}}
	}
	return get[[]api.Account](ctx, c, api.V1+"/accounts", q)
}

func (c *Client) Account(ctx context.Context, id uuid.UUID) (api.Account, error) {
	return get[api.Account](ctx, c, api.V1+"/accounts/"+id.String(), nil)
}

func (c *Client) CreateAccount(ctx context.Context, in api.AccountCreation) (uuid.UUID, error) {
	return c.create(ctx, api.V1+"/accounts", in)
}

func (c *Client) PutAccount(ctx context.Context, id uuid.UUID, in api.AccountCreation) (bool, error) {
	return c.put(ctx, api.V1+"/accounts/"+id.String(), in)
}

func (c *Client) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, api.V1+"/accounts/"+id.String())
}

// AddAccountCurrency returns the id of the new account-in-currency.
func (c *Client) AddAccountCurrency(ctx context.Context, accountID, currencyID uuid.UUID) (uuid.UUID, error) {
	return c.create(ctx, api.V1+"/accounts/"+accountID.String()+"/currencies",
		api.AccountInCurrencyCreation{CurrencyID: currencyID})
}

func (c *Client) RemoveAccountCurrency(ctx context.Context, accountID, currencyID uuid.UUID) error {
	return c.delete(ctx, api.V1+"/accounts/"+accountID.String()+"/currencies/"+currencyID.String())
}

// AccountBalance returns one balance per currency the account holds.
func (c *Client) AccountBalance(ctx context.Context, id uuid.UUID) ([]api.Balance, error) {
	return get[[]api.Balance](ctx, c, api.V1+"/accounts/"+id.String()+"/balance", nil)
}

// AccountBalanceHistory returns balance points grouped by split, which is
// daily, monthly or yearly. An empty split means monthly.
func (c *Client) AccountBalanceHistory(ctx context.Context, id uuid.UUID, split string) ([]api.BalancePoint, error) {
	var q url.Values
	if split != "" {
		q = url.Values{"split": {split}}
	}
	return get[[]api.BalancePoint](ctx, c, api.V1+"/accounts/"+id.String()+"/balance/history", q)
}

func (c *Client) BalanceReport(ctx context.Context) ([]api.Balance, error) {
	return get[[]api.Balance](ctx, c, api.V1+"/reports/balances", nil)
}

// CategoryReportOptions narrows a category report. Zero values select
// everything, split monthly, top level categories.
type CategoryReportOptions struct {
	From, To *time.Time
	Split    string
	Category *uuid.UUID
}

func (c *Client) CategoryReport(ctx context.Context, opts CategoryReportOptions) (api.CategoryReport, error) {
	q := rangeQuery(opts.From, opts.To)
	if opts.Split != "" {
		q.Set("split", opts.Split)
	}
	if opts.Category != nil {
		q.Set("category", opts.Category.String())
	}
	return get[api.CategoryReport](ctx, c, api.V1+"/reports/categories", q)
}
