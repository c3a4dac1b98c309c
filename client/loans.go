package client

import (
	"context"

	"github.com/google/uuid"

	"gnomeshade/api"
)

func (c *Client) Loans(ctx context.Context) ([]api.Loan, error) {
	return get[[]api.Loan](ctx, c, api.V2+"/loans", nil)
}

func (c *Client) Loan(ctx context.Context, id uuid.UUID) (api.Loan, error) {
	return get[api.Loan](ctx, c, api.V2+"/loans/"+id.String(), nil)
}

func (c *Client) CreateLoan(ctx context.Context, in api.LoanCreation) (uuid.UUID, error) {
	return c.create(ctx, api.V2+"/loans", in)
}

func (c *Client) PutLoan(ctx context.Context, id uuid.UUID, in api.LoanCreation) (bool, error) {
	return c.put(ctx, api.V2+"/loans/"+id.String(), in)
}

func (c *Client) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, api.V2+"/loans/"+id.String())
}

// LoanPaymentsOf lists the payments made against one loan.
func (c *Client) LoanPaymentsOf(ctx context.Context, loanID uuid.UUID) ([]api.LoanPayment, error) {
	return get[[]api.LoanPayment](ctx, c, api.V2+"/loans/"+loanID.String()+"/payments", nil)
}

// LoanSummary returns the principal, paid amount and outstanding balance.
func (c *Client) LoanSummary(ctx context.Context, loanID uuid.UUID) (api.LoanSummary, error) {
	return get[api.LoanSummary](ctx, c, api.V2+"/loans/"+loanID.String()+"/summary", nil)
}

// LoanPayments lists loan payments, optionally of one transaction.
func (c *Client) LoanPayments(ctx context.Context, transactionID *uuid.UUID) ([]api.LoanPayment, error) {
	return get[[]api.LoanPayment](ctx, c, api.V2+"/loan-payments", byTransaction(transactionID))
}

func (c *Client) LoanPayment(ctx context.Context, id uuid.UUID) (api.LoanPayment, error) {
	return get[api.LoanPayment](ctx, c, api.V2+"/loan-payments/"+id.String(), nil)
}

func (c *Client) CreateLoanPayment(ctx context.Context, in api.LoanPaymentCreation) (uuid.UUID, error) {
	return c.create(ctx, api.V2+"/loan-payments", in)
}

func (c *Client) PutLoanPayment(ctx context.Context, id uuid.UUID, in api.LoanPaymentCreation) (bool, error) {
	return c.put(ctx, api.V2+"/loan-payments/"+id.String(), in)
}

func (c *Client) DeleteLoanPayment(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, api.V2+"/loan-payments/"+id.String())
}
