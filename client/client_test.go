package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnomeshade/api"
	"gnomeshade/client"
	"gnomeshade/internal/auth"
	ghttp "gnomeshade/internal/http"
	"gnomeshade/internal/log"
	"gnomeshade/internal/storage"
)

var eurID = uuid.MustParse("b1a1f2c0-0c1e-4a43-9a51-2d3e9c0f0001")

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, storage.SQLite, filepath.Join(t.TempDir(), "client.db"), log.Discard())
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	s := ghttp.NewServer(":0", ghttp.Dependencies{
		Store:  storage.NewStore(db),
		Issuer: auth.NewIssuer("client-test-secret-at-least-32-bytes", time.Hour),
	})
	srv := httptest.NewServer(s.Handler)
	t.Cleanup(func() {
		srv.Close()
		_ = s.Shutdown(context.Background())
	})
	return srv
}

func newClient(t *testing.T, srv *httptest.Server, username string) (*client.Client, api.UserInfo) {
	t.Helper()
	ctx := context.Background()
	c, err := client.New(srv.URL, client.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	info, err := c.Register(ctx, api.Register{Username: username, Password: "correct horse", FullName: username})
	require.NoError(t, err)
	_, err = c.Login(ctx, username, "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, c.Token())
	return c, info
}

func TestNew(t *testing.T) {
	_, err := client.New("localhost:8080")
	assert.Error(t, err)
	_, err = client.New("http://localhost:8080/")
	assert.NoError(t, err)
}

func TestProblemError(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c, err := client.New(srv.URL, client.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	require.NoError(t, c.Ready(ctx))

	_, err = c.Info(ctx)
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	_, err = c.Login(ctx, "nobody", "wrong password")
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Empty(t, c.Token())

	_, err = c.Register(ctx, api.Register{Username: "ab", Password: "short"})
	var pe *client.ProblemError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusBadRequest, pe.StatusCode)
	assert.Contains(t, pe.Problem.Errors, "username")
	assert.Contains(t, pe.Problem.Errors, "password")
	assert.ErrorIs(t, err, client.ErrValidation)
	assert.NotErrorIs(t, err, client.ErrNotFound)
}

func TestOwnership(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	alice, _ := newClient(t, srv, "alice")
	bob, _ := newClient(t, srv, "bob")

	kg, err := alice.CreateUnit(ctx, api.UnitCreation{Name: "Kilogram", Symbol: ptr("kg")})
	require.NoError(t, err)

	_, err = bob.Unit(ctx, kg)
	assert.ErrorIs(t, err, client.ErrNotFound)
	_, err = bob.PutUnit(ctx, kg, api.UnitCreation{Name: "Stolen"})
	assert.ErrorIs(t, err, client.ErrForbidden)

	_, err = alice.CreateUnit(ctx, api.UnitCreation{Name: "kilogram"})
	assert.ErrorIs(t, err, client.ErrConflict, "names are unique per owner regardless of case")

	created, err := alice.PutUnit(ctx, kg, api.UnitCreation{Name: "Kilo"})
	require.NoError(t, err)
	assert.False(t, created)
	unit, err := alice.Unit(ctx, kg)
	require.NoError(t, err)
	assert.Equal(t, "Kilo", unit.Name)

	gram := uuid.New()
	created, err = alice.PutUnit(ctx, gram, api.UnitCreation{Name: "Gram", ParentUnitID: &kg})
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, alice.DeleteUnit(ctx, gram))
	units, err := alice.Units(ctx)
	require.NoError(t, err)
	assert.Len(t, units, 1)
}

func TestPurchaseFlow(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c, me := newClient(t, srv, "alice")

	mine, err := c.MyCounterparty(ctx)
	require.NoError(t, err)
	assert.Equal(t, me.CounterpartyID, mine.ID)

	currencies, err := c.Currencies(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, currencies)

	shop, err := c.CreateCounterparty(ctx, api.CounterpartyCreation{Name: "Grocer"})
	require.NoError(t, err)
	wallet, err := c.CreateAccount(ctx, api.AccountCreation{Name: "Wallet", CounterpartyID: me.CounterpartyID, PreferredCurrencyID: eurID})
	require.NoError(t, err)
	till, err := c.CreateAccount(ctx, api.AccountCreation{Name: "Till", CounterpartyID: shop, PreferredCurrencyID: eurID})
	require.NoError(t, err)

	fruit, err := c.CreateCategory(ctx, api.CategoryCreation{Name: "Fruit"})
	require.NoError(t, err)
	apples, err := c.CreateProduct(ctx, api.ProductCreation{Name: "Apples", CategoryID: &fruit})
	require.NoError(t, err)

	walletAcct, err := c.Account(ctx, wallet)
	require.NoError(t, err)
	tillAcct, err := c.Account(ctx, till)
	require.NoError(t, err)

	txID, err := c.CreateDetailedTransaction(ctx, api.DetailedTransactionCreation{
		Transfers: []api.TransferCreation{{
			SourceAccountID: walletAcct.Currencies[0].ID, TargetAccountID: tillAcct.Currencies[0].ID,
			SourceAmount: api.NewAmount(decimal.NewFromInt(3)), TargetAmount: api.NewAmount(decimal.NewFromInt(3)),
			BookedAt: ptr(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)),
		}},
		Purchases: []api.PurchaseCreation{{
			Price: api.NewAmount(decimal.NewFromInt(3)), CurrencyID: eurID, ProductID: apples, Amount: api.NewAmount(decimal.NewFromInt(1)),
		}},
	})
	require.NoError(t, err)

	detail, err := c.TransactionDetails(ctx, txID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-3).Equal(detail.TransferBalance))
	assert.True(t, decimal.NewFromInt(3).Equal(detail.PurchaseTotal))

	transfers, err := c.Transfers(ctx, &txID)
	require.NoError(t, err)
	assert.Len(t, transfers, 1)
	purchases, err := c.ProductPurchases(ctx, apples)
	require.NoError(t, err)
	assert.Len(t, purchases, 1)

	all, err := c.DetailedTransactions(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	balances, err := c.AccountBalance(ctx, wallet)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, decimal.NewFromInt(-3).Equal(balances[0].Total))

	report, err := c.CategoryReport(ctx, client.CategoryReportOptions{Split: "yearly"})
	require.NoError(t, err)
	require.Len(t, report.Periods, 1)
	_, err = c.CategoryReport(ctx, client.CategoryReportOptions{Split: "fortnightly"})
	assert.ErrorIs(t, err, client.ErrValidation)

	require.NoError(t, c.DeleteTransaction(ctx, txID))
	_, err = c.Transfer(ctx, transfers[0].ID)
	assert.ErrorIs(t, err, client.ErrNotFound, "items are deleted with their transaction")
}

func TestLoanSummary(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c, me := newClient(t, srv, "alice")

	bank, err := c.CreateCounterparty(ctx, api.CounterpartyCreation{Name: "Bank"})
	require.NoError(t, err)
	loan, err := c.CreateLoan(ctx, api.LoanCreation{
		Name: "Car", IssuingCounterpartyID: bank, ReceivingCounterpartyID: me.CounterpartyID,
		Principal: api.NewAmount(decimal.NewFromInt(500)), CurrencyID: eurID,
	})
	require.NoError(t, err)

	tx, err := c.CreateTransaction(ctx, api.TransactionCreation{Description: ptr("instalment")})
	require.NoError(t, err)
	_, err = c.CreateLoanPayment(ctx, api.LoanPaymentCreation{
		LoanID: loan, TransactionID: tx, Amount: api.NewAmount(decimal.NewFromInt(120)), Interest: api.NewAmount(decimal.NewFromInt(20)),
	})
	require.NoError(t, err)

	payments, err := c.LoanPaymentsOf(ctx, loan)
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	summary, err := c.LoanSummary(ctx, loan)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PaymentsCount)
	assert.True(t, decimal.NewFromInt(380).Equal(summary.Outstanding), "got %s", summary.Outstanding)
}

func ptr[T any](v T) *T { return &v }

func TestMerge(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c, me := newClient(t, srv, "alice")

	shop, err := c.CreateCounterparty(ctx, api.CounterpartyCreation{Name: "Grocer"})
	require.NoError(t, err)
	dup, err := c.CreateCounterparty(ctx, api.CounterpartyCreation{Name: "The Grocer"})
	require.NoError(t, err)
	wallet, err := c.CreateAccount(ctx, api.AccountCreation{Name: "Wallet", CounterpartyID: me.CounterpartyID, PreferredCurrencyID: eurID})
	require.NoError(t, err)
	till, err := c.CreateAccount(ctx, api.AccountCreation{Name: "Till", CounterpartyID: dup, PreferredCurrencyID: eurID})
	require.NoError(t, err)

	require.NoError(t, c.MergeCounterparties(ctx, shop, dup))
	moved, err := c.Account(ctx, till)
	require.NoError(t, err)
	assert.Equal(t, shop, moved.CounterpartyID)
	_, err = c.Counterparty(ctx, dup)
	assert.ErrorIs(t, err, client.ErrNotFound)
	assert.ErrorIs(t, c.MergeCounterparties(ctx, shop, me.CounterpartyID), client.ErrValidation)

	walletAcct, err := c.Account(ctx, wallet)
	require.NoError(t, err)
	tillAcct, err := c.Account(ctx, till)
	require.NoError(t, err)
	transfer := api.TransferCreation{
		SourceAccountID: walletAcct.Currencies[0].ID, TargetAccountID: tillAcct.Currencies[0].ID,
		SourceAmount: api.NewAmount(decimal.NewFromInt(2)), TargetAmount: api.NewAmount(decimal.NewFromInt(2)),
		BookedAt: ptr(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)),
	}
	first, err := c.CreateDetailedTransaction(ctx, api.DetailedTransactionCreation{Transfers: []api.TransferCreation{transfer}})
	require.NoError(t, err)
	second, err := c.CreateDetailedTransaction(ctx, api.DetailedTransactionCreation{Transfers: []api.TransferCreation{transfer}})
	require.NoError(t, err)

	require.NoError(t, c.MergeTransactions(ctx, first, second))
	detail, err := c.TransactionDetails(ctx, first)
	require.NoError(t, err)
	assert.Len(t, detail.Transfers, 2)
	assert.True(t, decimal.NewFromInt(-4).Equal(detail.TransferBalance))
	_, err = c.Transaction(ctx, second)
	assert.ErrorIs(t, err, client.ErrNotFound)
	assert.ErrorIs(t, c.MergeTransactions(ctx, first, first), client.ErrValidation)
}
