package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnomeshade/api"
	"gnomeshade/internal/amqp"
	"gnomeshade/internal/auth"
	"gnomeshade/internal/core"
	"gnomeshade/internal/log"
	"gnomeshade/internal/services"
	"gnomeshade/internal/storage"
)

var (
	eurID = uuid.MustParse("b1a1f2c0-0c1e-4a43-9a51-2d3e9c0f0001")
	usdID = uuid.MustParse("b1a1f2c0-0c1e-4a43-9a51-2d3e9c0f0002")
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.EntityEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, e amqp.EntityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) entities() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Entity+":"+e.Action)
	}
	return out
}

type testAPI struct {
	t      *testing.T
	srv    *httptest.Server
	store  *storage.Store
	events *recordingPublisher
}

func newTestAPI(t *testing.T, rateLimit int) *testAPI {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, storage.SQLite, filepath.Join(t.TempDir(), "api.db"), log.Discard())
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	store := storage.NewStore(db)

	events := &recordingPublisher{}
	reports := services.NewReportService(store, 64, time.Hour, nil)
	s := NewServer(":0", Dependencies{
		Store:              store,
		Issuer:             auth.NewIssuer("test-secret-that-is-at-least-32-bytes", time.Hour),
		Reports:            reports,
		Notifier:           services.NewNotifier(events, reports, nil),
		RateLimitPerMinute: rateLimit,
	})
	srv := httptest.NewServer(s.Handler)
	t.Cleanup(func() {
		srv.Close()
		_ = s.Shutdown(context.Background())
	})
	return &testAPI{t: t, srv: srv, store: store, events: events}
}

func (a *testAPI) do(method, path, token string, body any) *http.Response {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, r)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.srv.Client().Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// login registers username and returns its token and profile.
func (a *testAPI) login(username string) (string, api.UserInfo) {
	a.t.Helper()
	resp := a.do(http.MethodPost, api.V1+"/authentication/register", "", api.Register{
		Username: username, Password: "correct horse", FullName: "User " + username,
	})
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)
	info := decode[api.UserInfo](a.t, resp)

	resp = a.do(http.MethodPost, api.V1+"/authentication/login", "", api.Login{Username: username, Password: "correct horse"})
	require.Equal(a.t, http.StatusOK, resp.StatusCode)
	return decode[api.LoginResult](a.t, resp).Token, info
}

// create posts body and returns the new id.
func (a *testAPI) create(path, token string, body any) uuid.UUID {
	a.t.Helper()
	resp := a.do(http.MethodPost, path, token, body)
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)
	id := decode[uuid.UUID](a.t, resp)
	assert.Equal(a.t, path+"/"+id.String(), resp.Header.Get("Location"))
	return id
}

func TestHealthAndReady(t *testing.T) {
	a := newTestAPI(t, 0)
	a.login("alice")

	resp := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]any](t, resp)["status"])

	resp = a.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", decode[map[string]any](t, resp)["status"])

	resp = a.do(http.MethodGet, "/metrics", "", nil)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "http_requests_total")
	assert.Contains(t, string(body), "registered_users 1\n")
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestAuthentication(t *testing.T) {
	a := newTestAPI(t, 0)
	token, info := a.login("alice")
	assert.NotEqual(t, uuid.Nil, info.CounterpartyID)

	resp := a.do(http.MethodGet, api.V1+"/authentication/info", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", decode[api.UserInfo](t, resp).Username)

	resp = a.do(http.MethodGet, api.V1+"/authentication/info", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, api.ProblemContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer")

	resp = a.do(http.MethodGet, api.V1+"/currencies", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = a.do(http.MethodPost, api.V1+"/authentication/login", "", api.Login{Username: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = a.do(http.MethodPost, api.V1+"/authentication/register", "", api.Register{Username: "alice", Password: "another pass", FullName: "Alice"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = a.do(http.MethodPost, api.V1+"/authentication/register", "", api.Register{Username: "al", Password: "short", FullName: ""})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	problem := decode[api.Problem](t, resp)
	assert.Contains(t, problem.Errors, "username")
	assert.Contains(t, problem.Errors, "password")
	assert.Contains(t, problem.Errors, "fullName")

	resp = a.do(http.MethodGet, api.V1+"/counterparties/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, info.CounterpartyID, decode[api.Counterparty](t, resp).ID)
}

func TestResourceSemantics(t *testing.T) {
	a := newTestAPI(t, 0)
	alice, _ := a.login("alice")
	bob, _ := a.login("bob")
	base := api.V1 + "/units"

	id := a.create(base, alice, api.UnitCreation{Name: "Kilogram"})

	resp := a.do(http.MethodGet, base+"/"+id.String(), alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Kilogram", decode[api.Unit](t, resp).Name)

	resp = a.do(http.MethodGet, base+"/"+id.String(), bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "other owners cannot see the unit")

	resp = a.do(http.MethodPut, base+"/"+id.String(), alice, api.UnitCreation{Name: "Kilo"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = a.do(http.MethodPut, base+"/"+id.String(), bob, api.UnitCreation{Name: "Stolen"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	newID := uuid.New()
	resp = a.do(http.MethodPut, base+"/"+newID.String(), alice, api.UnitCreation{Name: "Gram", ParentUnitID: &id, Multiplier: ptr(decimal.RequireFromString("0.001"))})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, base+"/"+newID.String(), resp.Header.Get("Location"))

	resp = a.do(http.MethodPost, base, alice, api.UnitCreation{Name: "kilo"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "names are unique ignoring case")

	resp = a.do(http.MethodPost, base, alice, api.UnitCreation{Name: "Broken", ParentUnitID: &id})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[api.Problem](t, resp).Errors, "multiplier")

	resp = a.do(http.MethodGet, base, alice, nil)
	assert.Len(t, decode[[]api.Unit](t, resp), 2)

	resp = a.do(http.MethodDelete, base+"/"+newID.String(), alice, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = a.do(http.MethodDelete, base+"/"+newID.String(), alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = a.do(http.MethodGet, base+"/not-a-uuid", alice, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, []string{"units:created", "units:updated", "units:created", "units:deleted"},
		filterPrefix(a.events.entities(), "units:"))
}

func TestCategoryParentCycle(t *testing.T) {
	a := newTestAPI(t, 0)
	token, _ := a.login("alice")
	base := api.V1 + "/categories"

	food := a.create(base, token, api.CategoryCreation{Name: "Food"})
	fruit := a.create(base, token, api.CategoryCreation{Name: "Fruit", CategoryID: &food})
	apples := a.create(base, token, api.CategoryCreation{Name: "Apples", CategoryID: &fruit})

	resp := a.do(http.MethodPut, base+"/"+food.String(), token, api.CategoryCreation{Name: "Food", CategoryID: &fruit})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[api.Problem](t, resp).Errors, "categoryId")

	resp = a.do(http.MethodPut, base+"/"+food.String(), token, api.CategoryCreation{Name: "Food", CategoryID: &apples})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "cycles through several levels are rejected")

	resp = a.do(http.MethodPut, base+"/"+apples.String(), token, api.CategoryCreation{Name: "Apples", CategoryID: &food})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "moving within the tree is fine")
}

func filterPrefix(items []string, prefix string) []string {
	var out []string
	for _, s := range items {
		if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
			out = append(out, s)
		}
	}
	return out
}

func TestAccounts(t *testing.T) {
	a := newTestAPI(t, 0)
	token, me := a.login("alice")
	base := api.V1 + "/accounts"

	id := a.create(base, token, api.AccountCreation{
		Name: "Checking", CounterpartyID: me.CounterpartyID, PreferredCurrencyID: eurID, Currencies: []uuid.UUID{usdID},
	})

	resp := a.do(http.MethodGet, base+"/"+id.String(), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	account := decode[api.Account](t, resp)
	require.Len(t, account.Currencies, 2)

	resp = a.do(http.MethodPost, base, token, api.AccountCreation{Name: "checking", CounterpartyID: me.CounterpartyID, PreferredCurrencyID: eurID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = a.do(http.MethodPost, base, token, api.AccountCreation{Name: "Ghost", CounterpartyID: uuid.New(), PreferredCurrencyID: eurID})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[api.Problem](t, resp).Errors, "counterpartyId")

	resp = a.do(http.MethodPost, base+"/"+id.String()+"/currencies", token, api.AccountInCurrencyCreation{CurrencyID: usdID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = a.do(http.MethodDelete, base+"/"+id.String()+"/currencies/"+eurID.String(), token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "preferred currency stays")

	resp = a.do(http.MethodDelete, base+"/"+id.String()+"/currencies/"+usdID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = a.do(http.MethodPost, base+"/"+id.String()+"/currencies", token, api.AccountInCurrencyCreation{CurrencyID: usdID})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = a.do(http.MethodPut, base+"/"+id.String(), token, api.AccountCreation{
		Name: "Checking", CounterpartyID: me.CounterpartyID, PreferredCurrencyID: eurID, Disabled: true,
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = a.do(http.MethodGet, base+"?onlyActive=true", token, nil)
	assert.Empty(t, decode[[]api.Account](t, resp))
	resp = a.do(http.MethodGet, base, token, nil)
	assert.Len(t, decode[[]api.Account](t, resp), 1)

	resp = a.do(http.MethodDelete, base+"/"+id.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = a.do(http.MethodGet, base+"/"+id.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDetailedTransactionsAndReports(t *testing.T) {
	a := newTestAPI(t, 0)
	token, me := a.login("alice")

	shop := a.create(api.V1+"/counterparties", token, api.CounterpartyCreation{Name: "Bakery"})
	mainID := a.create(api.V1+"/accounts", token, api.AccountCreation{Name: "Main", CounterpartyID: me.CounterpartyID, PreferredCurrencyID: eurID})
	tillID := a.create(api.V1+"/accounts", token, api.AccountCreation{Name: "Till", CounterpartyID: shop, PreferredCurrencyID: eurID})
	food := a.create(api.V1+"/categories", token, api.CategoryCreation{Name: "Food"})
	bread := a.create(api.V1+"/products", token, api.ProductCreation{Name: "Bread", CategoryID: &food})

	inCurrency := func(id uuid.UUID) uuid.UUID {
		resp := a.do(http.MethodGet, api.V1+"/accounts/"+id.String(), token, nil)
		return decode[api.Account](t, resp).Currencies[0].ID
	}
	mainEUR, tillEUR := inCurrency(mainID), inCurrency(tillID)

	booked := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	resp := a.do(http.MethodPost, api.V1+"/transactions/detailed", token, api.DetailedTransactionCreation{
		Transfers: []api.TransferCreation{{
			SourceAccountID: mainEUR, TargetAccountID: tillEUR,
			SourceAmount: api.NewAmount(decimal.NewFromInt(10)), TargetAmount: api.NewAmount(decimal.NewFromInt(10)), BookedAt: &booked,
		}},
		Purchases: []api.PurchaseCreation{{
			Price: api.NewAmount(decimal.NewFromInt(4)), CurrencyID: eurID, ProductID: bread, Amount: api.NewAmount(decimal.NewFromInt(2)),
		}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	txID := decode[uuid.UUID](t, resp)

	resp = a.do(http.MethodGet, api.V1+"/transactions/"+txID.String()+"/details", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[api.DetailedTransaction](t, resp)
	assert.True(t, decimal.NewFromInt(-10).Equal(detail.TransferBalance), "got %s", detail.TransferBalance)
	assert.True(t, decimal.NewFromInt(4).Equal(detail.PurchaseTotal))
	require.Len(t, detail.Transfers, 1)

	resp = a.do(http.MethodGet, api.V2+"/transactions?from=2024-05-01&to=2024-06-01", token, nil)
	assert.Len(t, decode[[]api.DetailedTransaction](t, resp), 1)
	resp = a.do(http.MethodGet, api.V1+"/transactions?from=2024-06-01", token, nil)
	assert.Empty(t, decode[[]api.Transaction](t, resp))

	resp = a.do(http.MethodGet, api.V1+"/transfers?transactionId="+txID.String(), token, nil)
	assert.Len(t, decode[[]api.Transfer](t, resp), 1)
	resp = a.do(http.MethodGet, api.V1+"/products/"+bread.String()+"/purchases", token, nil)
	assert.Len(t, decode[[]api.Purchase](t, resp), 1)

	resp = a.do(http.MethodGet, api.V1+"/accounts/"+mainID.String()+"/balance", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	balances := decode[[]api.Balance](t, resp)
	require.Len(t, balances, 1)
	assert.True(t, decimal.NewFromInt(-10).Equal(balances[0].Total))

	resp = a.do(http.MethodGet, api.V1+"/accounts/"+mainID.String()+"/balance/history?split=monthly", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decode[[]api.BalancePoint](t, resp))

	resp = a.do(http.MethodGet, api.V1+"/reports/categories?split=monthly", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[api.CategoryReport](t, resp)
	require.Len(t, report.Periods, 1)
	spent := map[string]decimal.Decimal{}
	for _, s := range report.Series {
		spent[s.Name] = s.Values[0]
	}
	assert.True(t, decimal.NewFromInt(4).Equal(spent["Food"]))
	assert.True(t, decimal.NewFromInt(6).Equal(spent[core.UncategorizedName]))

	resp = a.do(http.MethodGet, api.V1+"/reports/categories?split=weekly", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.do(http.MethodPost, api.V1+"/transactions/detailed", token, api.DetailedTransactionCreation{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "a transaction needs at least one item")

	resp = a.do(http.MethodDelete, api.V1+"/transactions/"+txID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = a.do(http.MethodGet, api.V1+"/reports/balances", token, nil)
	for _, b := range decode[[]api.Balance](t, resp) {
		assert.True(t, b.Total.IsZero(), "deleting the transaction invalidates cached balances")
	}

	assert.Contains(t, a.events.entities(), "transfers:created")
}

func TestLoans(t *testing.T) {
	a := newTestAPI(t, 0)
	token, me := a.login("alice")
	bank := a.create(api.V1+"/counterparties", token, api.CounterpartyCreation{Name: "Bank"})

	loan := a.create(api.V2+"/loans", token, api.LoanCreation{
		Name: "Mortgage", IssuingCounterpartyID: bank, ReceivingCounterpartyID: me.CounterpartyID,
		Principal: api.NewAmount(decimal.NewFromInt(1000)), CurrencyID: eurID,
	})
	reconciled := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tx := a.create(api.V1+"/transactions", token, api.TransactionCreation{ReconciledAt: &reconciled})
	resp := a.do(http.MethodGet, api.V1+"/transactions/"+tx.String(), token, nil)
	assert.True(t, decode[api.Transaction](t, resp).Reconciled)

	a.create(api.V2+"/loan-payments", token, api.LoanPaymentCreation{
		LoanID: loan, TransactionID: tx, Amount: api.NewAmount(decimal.NewFromInt(100)), Interest: api.NewAmount(decimal.NewFromInt(5)),
	})

	resp = a.do(http.MethodGet, api.V2+"/loans/"+loan.String()+"/payments", token, nil)
	assert.Len(t, decode[[]api.LoanPayment](t, resp), 1)

	resp = a.do(http.MethodGet, api.V2+"/loans/"+loan.String()+"/summary", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[api.LoanSummary](t, resp)
	assert.True(t, decimal.NewFromInt(900).Equal(summary.Outstanding))

	resp = a.do(http.MethodPost, api.V2+"/loan-payments", token, map[string]any{
		"loanId": loan, "transactionId": tx, "amount": "12,50", "interest": "0,5",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	payment := decode[uuid.UUID](t, resp)
	resp = a.do(http.MethodGet, api.V2+"/loan-payments/"+payment.String(), token, nil)
	assert.True(t, decimal.RequireFromString("12.5").Equal(decode[api.LoanPayment](t, resp).Amount))

	resp = a.do(http.MethodPost, api.V2+"/loan-payments", token, map[string]any{
		"loanId": loan, "transactionId": tx, "amount": "1.000,00",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[api.Problem](t, resp).Detail, "invalid amount")

	resp = a.do(http.MethodPost, api.V2+"/loan-payments", token, api.LoanPaymentCreation{
		LoanID: loan, TransactionID: uuid.New(), Amount: api.NewAmount(decimal.NewFromInt(1)),
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[api.Problem](t, resp).Errors, "transactionId")

	resp = a.do(http.MethodPost, api.V2+"/loans", token, api.LoanCreation{
		Name: "Self", IssuingCounterpartyID: bank, ReceivingCounterpartyID: bank,
		Principal: api.NewAmount(decimal.NewFromInt(1)), CurrencyID: eurID,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRateLimitOnWrites(t *testing.T) {
	a := newTestAPI(t, 2)
	login := api.Login{Username: "nobody", Password: "whatever"}

	for i := 0; i < 2; i++ {
		resp := a.do(http.MethodPost, api.V1+"/authentication/login", "", login)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp := a.do(http.MethodPost, api.V1+"/authentication/login", "", login)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, api.ProblemContentType, resp.Header.Get("Content-Type"))

	resp = a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "reads are not limited")
}
