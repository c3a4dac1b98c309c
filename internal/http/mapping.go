package http

import (
	"time"

	"github.com/google/uuid"

	"gnomeshade/api"
	"gnomeshade/internal/core"
)

func entityToAPI(e core.Entity) api.Entity {
	return api.Entity{
		ID:               e.ID,
		CreatedAt:        e.CreatedAt,
		OwnerID:          e.OwnerID,
		CreatedByUserID:  e.CreatedByUserID,
		ModifiedAt:       e.ModifiedAt,
		ModifiedByUserID: e.ModifiedByUserID,
	}
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

func userToAPI(u *core.User) api.UserInfo {
	return api.UserInfo{ID: u.ID, Username: u.Username, FullName: u.FullName, CounterpartyID: u.CounterpartyID}
}

func currencyToAPI(c core.Currency) api.Currency {
	return api.Currency{
		ID:             c.ID,
		Name:           c.Name,
		AlphabeticCode: c.AlphabeticCode,
		NumericCode:    c.NumericCode,
		MinorUnit:      c.MinorUnit,
	}
}

func counterpartyToAPI(c core.Counterparty) api.Counterparty {
	return api.Counterparty{Entity: entityToAPI(c.Entity), Name: c.Name}
}

func counterpartyFromAPI(in api.CounterpartyCreation, c *core.Counterparty) {
	c.Name = in.Name
}

func accountToAPI(a core.Account) api.Account {
	return api.Account{
		Entity:              entityToAPI(a.Entity),
		Name:                a.Name,
		CounterpartyID:      a.CounterpartyID,
		PreferredCurrencyID: a.PreferredCurrencyID,
		Bic:                 a.Bic,
		Iban:                a.Iban,
		AccountNumber:       a.AccountNumber,
		DisabledAt:          a.DisabledAt,
		Currencies: mapSlice(a.Currencies, func(c core.AccountInCurrency) api.AccountInCurrency {
			return api.AccountInCurrency{
				ID:           c.ID,
				CurrencyID:   c.CurrencyID,
				CurrencyCode: c.CurrencyAlphabeticCode,
				CreatedAt:    c.CreatedAt,
				OwnerID:      c.OwnerID,
			}
		}),
	}
}

// accountFromAPI copies the editable fields. Disabling keeps an existing
// DisabledAt so the original date survives repeated updates.
func accountFromAPI(in api.AccountCreation, a *core.Account, userID uuid.UUID, now time.Time) {
	a.Name = in.Name
	a.CounterpartyID = in.CounterpartyID
	a.PreferredCurrencyID = in.PreferredCurrencyID
	a.Bic, a.Iban, a.AccountNumber = in.Bic, in.Iban, in.AccountNumber
	switch {
	case !in.Disabled:
		a.DisabledAt, a.DisabledByUserID = nil, nil
	case a.Active():
		a.DisabledAt, a.DisabledByUserID = &now, &userID
	}
}

func balanceToAPI(b core.Balance) api.Balance {
	return api.Balance{
		AccountID:           b.AccountID,
		AccountInCurrencyID: b.AccountInCurrencyID,
		CurrencyID:          b.CurrencyID,
		TargetAmount:        b.TargetAmount,
		SourceAmount:        b.SourceAmount,
		Total:               b.Total(),
	}
}

func balancePointToAPI(p core.BalancePoint) api.BalancePoint {
	return api.BalancePoint{Period: p.Period, Open: p.Open, Close: p.Close, High: p.High, Low: p.Low}
}

func categoryReportToAPI(r core.CategoryReport) api.CategoryReport {
	out := api.CategoryReport{Periods: r.Periods}
	if out.Periods == nil {
		out.Periods = []time.Time{}
	}
	out.Series = mapSlice(r.Series, func(s core.CategorySeries) api.CategorySeries {
		return api.CategorySeries{CategoryID: s.CategoryID, Name: s.Name, Values: s.Values}
	})
	return out
}

func transactionToAPI(t core.Transaction) api.Transaction {
	return api.Transaction{
		Entity:       entityToAPI(t.Entity),
		Description:  t.Description,
		ImportedAt:   t.ImportedAt,
		ReconciledAt: t.ReconciledAt,
		Reconciled:   t.Reconciled(),
		RefundedBy:   t.RefundedBy,
	}
}

func transactionFromAPI(in api.TransactionCreation, t *core.Transaction) {
	t.Description = in.Description
	t.ImportedAt = in.ImportedAt
	t.ReconciledAt = in.ReconciledAt
	t.RefundedBy = in.RefundedBy
}

func detailedToAPI(d core.DetailedTransaction) api.DetailedTransaction {
	return api.DetailedTransaction{
		Transaction:     transactionToAPI(d.Transaction),
		Transfers:       mapSlice(d.Transfers, transferToAPI),
		Purchases:       mapSlice(d.Purchases, purchaseToAPI),
		LoanPayments:    mapSlice(d.LoanPayments, loanPaymentToAPI),
		TransferBalance: d.TransferBalance,
		PurchaseTotal:   d.PurchaseTotal,
		LoanTotal:       d.LoanTotal,
	}
}

func detailedFromAPI(in api.DetailedTransactionCreation) *core.DetailedTransaction {
	d := &core.DetailedTransaction{
		Transfers:    make([]core.Transfer, len(in.Transfers)),
		Purchases:    make([]core.Purchase, len(in.Purchases)),
		LoanPayments: make([]core.LoanPayment, len(in.LoanPayments)),
	}
	transactionFromAPI(in.TransactionCreation, &d.Transaction)
	for i := range in.Transfers {
		transferFromAPI(in.Transfers[i], &d.Transfers[i])
	}
	for i := range in.Purchases {
		purchaseFromAPI(in.Purchases[i], &d.Purchases[i])
	}
	for i := range in.LoanPayments {
		loanPaymentFromAPI(in.LoanPayments[i], &d.LoanPayments[i])
	}
	return d
}

func transferToAPI(t core.Transfer) api.Transfer {
	return api.Transfer{
		Entity:            entityToAPI(t.Entity),
		TransactionID:     t.TransactionID,
		SourceAmount:      t.SourceAmount,
		SourceAccountID:   t.SourceAccountID,
		TargetAmount:      t.TargetAmount,
		TargetAccountID:   t.TargetAccountID,
		BankReference:     t.BankReference,
		ExternalReference: t.ExternalReference,
		InternalReference: t.InternalReference,
		Order:             t.Order,
		BookedAt:          t.BookedAt,
		ValuedAt:          t.ValuedAt,
	}
}

func transferFromAPI(in api.TransferCreation, t *core.Transfer) {
	t.TransactionID = in.TransactionID
	t.SourceAmount = in.SourceAmount.Decimal
	t.SourceAccountID = in.SourceAccountID
	t.TargetAmount = in.TargetAmount.Decimal
	t.TargetAccountID = in.TargetAccountID
	t.BankReference = in.BankReference
	t.ExternalReference = in.ExternalReference
	t.InternalReference = in.InternalReference
	t.Order = in.Order
	t.BookedAt = in.BookedAt
	t.ValuedAt = in.ValuedAt
}

func purchaseToAPI(p core.Purchase) api.Purchase {
	return api.Purchase{
		Entity:        entityToAPI(p.Entity),
		TransactionID: p.TransactionID,
		Price:         p.Price,
		CurrencyID:    p.CurrencyID,
		ProductID:     p.ProductID,
		Amount:        p.Amount,
		DeliveryDate:  p.DeliveryDate,
		Order:         p.Order,
	}
}

func purchaseFromAPI(in api.PurchaseCreation, p *core.Purchase) {
	p.TransactionID = in.TransactionID
	p.Price = in.Price.Decimal
	p.CurrencyID = in.CurrencyID
	p.ProductID = in.ProductID
	p.Amount = in.Amount.Decimal
	p.DeliveryDate = in.DeliveryDate
	p.Order = in.Order
}

func loanToAPI(l core.Loan) api.Loan {
	return api.Loan{
		Entity:                  entityToAPI(l.Entity),
		Name:                    l.Name,
		IssuingCounterpartyID:   l.IssuingCounterpartyID,
		ReceivingCounterpartyID: l.ReceivingCounterpartyID,
		Principal:               l.Principal,
		CurrencyID:              l.CurrencyID,
	}
}

func loanFromAPI(in api.LoanCreation, l *core.Loan) {
	l.Name = in.Name
	l.IssuingCounterpartyID = in.IssuingCounterpartyID
	l.ReceivingCounterpartyID = in.ReceivingCounterpartyID
	l.Principal = in.Principal.Decimal
	l.CurrencyID = in.CurrencyID
}

func loanSummaryToAPI(s core.LoanSummary) api.LoanSummary {
	return api.LoanSummary{
		Loan:          loanToAPI(s.Loan),
		Paid:          s.Paid,
		InterestPaid:  s.InterestPaid,
		Outstanding:   s.Outstanding,
		PaymentsCount: s.PaymentsCount,
	}
}

func loanPaymentToAPI(p core.LoanPayment) api.LoanPayment {
	return api.LoanPayment{
		Entity:        entityToAPI(p.Entity),
		LoanID:        p.LoanID,
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Interest:      p.Interest,
	}
}

func loanPaymentFromAPI(in api.LoanPaymentCreation, p *core.LoanPayment) {
	p.LoanID = in.LoanID
	p.TransactionID = in.TransactionID
	p.Amount = in.Amount.Decimal
	p.Interest = in.Interest.Decimal
}

func categoryToAPI(c core.Category) api.Category {
	return api.Category{Entity: entityToAPI(c.Entity), Name: c.Name, Description: c.Description, CategoryID: c.CategoryID}
}

func categoryFromAPI(in api.CategoryCreation, c *core.Category) {
	c.Name = in.Name
	c.Description = in.Description
	c.CategoryID = in.CategoryID
}

func productToAPI(p core.Product) api.Product {
	return api.Product{
		Entity:      entityToAPI(p.Entity),
		Name:        p.Name,
		Sku:         p.Sku,
		Description: p.Description,
		UnitID:      p.UnitID,
		CategoryID:  p.CategoryID,
	}
}

func productFromAPI(in api.ProductCreation, p *core.Product) {
	p.Name = in.Name
	p.Sku = in.Sku
	p.Description = in.Description
	p.UnitID = in.UnitID
	p.CategoryID = in.CategoryID
}

func unitToAPI(u core.Unit) api.Unit {
	return api.Unit{
		Entity:       entityToAPI(u.Entity),
		Name:         u.Name,
		Symbol:       u.Symbol,
		ParentUnitID: u.ParentUnitID,
		Multiplier:   u.Multiplier,
	}
}

func unitFromAPI(in api.UnitCreation, u *core.Unit) {
	u.Name = in.Name
	u.Symbol = in.Symbol
	u.ParentUnitID = in.ParentUnitID
	u.Multiplier = in.Multiplier
}
