package storage

import (
	"gnomeshade/internal/core"
)

var counterpartyMapping = mapping[core.Counterparty]{
	table:   "counterparties",
	columns: []string{"name", "normalized_name"},
	header:  func(c *core.Counterparty) *core.Entity { return &c.Entity },
	scan: func(c *core.Counterparty) []any {
		var normalized string
		return []any{&c.Name, &normalized}
	},
	args: func(c *core.Counterparty) []any {
		return []any{c.Name, core.NormalizeName(c.Name)}
	},
}

var accountMapping = mapping[core.Account]{
	table: "accounts",
	columns: []string{
		"name", "normalized_name", "counterparty_id", "preferred_currency_id",
		"bic", "iban", "account_number", "disabled_at", "disabled_by_user_id",
	},
	header: func(a *core.Account) *core.Entity { return &a.Entity },
	scan: func(a *core.Account) []any {
		return []any{
			&a.Name, &a.NormalizedName, &a.CounterpartyID, &a.PreferredCurrencyID,
			&a.Bic, &a.Iban, &a.AccountNumber, &a.DisabledAt, &a.DisabledByUserID,
		}
	},
	args: func(a *core.Account) []any {
		return []any{
			a.Name, core.NormalizeName(a.Name), a.CounterpartyID, a.PreferredCurrencyID,
			optString(a.Bic), optString(a.Iban), optString(a.AccountNumber), optTime(a.DisabledAt), optUUID(a.DisabledByUserID),
		}
	},
}

var accountInCurrencyMapping = mapping[core.AccountInCurrency]{
	table:   "accounts_in_currency",
	columns: []string{"account_id", "currency_id"},
	header:  func(a *core.AccountInCurrency) *core.Entity { return &a.Entity },
	scan: func(a *core.AccountInCurrency) []any {
		return []any{&a.AccountID, &a.CurrencyID}
	},
	args: func(a *core.AccountInCurrency) []any {
		return []any{a.AccountID, a.CurrencyID}
	},
}

var transactionMapping = mapping[core.Transaction]{
	table:   "transactions",
	columns: []string{"description", "imported_at", "reconciled_at", "refunded_by"},
	header:  func(t *core.Transaction) *core.Entity { return &t.Entity },
	scan: func(t *core.Transaction) []any {
		return []any{&t.Description, &t.ImportedAt, &t.ReconciledAt, &t.RefundedBy}
	},
	args: func(t *core.Transaction) []any {
		return []any{optString(t.Description), optTime(t.ImportedAt), optTime(t.ReconciledAt), optUUID(t.RefundedBy)}
	},
}

var transferMapping = mapping[core.Transfer]{
	table: "transfers",
	columns: []string{
		"transaction_id", "source_amount", "source_account_id", "target_amount", "target_account_id",
		"bank_reference", "external_reference", "internal_reference", "item_order", "booked_at", "valued_at",
	},
	header: func(t *core.Transfer) *core.Entity { return &t.Entity },
	scan: func(t *core.Transfer) []any {
		return []any{
			&t.TransactionID, &t.SourceAmount, &t.SourceAccountID, &t.TargetAmount, &t.TargetAccountID,
			&t.BankReference, &t.ExternalReference, &t.InternalReference, &t.Order, &t.BookedAt, &t.ValuedAt,
		}
	},
	args: func(t *core.Transfer) []any {
		return []any{
			t.TransactionID, t.SourceAmount, t.SourceAccountID, t.TargetAmount, t.TargetAccountID,
			optString(t.BankReference), optString(t.ExternalReference), optString(t.InternalReference),
			optInt(t.Order), optTime(t.BookedAt), optTime(t.ValuedAt),
		}
	},
}

var purchaseMapping = mapping[core.Purchase]{
	table: "purchases",
	columns: []string{
		"transaction_id", "price", "currency_id", "product_id", "amount", "delivery_date", "item_order",
	},
	header: func(p *core.Purchase) *core.Entity { return &p.Entity },
	scan: func(p *core.Purchase) []any {
		return []any{&p.TransactionID, &p.Price, &p.CurrencyID, &p.ProductID, &p.Amount, &p.DeliveryDate, &p.Order}
	},
	args: func(p *core.Purchase) []any {
		return []any{p.TransactionID, p.Price, p.CurrencyID, p.ProductID, p.Amount, optTime(p.DeliveryDate), optInt(p.Order)}
	},
}

var loanMapping = mapping[core.Loan]{
	table:   "loans",
	columns: []string{"name", "issuing_counterparty_id", "receiving_counterparty_id", "principal", "currency_id"},
	header:  func(l *core.Loan) *core.Entity { return &l.Entity },
	scan: func(l *core.Loan) []any {
		return []any{&l.Name, &l.IssuingCounterpartyID, &l.ReceivingCounterpartyID, &l.Principal, &l.CurrencyID}
	},
	args: func(l *core.Loan) []any {
		return []any{l.Name, l.IssuingCounterpartyID, l.ReceivingCounterpartyID, l.Principal, l.CurrencyID}
	},
}

var loanPaymentMapping = mapping[core.LoanPayment]{
	table:   "loan_payments",
	columns: []string{"loan_id", "transaction_id", "amount", "interest"},
	header:  func(p *core.LoanPayment) *core.Entity { return &p.Entity },
	scan: func(p *core.LoanPayment) []any {
		return []any{&p.LoanID, &p.TransactionID, &p.Amount, &p.Interest}
	},
	args: func(p *core.LoanPayment) []any {
		return []any{p.LoanID, p.TransactionID, p.Amount, p.Interest}
	},
}

var categoryMapping = mapping[core.Category]{
	table:   "categories",
	columns: []string{"name", "normalized_name", "description", "category_id"},
	header:  func(c *core.Category) *core.Entity { return &c.Entity },
	scan: func(c *core.Category) []any {
		return []any{&c.Name, &c.NormalizedName, &c.Description, &c.CategoryID}
	},
	args: func(c *core.Category) []any {
		return []any{c.Name, core.NormalizeName(c.Name), optString(c.Description), optUUID(c.CategoryID)}
	},
}

var productMapping = mapping[core.Product]{
	table:   "products",
	columns: []string{"name", "normalized_name", "sku", "description", "unit_id", "category_id"},
	header:  func(p *core.Product) *core.Entity { return &p.Entity },
	scan: func(p *core.Product) []any {
		return []any{&p.Name, &p.NormalizedName, &p.Sku, &p.Description, &p.UnitID, &p.CategoryID}
	},
	args: func(p *core.Product) []any {
		return []any{
			p.Name, core.NormalizeName(p.Name), optString(p.Sku), optString(p.Description),
			optUUID(p.UnitID), optUUID(p.CategoryID),
		}
	},
}

var unitMapping = mapping[core.Unit]{
	table:   "units",
	columns: []string{"name", "normalized_name", "symbol", "parent_unit_id", "multiplier"},
	header:  func(u *core.Unit) *core.Entity { return &u.Entity },
	scan: func(u *core.Unit) []any {
		return []any{&u.Name, &u.NormalizedName, &u.Symbol, &u.ParentUnitID, &u.Multiplier}
	},
	args: func(u *core.Unit) []any {
		return []any{u.Name, core.NormalizeName(u.Name), optString(u.Symbol), optUUID(u.ParentUnitID), optDecimal(u.Multiplier)}
	},
}
