package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UncategorizedName labels spending that cannot be attributed to a category.
const UncategorizedName = "Uncategorized"

// Split is the period a report groups values by.
type Split string

const (
	SplitDaily   Split = "daily"
	SplitMonthly Split = "monthly"
	SplitYearly  Split = "yearly"
)

// ParseSplit accepts daily, monthly or yearly. Empty means monthly.
func ParseSplit(s string) (Split, error) {
	switch Split(strings.ToLower(strings.TrimSpace(s))) {
	case "", SplitMonthly:
		return SplitMonthly, nil
	case SplitDaily:
		return SplitDaily, nil
	case SplitYearly:
		return SplitYearly, nil
	}
	return "", &ValidationError{Field: "split", Message: fmt.Sprintf("unknown split %q", s)}
}

// Start truncates t to the beginning of its period in UTC.
func (s Split) Start(t time.Time) time.Time {
	t = t.UTC()
	switch s {
	case SplitDaily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case SplitYearly:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// Next returns the start of the period after the one starting at start.
func (s Split) Next(start time.Time) time.Time {
	switch s {
	case SplitDaily:
		return start.AddDate(0, 0, 1)
	case SplitYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// Periods lists the period starts covering from..to inclusive.
func (s Split) Periods(from, to time.Time) []time.Time {
	if to.Before(from) {
		return nil
	}
	var periods []time.Time
	last := s.Start(to)
	for p := s.Start(from); !p.After(last); p = s.Next(p) {
		periods = append(periods, p)
	}
	return periods
}

// Balance is the total held in one account-in-currency.
type Balance struct {
	AccountID           uuid.UUID
	AccountInCurrencyID uuid.UUID
	CurrencyID          uuid.UUID
	TargetAmount        decimal.Decimal
	SourceAmount        decimal.Decimal
}

// Total is money in minus money out.
func (b Balance) Total() decimal.Decimal { return b.TargetAmount.Sub(b.SourceAmount) }

// AccountBalances sums transfers into and out of every in-currency row of
// the given accounts. Rows without transfers report zero.
func AccountBalances(accounts []Account, transfers []Transfer) []Balance {
	index := make(map[uuid.UUID]int)
	var balances []Balance
	for _, a := range accounts {
		for _, c := range a.Currencies {
			index[c.ID] = len(balances)
			balances = append(balances, Balance{
				AccountID:           a.ID,
				AccountInCurrencyID: c.ID,
				CurrencyID:          c.CurrencyID,
			})
		}
	}
	for _, t := range transfers {
		if i, ok := index[t.TargetAccountID]; ok {
			balances[i].TargetAmount = balances[i].TargetAmount.Add(t.TargetAmount)
		}
		if i, ok := index[t.SourceAccountID]; ok {
			balances[i].SourceAmount = balances[i].SourceAmount.Add(t.SourceAmount)
		}
	}
	return balances
}

// BalancePoint is the candle of a running balance over one period.
type BalancePoint struct {
	Period time.Time
	Open   decimal.Decimal
	Close  decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
}

// BalanceHistory replays transfers touching the given in-currency rows in
// date order and reports, per period, the balance at its start and end and
// the extremes reached inside it.
func BalanceHistory(inCurrency map[uuid.UUID]bool, transfers []Transfer, split Split) []BalancePoint {
	var relevant []Transfer
	for _, t := range transfers {
		if inCurrency[t.SourceAccountID] || inCurrency[t.TargetAccountID] {
			relevant = append(relevant, t)
		}
	}
	if len(relevant) == 0 {
		return nil
	}
	sort.SliceStable(relevant, func(i, j int) bool {
		di, dj := relevant[i].Date(), relevant[j].Date()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return relevant[i].CreatedAt.Before(relevant[j].CreatedAt)
	})

	delta := func(t Transfer) decimal.Decimal {
		d := decimal.Zero
		if inCurrency[t.TargetAccountID] {
			d = d.Add(t.TargetAmount)
		}
		if inCurrency[t.SourceAccountID] {
			d = d.Sub(t.SourceAmount)
		}
		return d
	}

	periods := split.Periods(relevant[0].Date(), relevant[len(relevant)-1].Date())
	points := make([]BalancePoint, 0, len(periods))
	running := decimal.Zero
	next := 0
	for _, p := range periods {
		end := split.Next(p)
		point := BalancePoint{Period: p, Open: running, High: running, Low: running}
		for next < len(relevant) && relevant[next].Date().Before(end) {
			running = running.Add(delta(relevant[next]))
			point.High = decimal.Max(point.High, running)
			point.Low = decimal.Min(point.Low, running)
			next++
		}
		point.Close = running
		points = append(points, point)
	}
	return points
}

// CategorySeries is the spending of one category across report periods.
type CategorySeries struct {
	CategoryID *uuid.UUID
	Name       string
	Values     []decimal.Decimal
}

// CategoryReport is spending grouped by category and period.
type CategoryReport struct {
	Periods []time.Time
	Series  []CategorySeries
}

// CategoryReportInput carries everything BuildCategoryReport needs.
// Root selects a category whose direct children become the series;
// nil reports on top-level categories.
type CategoryReportInput struct {
	Transactions []DetailedTransaction
	Accounts     []Account
	Products     []Product
	Categories   []Category
	Split        Split
	Root         *uuid.UUID
}

type categoryNode struct {
	id      uuid.UUID
	name    string
	members map[uuid.UUID]bool
}

func buildNodes(categories []Category, root *uuid.UUID) []categoryNode {
	children := make(map[uuid.UUID][]uuid.UUID)
	for _, c := range categories {
		if c.CategoryID != nil {
			children[*c.CategoryID] = append(children[*c.CategoryID], c.ID)
		}
	}
	subtree := func(id uuid.UUID) map[uuid.UUID]bool {
		members := map[uuid.UUID]bool{}
		stack := []uuid.UUID{id}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if members[cur] {
				continue
			}
			members[cur] = true
			stack = append(stack, children[cur]...)
		}
		return members
	}

	var nodes []categoryNode
	for _, c := range categories {
		switch {
		case root == nil && c.CategoryID == nil:
		case root != nil && c.ID == *root:
			nodes = append(nodes, categoryNode{id: c.ID, name: c.Name, members: map[uuid.UUID]bool{c.ID: true}})
			continue
		case root != nil && c.CategoryID != nil && *c.CategoryID == *root:
		default:
			continue
		}
		nodes = append(nodes, categoryNode{id: c.ID, name: c.Name, members: subtree(c.ID)})
	}
	return nodes
}

type spending struct {
	node  *categoryNode
	price decimal.Decimal
	date  time.Time
	data  *DetailedTransaction
}

// BuildCategoryReport attributes the spending of outgoing transactions to
// product categories. Spending above the purchase total of a transaction is
// reported as uncategorized when no root category is selected.
func BuildCategoryReport(in CategoryReportInput) CategoryReport {
	currencyOf := make(map[uuid.UUID]uuid.UUID)
	for _, a := range in.Accounts {
		for _, c := range a.Currencies {
			currencyOf[c.ID] = c.CurrencyID
		}
	}
	productCategory := make(map[uuid.UUID]*uuid.UUID, len(in.Products))
	for _, p := range in.Products {
		productCategory[p.ID] = p.CategoryID
	}

	nodes := buildNodes(in.Categories, in.Root)
	nodeFor := func(categoryID *uuid.UUID) *categoryNode {
		if categoryID == nil {
			return nil
		}
		for i := range nodes {
			if nodes[i].members[*categoryID] {
				return &nodes[i]
			}
		}
		return nil
	}

	var items []spending
	var minDate, maxDate time.Time
	for i := range in.Transactions {
		t := &in.Transactions[i]
		spent := t.TransferBalance.Neg()
		if !spent.IsPositive() {
			continue
		}
		date := t.Date()
		if date.IsZero() {
			continue
		}
		if minDate.IsZero() || date.Before(minDate) {
			minDate = date
		}
		if date.After(maxDate) {
			maxDate = date
		}

		for _, p := range t.Purchases {
			node := nodeFor(productCategory[p.ProductID])
			if in.Root != nil && node == nil {
				continue
			}
			items = append(items, spending{node: node, price: convertPrice(p.Price, t, currencyOf), date: date, data: t})
		}
		if in.Root == nil && spent.GreaterThan(t.PurchaseTotal) {
			items = append(items, spending{price: spent.Sub(t.PurchaseTotal), date: date, data: t})
		}
	}

	report := CategoryReport{}
	if len(items) == 0 {
		return report
	}
	report.Periods = in.Split.Periods(minDate, maxDate)
	periodIndex := func(d time.Time) int {
		start := in.Split.Start(d)
		return sort.Search(len(report.Periods), func(i int) bool { return !report.Periods[i].Before(start) })
	}

	seriesIndex := make(map[*categoryNode]int)
	for _, item := range items {
		i, ok := seriesIndex[item.node]
		if !ok {
			i = len(report.Series)
			seriesIndex[item.node] = i
			s := CategorySeries{Name: UncategorizedName, Values: make([]decimal.Decimal, len(report.Periods))}
			if item.node != nil {
				id := item.node.id
				s.CategoryID, s.Name = &id, item.node.name
			}
			report.Series = append(report.Series, s)
		}
		p := periodIndex(item.date)
		report.Series[i].Values[p] = report.Series[i].Values[p].Add(item.price)
	}

	sort.SliceStable(report.Series, func(i, j int) bool {
		a, b := report.Series[i], report.Series[j]
		if (a.CategoryID == nil) != (b.CategoryID == nil) {
			return b.CategoryID == nil
		}
		return a.Name < b.Name
	})
	return report
}

// convertPrice converts a purchase price into the source currency when the
// transaction moves money across exactly one currency pair in one transfer.
func convertPrice(price decimal.Decimal, t *DetailedTransaction, currencyOf map[uuid.UUID]uuid.UUID) decimal.Decimal {
	sources := map[uuid.UUID]bool{}
	targets := map[uuid.UUID]bool{}
	for _, tr := range t.Transfers {
		if c, ok := currencyOf[tr.SourceAccountID]; ok {
			sources[c] = true
		}
		if c, ok := currencyOf[tr.TargetAccountID]; ok {
			targets[c] = true
		}
	}
	if len(sources) != 1 || len(targets) != 1 || len(t.Transfers) != 1 {
		return price
	}
	for s := range sources {
		if targets[s] {
			return price
		}
	}
	tr := t.Transfers[0]
	if tr.TargetAmount.IsZero() {
		return price
	}
	return RoundMoney(price.Mul(tr.SourceAmount).Div(tr.TargetAmount))
}
