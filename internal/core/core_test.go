package core

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	return &t
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{" 7 ", "7", true},
		{"-3.5", "-3.5", true},
		{"", "", false},
		{"1.234,56", "", false},
		{"abc", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.True(t, dec(tc.want).Equal(got), "input %q: got %s", tc.in, got)
	}
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "1.24", RoundMoney(dec("1.235")).String())
	assert.Equal(t, "-1.24", RoundMoney(dec("-1.235")).String())
}

func TestEntityStamp(t *testing.T) {
	user := uuid.New()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	var e Entity
	e.Stamp(user, now)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, user, e.OwnerID)
	assert.Equal(t, user, e.CreatedByUserID)
	assert.Equal(t, now, e.CreatedAt)
	assert.Equal(t, now, e.ModifiedAt)

	id, owner := uuid.New(), uuid.New()
	kept := Entity{ID: id, OwnerID: owner}
	kept.Stamp(user, now)
	assert.Equal(t, id, kept.ID)
	assert.Equal(t, owner, kept.OwnerID)
}

func TestValidationErrorsAreValidation(t *testing.T) {
	acc := Account{}
	err := acc.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "name", ve.Field)
}

func TestTransferValidate(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	good := Transfer{
		TransactionID:   uuid.New(),
		SourceAccountID: a,
		TargetAccountID: b,
		SourceAmount:    dec("10"),
		TargetAmount:    dec("10"),
		BookedAt:        at(2024, 1, 1),
	}
	require.NoError(t, good.Validate())

	same := good
	same.TargetAccountID = a
	assert.ErrorIs(t, same.Validate(), ErrValidation)

	zero := good
	zero.SourceAmount = decimal.Zero
	assert.ErrorIs(t, zero.Validate(), ErrValidation)

	undated := good
	undated.BookedAt = nil
	assert.ErrorIs(t, undated.Validate(), ErrValidation)
}

func TestUnitValidate(t *testing.T) {
	parent := uuid.New()
	m := dec("1000")
	require.NoError(t, (&Unit{Name: "g"}).Validate())
	require.NoError(t, (&Unit{Name: "kg", ParentUnitID: &parent, Multiplier: &m}).Validate())
	assert.Error(t, (&Unit{Name: "kg", ParentUnitID: &parent}).Validate())
	assert.Error(t, (&Unit{Name: "kg", Multiplier: &m}).Validate())
}

func TestLoanValidate(t *testing.T) {
	cp := uuid.New()
	loan := Loan{Name: "car", IssuingCounterpartyID: cp, ReceivingCounterpartyID: cp, CurrencyID: uuid.New(), Principal: dec("100")}
	assert.ErrorIs(t, loan.Validate(), ErrValidation)

	loan.ReceivingCounterpartyID = uuid.New()
	assert.NoError(t, loan.Validate())
}

func TestSummarizeLoan(t *testing.T) {
	loan := Loan{Entity: Entity{ID: uuid.New()}, Principal: dec("1000")}
	payments := []LoanPayment{
		{LoanID: loan.ID, Amount: dec("100"), Interest: dec("5")},
		{LoanID: loan.ID, Amount: dec("150"), Interest: dec("4.5")},
		{LoanID: uuid.New(), Amount: dec("999")},
	}
	s := SummarizeLoan(loan, payments)
	assert.Equal(t, 2, s.PaymentsCount)
	assert.True(t, dec("250").Equal(s.Paid))
	assert.True(t, dec("9.5").Equal(s.InterestPaid))
	assert.True(t, dec("750").Equal(s.Outstanding))
}

func TestCurrencyIDs(t *testing.T) {
	pref, other := uuid.New(), uuid.New()
	ids := CurrencyIDs(pref, []uuid.UUID{other, pref, uuid.Nil, other})
	assert.Equal(t, []uuid.UUID{pref, other}, ids)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "SPENDING ACCOUNT", NormalizeName("  Spending account "))
}
