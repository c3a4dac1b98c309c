package api

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"gnomeshade/internal/core"
)

// Amount is a money amount in a request body. It accepts a JSON number or a
// string using either a dot or a comma as the decimal separator, and is
// written back as a string.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount { return Amount{Decimal: d} }

func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("%w: %s", core.ErrInvalidAmount, raw)
		}
		raw = s
	}
	d, err := core.ParseAmount(raw)
	if err != nil {
		return fmt.Errorf("%w: %q", core.ErrInvalidAmount, raw)
	}
	a.Decimal = d
	return nil
}
