package snapshot_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gitlab.heather.loc/helios/venuelink/pkg/snapshot"
	"gitlab.heather.loc/helios/venuelink/pkg/trading"
	"gotest.tools/assert"
)

func decPtr(value string) *decimal.Decimal {
	d := dec(value)
	return &d
}

func intPtr(value int) *int {
	return &value
}

func strPtr(value string) *string {
	return &value
}

func TestApplySecurity(t *testing.T) {
	boards := &snapshot.Boards{}

	t.Run("fills empty security", func(t *testing.T) {
		expiry := time.Date(2019, 9, 19, 0, 0, 0, 0, time.UTC)
		sec := &snapshot.Security{}
		msg := &trading.SecurityMessage{
			SecurityID:             trading.SecurityID{Code: "SiU9", Board: "FORTS"},
			Name:                   "Si-9.19",
			CfiCode:                "FFXXXX",
			Currency:               strPtr("RUB"),
			ExpiryDate:             &expiry,
			Multiplier:             decPtr("1000"),
			UnderlyingSecurityCode: "USD000UTSTOM",
			PrimaryID:              trading.SecurityID{Code: "SiU9", Board: "MOEX"},
		}

		err := snapshot.ApplySecurity(sec, msg, boards, false)
		assert.NilError(t, err)
		assert.Equal(t, sec.Code, "SiU9")
		assert.Equal(t, sec.Board, boards.GetOrCreateBoard("FORTS"))
		assert.Equal(t, sec.Name, "Si-9.19")
		assert.Equal(t, *sec.Type, trading.SecurityTypeFuture)
		assert.Equal(t, *sec.Currency, "RUB")
		assert.Equal(t, *sec.ExpiryDate, expiry)
		assert.Check(t, sec.Multiplier.Equal(dec("1000")))
		assert.Equal(t, sec.UnderlyingSecurityID, "USD000UTSTOM@FORTS")
		assert.Equal(t, sec.PrimaryID, "SiU9@MOEX")
		assert.Check(t, sec.PriceStep == nil)
		assert.Check(t, sec.Decimals == nil)
	})

	t.Run("merge keeps populated fields", func(t *testing.T) {
		sec := &snapshot.Security{
			Code:     "AAPL",
			Name:     "Apple",
			Currency: strPtr("USD"),
		}
		msg := &trading.SecurityMessage{
			SecurityID: trading.SecurityID{Code: "AAPL", Board: "NASDAQ"},
			Name:       "Apple Inc.",
			ShortName:  "AAPL",
			Currency:   strPtr("EUR"),
		}

		err := snapshot.ApplySecurity(sec, msg, boards, false)
		assert.NilError(t, err)
		assert.Equal(t, sec.Name, "Apple")
		assert.Equal(t, *sec.Currency, "USD")
		assert.Equal(t, sec.ShortName, "AAPL")
		assert.Equal(t, sec.Board.Code, "NASDAQ")
	})

	t.Run("override replaces present fields only", func(t *testing.T) {
		sec := &snapshot.Security{
			Code:      "AAPL",
			Name:      "Apple",
			ShortName: "AAPL",
			Currency:  strPtr("USD"),
		}
		msg := &trading.SecurityMessage{
			SecurityID: trading.SecurityID{Code: "AAPL", Board: "NASDAQ"},
			Name:       "Apple Inc.",
			Currency:   strPtr("EUR"),
		}

		err := snapshot.ApplySecurity(sec, msg, boards, true)
		assert.NilError(t, err)
		assert.Equal(t, sec.Name, "Apple Inc.")
		assert.Equal(t, *sec.Currency, "EUR")
		assert.Equal(t, sec.ShortName, "AAPL", "absent fields never erase")
	})

	t.Run("merged values are copied", func(t *testing.T) {
		currency := "USD"
		sec := &snapshot.Security{}
		msg := &trading.SecurityMessage{Currency: &currency}
		assert.NilError(t, snapshot.ApplySecurity(sec, msg, boards, false))
		currency = "EUR"
		assert.Equal(t, *sec.Currency, "USD")
	})

	t.Run("nil arguments", func(t *testing.T) {
		msg := &trading.SecurityMessage{}
		assert.Check(t, errors.Is(snapshot.ApplySecurity(nil, msg, boards, false), trading.ErrorInvalidArgument))
		assert.Check(t, errors.Is(snapshot.ApplySecurity(&snapshot.Security{}, nil, boards, false), trading.ErrorInvalidArgument))
		assert.Check(t, errors.Is(snapshot.ApplySecurity(&snapshot.Security{}, msg, nil, false), trading.ErrorInvalidArgument))
	})
}

func TestApplySecurityPriceStep(t *testing.T) {
	boards := &snapshot.Boards{}

	t.Run("decimals from price step", func(t *testing.T) {
		sec := &snapshot.Security{}
		err := snapshot.ApplySecurity(sec, &trading.SecurityMessage{PriceStep: decPtr("0.01")}, boards, false)
		assert.NilError(t, err)
		assert.Check(t, sec.PriceStep.Equal(dec("0.01")))
		assert.Equal(t, *sec.Decimals, 2)
	})

	t.Run("price step from decimals", func(t *testing.T) {
		sec := &snapshot.Security{}
		err := snapshot.ApplySecurity(sec, &trading.SecurityMessage{Decimals: intPtr(3)}, boards, false)
		assert.NilError(t, err)
		assert.Equal(t, *sec.Decimals, 3)
		assert.Check(t, sec.PriceStep.Equal(dec("0.001")))
	})

	t.Run("both given are stored verbatim", func(t *testing.T) {
		sec := &snapshot.Security{}
		msg := &trading.SecurityMessage{PriceStep: decPtr("0.05"), Decimals: intPtr(4)}
		err := snapshot.ApplySecurity(sec, msg, boards, false)
		assert.NilError(t, err)
		assert.Check(t, sec.PriceStep.Equal(dec("0.05")))
		assert.Equal(t, *sec.Decimals, 4)
	})

	t.Run("known decimals are not derived", func(t *testing.T) {
		sec := &snapshot.Security{Decimals: intPtr(0)}
		err := snapshot.ApplySecurity(sec, &trading.SecurityMessage{PriceStep: decPtr("0.5")}, boards, false)
		assert.NilError(t, err)
		assert.Check(t, sec.PriceStep.Equal(dec("0.5")))
		assert.Equal(t, *sec.Decimals, 0)
	})

	t.Run("decimals helpers", func(t *testing.T) {
		assert.Equal(t, snapshot.DecimalsOf(dec("1")), 0)
		assert.Equal(t, snapshot.DecimalsOf(dec("0.25")), 2)
		assert.Equal(t, snapshot.DecimalsOf(dec("-0.0001")), 4)
		assert.Equal(t, snapshot.DecimalsOf(dec("10")), 0)
		assert.Check(t, snapshot.PriceStepOf(0).Equal(dec("1")))
		assert.Check(t, snapshot.PriceStepOf(5).Equal(dec("0.00001")))
	})
}

func TestApplySecurityCfi(t *testing.T) {
	boards := &snapshot.Boards{}

	t.Run("option type from cfi", func(t *testing.T) {
		sec := &snapshot.Security{}
		err := snapshot.ApplySecurity(sec, &trading.SecurityMessage{CfiCode: "OPXXXX"}, boards, false)
		assert.NilError(t, err)
		assert.Equal(t, *sec.Type, trading.SecurityTypeOption)
		assert.Equal(t, *sec.OptionType, trading.OptionTypePut)
	})

	t.Run("explicit type wins over cfi", func(t *testing.T) {
		secType := trading.SecurityTypeIndex
		sec := &snapshot.Security{}
		msg := &trading.SecurityMessage{CfiCode: "ESXXXX", SecurityType: &secType}
		err := snapshot.ApplySecurity(sec, msg, boards, false)
		assert.NilError(t, err)
		assert.Equal(t, *sec.Type, trading.SecurityTypeIndex)
		assert.Equal(t, sec.CfiCode, "ESXXXX")
	})

	t.Run("unknown cfi leaves type empty", func(t *testing.T) {
		sec := &snapshot.Security{}
		err := snapshot.ApplySecurity(sec, &trading.SecurityMessage{CfiCode: "XXXXXX"}, boards, false)
		assert.NilError(t, err)
		assert.Check(t, sec.Type == nil)
	})
}
