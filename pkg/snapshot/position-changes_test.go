package snapshot_test

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"gitlab.heather.loc/helios/venuelink/pkg/snapshot"
	"gitlab.heather.loc/helios/venuelink/pkg/trading"
	"gotest.tools/assert"
)

func TestApplyPositionChanges(t *testing.T) {
	secID := trading.SecurityID{Code: "SiU9", Board: "FORTS"}

	t.Run("values and stamps", func(t *testing.T) {
		portfolio := &snapshot.Portfolio{Name: "acc1"}
		position := portfolio.NewPosition(secID)

		msg := (&trading.PositionChangeMessage{SecurityID: secID, ServerTime: serverTime, LocalTime: localTime}).
			Add(trading.PositionCurrentValue, dec("10")).
			Add(trading.PositionAveragePrice, json.Number("64123.5")).
			Add(trading.PositionOrdersCount, 3).
			Add(trading.PositionCurrency, "RUB").
			Add(trading.PositionExpirationDate, serverTime)

		err := snapshot.ApplyPositionChanges(position, msg)
		assert.NilError(t, err)
		assert.Check(t, position.CurrentValue.Equal(dec("10")))
		assert.Check(t, position.AveragePrice.Equal(dec("64123.5")))
		assert.Equal(t, *position.OrdersCount, 3)
		assert.Equal(t, *position.Currency, "RUB")
		assert.Equal(t, *position.ExpirationDate, serverTime)
		assert.Equal(t, position.LocalTime, localTime)
		assert.Equal(t, position.LastChangeTime, serverTime)
	})

	t.Run("state goes to the portfolio", func(t *testing.T) {
		portfolio := &snapshot.Portfolio{Name: "acc1"}
		position := portfolio.NewPosition(secID)

		msg := (&trading.PositionChangeMessage{SecurityID: secID}).
			Add(trading.PositionState, trading.PortfolioStateBlocked).
			Add(trading.PositionCurrentValue, dec("1"))

		err := snapshot.ApplyPositionChanges(position, msg)
		assert.NilError(t, err)
		assert.Equal(t, *portfolio.State, trading.PortfolioStateBlocked)
		assert.Check(t, position.CurrentValue.Equal(dec("1")))
	})

	t.Run("state without portfolio is dropped", func(t *testing.T) {
		position := &snapshot.Position{SecurityID: secID}
		msg := (&trading.PositionChangeMessage{SecurityID: secID}).
			Add(trading.PositionState, "blocked").
			Add(trading.PositionLeverage, dec("5"))

		err := snapshot.ApplyPositionChanges(position, msg)
		assert.NilError(t, err)
		assert.Check(t, position.Leverage.Equal(dec("5")))
	})

	t.Run("unknown types are skipped", func(t *testing.T) {
		position := &snapshot.Position{SecurityID: secID}
		msg := (&trading.PositionChangeMessage{SecurityID: secID, ServerTime: serverTime}).
			Add(trading.PositionChangeType(200), "whatever").
			Add(trading.PositionRealizedPnL, dec("-3.5"))

		err := snapshot.ApplyPositionChanges(position, msg)
		assert.NilError(t, err)
		assert.Check(t, position.RealizedPnL.Equal(dec("-3.5")))
		assert.Equal(t, position.LastChangeTime, serverTime)
	})

	t.Run("invalid value", func(t *testing.T) {
		position := &snapshot.Position{SecurityID: secID}
		msg := (&trading.PositionChangeMessage{SecurityID: secID, ServerTime: serverTime}).
			Add(trading.PositionBeginValue, dec("1")).
			Add(trading.PositionTradesCount, "many").
			Add(trading.PositionCommission, dec("2"))

		err := snapshot.ApplyPositionChanges(position, msg)
		assert.Equal(t, trading.ErrorKindOf(err), trading.ErrorFieldApplyFailed)

		var fieldErr *snapshot.FieldError
		assert.Check(t, errors.As(err, &fieldErr))
		assert.Equal(t, fieldErr.Message, trading.MessageTypePositionChange)
		assert.Equal(t, fieldErr.Field, trading.PositionTradesCount.String())

		assert.Check(t, position.BeginValue.Equal(dec("1")))
		assert.Check(t, position.Commission == nil)
		assert.Check(t, position.LastChangeTime.IsZero())
	})

	t.Run("nil arguments", func(t *testing.T) {
		err := snapshot.ApplyPositionChanges(nil, &trading.PositionChangeMessage{})
		assert.Check(t, errors.Is(err, trading.ErrorInvalidArgument))
		err = snapshot.ApplyPositionChanges(&snapshot.Position{}, nil)
		assert.Check(t, errors.Is(err, trading.ErrorInvalidArgument))
	})
}

func TestApplyPortfolioChanges(t *testing.T) {
	boards := &snapshot.Boards{}
	portfolio := &snapshot.Portfolio{Name: "acc1"}

	msg := (&trading.PositionChangeMessage{
		PortfolioName: "acc1",
		BoardCode:     "FORTS",
		ClientCode:    "C-17",
		ServerTime:    serverTime,
		LocalTime:     localTime,
	}).
		Add(trading.PositionCurrentValue, dec("100000")).
		Add(trading.PositionState, 0)

	err := snapshot.ApplyPortfolioChanges(portfolio, msg, boards)
	assert.NilError(t, err)
	assert.Equal(t, portfolio.Board, boards.GetOrCreateBoard("FORTS"))
	assert.Equal(t, portfolio.ClientCode, "C-17")
	assert.Equal(t, *portfolio.State, trading.PortfolioStateActive)
	assert.Check(t, portfolio.CurrentValue.Equal(dec("100000")))
	assert.Equal(t, portfolio.LastChangeTime, serverTime)

	err = snapshot.ApplyPortfolioChanges(portfolio, msg, nil)
	assert.Check(t, errors.Is(err, trading.ErrorInvalidArgument))
}

func TestApplyPositionChangesEveryType(t *testing.T) {
	for _, changeType := range trading.PositionChangeTypes() {
		changeType := changeType
		t.Run(changeType.String(), func(t *testing.T) {
			portfolio := &snapshot.Portfolio{}
			position := portfolio.NewPosition(trading.SecurityID{Code: "AAPL", Board: "NASDAQ"})
			msg := (&trading.PositionChangeMessage{}).Add(changeType, json.Number("1"))
			assert.NilError(t, snapshot.ApplyPositionChanges(position, msg))
		})
	}
}
