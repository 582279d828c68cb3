package snapshot

import (
	"gitlab.heather.loc/helios/venuelink/pkg/trading"
)

// ApplyPositionChanges applies msg to position. The State change targets the
// owning portfolio and is dropped for a position without one. Unknown change
// types are skipped.
func ApplyPositionChanges(position *Position, msg *trading.PositionChangeMessage) error {
	if position == nil {
		return invalidArgument("position is nil")
	}
	if msg == nil {
		return invalidArgument("position change message is nil")
	}
	return applyPositionChanges(position, position.Portfolio, msg)
}

// ApplyPortfolioChanges applies msg to the portfolio money position,
// resolving its board through boards
func ApplyPortfolioChanges(portfolio *Portfolio, msg *trading.PositionChangeMessage, boards BoardProvider) error {
	if portfolio == nil {
		return invalidArgument("portfolio is nil")
	}
	if msg == nil {
		return invalidArgument("position change message is nil")
	}
	if boards == nil {
		return invalidArgument("board provider is nil")
	}

	if msg.BoardCode != "" {
		portfolio.Board = boards.GetOrCreateBoard(msg.BoardCode)
	}
	if msg.ClientCode != "" {
		portfolio.ClientCode = msg.ClientCode
	}
	return applyPositionChanges(&portfolio.Position, portfolio, msg)
}

func applyPositionChanges(position *Position, owner *Portfolio, msg *trading.PositionChangeMessage) error {
	for _, change := range msg.Changes {
		if err := applyPositionChange(position, owner, change); err != nil {
			return newFieldError(trading.MessageTypePositionChange, change.Type.String(), err)
		}
	}

	position.LocalTime = msg.LocalTime
	position.LastChangeTime = msg.ServerTime
	return nil
}

func applyPositionChange(position *Position, owner *Portfolio, change trading.PositionChange) error {
	value := change.Value
	switch change.Type {
	case trading.PositionBeginValue:
		return setDecimal(&position.BeginValue, value)
	case trading.PositionCurrentValue:
		return setDecimal(&position.CurrentValue, value)
	case trading.PositionBlockedValue:
		return setDecimal(&position.BlockedValue, value)
	case trading.PositionCurrentPrice:
		return setDecimal(&position.CurrentPrice, value)
	case trading.PositionAveragePrice:
		return setDecimal(&position.AveragePrice, value)
	case trading.PositionRealizedPnL:
		return setDecimal(&position.RealizedPnL, value)
	case trading.PositionUnrealizedPnL:
		return setDecimal(&position.UnrealizedPnL, value)
	case trading.PositionCommission:
		return setDecimal(&position.Commission, value)
	case trading.PositionVariationMargin:
		return setDecimal(&position.VariationMargin, value)
	case trading.PositionCurrency:
		return setString(&position.Currency, value)
	case trading.PositionExpirationDate:
		return setTime(&position.ExpirationDate, value)
	case trading.PositionSettlementPrice:
		return setDecimal(&position.SettlementPrice, value)
	case trading.PositionLeverage:
		return setDecimal(&position.Leverage, value)
	case trading.PositionState:
		state, err := toPortfolioState(value)
		if err != nil {
			return err
		}
		if owner != nil {
			owner.State = &state
		}
	case trading.PositionCommissionMaker:
		return setDecimal(&position.CommissionMaker, value)
	case trading.PositionCommissionTaker:
		return setDecimal(&position.CommissionTaker, value)
	case trading.PositionBuyOrdersCount:
		return setInt(&position.BuyOrdersCount, value)
	case trading.PositionSellOrdersCount:
		return setInt(&position.SellOrdersCount, value)
	case trading.PositionBuyOrdersMargin:
		return setDecimal(&position.BuyOrdersMargin, value)
	case trading.PositionSellOrdersMargin:
		return setDecimal(&position.SellOrdersMargin, value)
	case trading.PositionOrdersMargin:
		return setDecimal(&position.OrdersMargin, value)
	case trading.PositionOrdersCount:
		return setInt(&position.OrdersCount, value)
	case trading.PositionTradesCount:
		return setInt(&position.TradesCount, value)
	case trading.PositionLiquidationPrice:
		return setDecimal(&position.LiquidationPrice, value)
	}
	return nil
}
