package trading

import (
	"math"
	"strconv"
)

// PositionChangeType identifies one field of a position change
type PositionChangeType uint8

const (
	PositionBeginValue PositionChangeType = iota
	PositionCurrentValue
	PositionBlockedValue
	PositionCurrentPrice
	PositionAveragePrice
	PositionRealizedPnL
	PositionUnrealizedPnL
	PositionCommission
	PositionVariationMargin
	PositionCurrency
	PositionExpirationDate
	PositionSettlementPrice
	PositionLeverage
	PositionState
	PositionCommissionMaker
	PositionCommissionTaker
	PositionBuyOrdersCount
	PositionSellOrdersCount
	PositionBuyOrdersMargin
	PositionSellOrdersMargin
	PositionOrdersMargin
	PositionOrdersCount
	PositionTradesCount
	PositionLiquidationPrice

	positionChangeTypeCount
)

var positionChangeTypeMapping = [positionChangeTypeCount]string{
	PositionBeginValue:       "BeginValue",
	PositionCurrentValue:     "CurrentValue",
	PositionBlockedValue:     "BlockedValue",
	PositionCurrentPrice:     "CurrentPrice",
	PositionAveragePrice:     "AveragePrice",
	PositionRealizedPnL:      "RealizedPnL",
	PositionUnrealizedPnL:    "UnrealizedPnL",
	PositionCommission:       "Commission",
	PositionVariationMargin:  "VariationMargin",
	PositionCurrency:         "Currency",
	PositionExpirationDate:   "ExpirationDate",
	PositionSettlementPrice:  "SettlementPrice",
	PositionLeverage:         "Leverage",
	PositionState:            "State",
	PositionCommissionMaker:  "CommissionMaker",
	PositionCommissionTaker:  "CommissionTaker",
	PositionBuyOrdersCount:   "BuyOrdersCount",
	PositionSellOrdersCount:  "SellOrdersCount",
	PositionBuyOrdersMargin:  "BuyOrdersMargin",
	PositionSellOrdersMargin: "SellOrdersMargin",
	PositionOrdersMargin:     "OrdersMargin",
	PositionOrdersCount:      "OrdersCount",
	PositionTradesCount:      "TradesCount",
	PositionLiquidationPrice: "LiquidationPrice",
}

func (t PositionChangeType) String() string {
	if t < positionChangeTypeCount {
		return positionChangeTypeMapping[t]
	}
	return "PositionChangeType(" + strconv.Itoa(int(t)) + ")"
}

// PositionChangeTypes returns every known change type in declaration order
func PositionChangeTypes() []PositionChangeType {
	types := make([]PositionChangeType, 0, positionChangeTypeCount)
	for t := PositionChangeType(0); t < positionChangeTypeCount; t++ {
		types = append(types, t)
	}
	return types
}

func (t PositionChangeType) MarshalJSON() ([]byte, error) {
	if t < positionChangeTypeCount {
		return quoteName(positionChangeTypeMapping[t]), nil
	}
	return []byte(strconv.Itoa(int(t))), nil
}

func (t *PositionChangeType) UnmarshalJSON(data []byte) error {
	i, err := unmarshalName(data, positionChangeTypeMapping[:], math.MaxUint8+1, "position change type")
	if err != nil {
		return err
	}
	*t = PositionChangeType(i)
	return nil
}
