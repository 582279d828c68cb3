package trading

import (
	"math"
	"strconv"
)

// Level1Field identifies one field of a level1 (best quotes and statistics) change
type Level1Field uint8

const (
	Level1OpenPrice Level1Field = iota
	Level1HighPrice
	Level1LowPrice
	Level1ClosePrice
	Level1StepPrice
	Level1PriceStep
	Level1Decimals
	Level1VolumeStep
	Level1Multiplier
	Level1BestBidPrice
	Level1BestBidVolume
	Level1BestAskPrice
	Level1BestAskVolume
	Level1ImpliedVolatility
	Level1HistoricalVolatility
	Level1TheorPrice
	Level1Delta
	Level1Gamma
	Level1Vega
	Level1Theta
	Level1Rho
	Level1MarginBuy
	Level1MarginSell
	Level1OpenInterest
	Level1MinPrice
	Level1MaxPrice
	Level1BidsCount
	Level1BidsVolume
	Level1AsksCount
	Level1AsksVolume
	Level1State
	Level1LastTradePrice
	Level1LastTradeVolume
	Level1LastTradeID
	Level1LastTradeStringID
	Level1LastTradeTime
	Level1LastTradeUpDown
	Level1LastTradeOrigin
	Level1IsSystem
	Level1TradesCount
	Level1HighBidPrice
	Level1LowAskPrice
	Level1Yield
	Level1VWAP
	Level1SettlementPrice
	Level1AveragePrice
	Level1Volume
	Level1Turnover
	Level1BuyBackPrice
	Level1BuyBackDate
	Level1CommissionTaker
	Level1CommissionMaker
	Level1MinVolume
	Level1MaxVolume
	Level1UnderlyingMinVolume
	Level1IssueSize

	// fields without a snapshot property, handed to the caller's fallback
	Level1BestBidTime
	Level1BestAskTime
	Level1PriceChange
	Level1Beta
	Level1AverageTrueRange
	Level1Duration

	level1FieldCount
)

var level1FieldMapping = [level1FieldCount]string{
	Level1OpenPrice:            "OpenPrice",
	Level1HighPrice:            "HighPrice",
	Level1LowPrice:             "LowPrice",
	Level1ClosePrice:           "ClosePrice",
	Level1StepPrice:            "StepPrice",
	Level1PriceStep:            "PriceStep",
	Level1Decimals:             "Decimals",
	Level1VolumeStep:           "VolumeStep",
	Level1Multiplier:           "Multiplier",
	Level1BestBidPrice:         "BestBidPrice",
	Level1BestBidVolume:        "BestBidVolume",
	Level1BestAskPrice:         "BestAskPrice",
	Level1BestAskVolume:        "BestAskVolume",
	Level1ImpliedVolatility:    "ImpliedVolatility",
	Level1HistoricalVolatility: "HistoricalVolatility",
	Level1TheorPrice:           "TheorPrice",
	Level1Delta:                "Delta",
	Level1Gamma:                "Gamma",
	Level1Vega:                 "Vega",
	Level1Theta:                "Theta",
	Level1Rho:                  "Rho",
	Level1MarginBuy:            "MarginBuy",
	Level1MarginSell:           "MarginSell",
	Level1OpenInterest:         "OpenInterest",
	Level1MinPrice:             "MinPrice",
	Level1MaxPrice:             "MaxPrice",
	Level1BidsCount:            "BidsCount",
	Level1BidsVolume:           "BidsVolume",
	Level1AsksCount:            "AsksCount",
	Level1AsksVolume:           "AsksVolume",
	Level1State:                "State",
	Level1LastTradePrice:       "LastTradePrice",
	Level1LastTradeVolume:      "LastTradeVolume",
	Level1LastTradeID:          "LastTradeId",
	Level1LastTradeStringID:    "LastTradeStringId",
	Level1LastTradeTime:        "LastTradeTime",
	Level1LastTradeUpDown:      "LastTradeUpDown",
	Level1LastTradeOrigin:      "LastTradeOrigin",
	Level1IsSystem:             "IsSystem",
	Level1TradesCount:          "TradesCount",
	Level1HighBidPrice:         "HighBidPrice",
	Level1LowAskPrice:          "LowAskPrice",
	Level1Yield:                "Yield",
	Level1VWAP:                 "VWAP",
	Level1SettlementPrice:      "SettlementPrice",
	Level1AveragePrice:         "AveragePrice",
	Level1Volume:               "Volume",
	Level1Turnover:             "Turnover",
	Level1BuyBackPrice:         "BuyBackPrice",
	Level1BuyBackDate:          "BuyBackDate",
	Level1CommissionTaker:      "CommissionTaker",
	Level1CommissionMaker:      "CommissionMaker",
	Level1MinVolume:            "MinVolume",
	Level1MaxVolume:            "MaxVolume",
	Level1UnderlyingMinVolume:  "UnderlyingMinVolume",
	Level1IssueSize:            "IssueSize",
	Level1BestBidTime:          "BestBidTime",
	Level1BestAskTime:          "BestAskTime",
	Level1PriceChange:          "Change",
	Level1Beta:                 "Beta",
	Level1AverageTrueRange:     "AverageTrueRange",
	Level1Duration:             "Duration",
}

// String never panics: venues may send fields newer than this enumeration
func (f Level1Field) String() string {
	if f < level1FieldCount {
		return level1FieldMapping[f]
	}
	return "Level1Field(" + strconv.Itoa(int(f)) + ")"
}

// Level1Fields returns every known field in declaration order
func Level1Fields() []Level1Field {
	fields := make([]Level1Field, 0, level1FieldCount)
	for f := Level1Field(0); f < level1FieldCount; f++ {
		fields = append(fields, f)
	}
	return fields
}

// MarshalJSON keeps fields unknown to this enumeration as numbers
func (f Level1Field) MarshalJSON() ([]byte, error) {
	if f < level1FieldCount {
		return quoteName(level1FieldMapping[f]), nil
	}
	return []byte(strconv.Itoa(int(f))), nil
}

func (f *Level1Field) UnmarshalJSON(data []byte) error {
	i, err := unmarshalName(data, level1FieldMapping[:], math.MaxUint8+1, "level1 field")
	if err != nil {
		return err
	}
	*f = Level1Field(i)
	return nil
}

func Level1FieldStrToType(value string) (Level1Field, error) {
	i, err := nameIndex(value, level1FieldMapping[:], "level1 field")
	return Level1Field(i), err
}
