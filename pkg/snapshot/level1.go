package snapshot

import (
	"time"

	"gitlab.heather.loc/helios/venuelink/pkg/trading"
)

// Changed reports which composite parts of a security a batch replaced
type Changed uint8

const (
	ChangedBestBid Changed = 1 << iota
	ChangedBestAsk
	ChangedLastTick
)

func (c Changed) Has(flag Changed) bool {
	return c&flag == flag
}

// FallbackHandler receives changes without a security property
type FallbackHandler func(sec *Security, field trading.Level1Field, value interface{})

// level1Batch holds the composite builders of one batch
type level1Batch struct {
	bestBid     QuoteChange
	bestAsk     QuoteChange
	lastTick    Tick
	bidChanged  bool
	askChanged  bool
	tickChanged bool
}

func newLevel1Batch(sec *Security) *level1Batch {
	b := &level1Batch{}
	if sec.BestBid != nil {
		b.bestBid = *sec.BestBid
	}
	if sec.BestAsk != nil {
		b.bestAsk = *sec.BestAsk
	}
	if sec.LastTick != nil {
		b.lastTick.Price = sec.LastTick.Price
		b.lastTick.Volume = sec.LastTick.Volume
	}
	return b
}

// ApplyLevel1 applies changes in order. Best quotes and the last tick are
// replaced only when one of their parts arrived. The first failing change
// stops the batch with a *FieldError, changes applied before it stay while
// composites and timestamps are not committed.
func ApplyLevel1(sec *Security, changes []trading.Level1Change, serverTime, localTime time.Time, fallback FallbackHandler) (Changed, error) {
	if sec == nil {
		return 0, invalidArgument("security is nil")
	}

	batch := newLevel1Batch(sec)
	for _, change := range changes {
		handled, err := batch.apply(sec, change.Field, change.Value)
		if err != nil {
			return 0, newFieldError(trading.MessageTypeLevel1Change, change.Field.String(), err)
		}
		if !handled && fallback != nil {
			fallback(sec, change.Field, change.Value)
		}
	}

	var changed Changed
	if batch.bidChanged {
		bid := batch.bestBid
		sec.BestBid = &bid
		changed |= ChangedBestBid
	}
	if batch.askChanged {
		ask := batch.bestAsk
		sec.BestAsk = &ask
		changed |= ChangedBestAsk
	}
	if batch.tickChanged {
		tick := batch.lastTick
		if tick.ServerTime.IsZero() {
			tick.ServerTime = serverTime
		}
		tick.LocalTime = localTime
		sec.LastTick = &tick
		changed |= ChangedLastTick
	}

	sec.LocalTime = localTime
	sec.LastChangeTime = serverTime
	return changed, nil
}

// ApplyLevel1Message applies msg with its own timestamps and no fallback
func ApplyLevel1Message(sec *Security, msg *trading.Level1ChangeMessage) (Changed, error) {
	if msg == nil {
		return 0, invalidArgument("level1 message is nil")
	}
	return ApplyLevel1(sec, msg.Changes, msg.ServerTime, msg.LocalTime, nil)
}

// apply reports false for fields without a security property
func (b *level1Batch) apply(sec *Security, field trading.Level1Field, value interface{}) (bool, error) {
	var err error
	switch field {
	case trading.Level1OpenPrice:
		err = setDecimal(&sec.OpenPrice, value)
	case trading.Level1HighPrice:
		err = setDecimal(&sec.HighPrice, value)
	case trading.Level1LowPrice:
		err = setDecimal(&sec.LowPrice, value)
	case trading.Level1ClosePrice:
		err = setDecimal(&sec.ClosePrice, value)
	case trading.Level1StepPrice:
		err = setDecimal(&sec.StepPrice, value)
	case trading.Level1PriceStep:
		err = setDecimal(&sec.PriceStep, value)
	case trading.Level1Decimals:
		err = setInt(&sec.Decimals, value)
	case trading.Level1VolumeStep:
		err = setDecimal(&sec.VolumeStep, value)
	case trading.Level1Multiplier:
		err = setDecimal(&sec.Multiplier, value)

	case trading.Level1BestBidPrice:
		if b.bestBid.Price, err = toDecimal(value); err == nil {
			b.bidChanged = true
		}
	case trading.Level1BestBidVolume:
		if b.bestBid.Volume, err = toDecimal(value); err == nil {
			b.bidChanged = true
		}
	case trading.Level1BestAskPrice:
		if b.bestAsk.Price, err = toDecimal(value); err == nil {
			b.askChanged = true
		}
	case trading.Level1BestAskVolume:
		if b.bestAsk.Volume, err = toDecimal(value); err == nil {
			b.askChanged = true
		}

	case trading.Level1ImpliedVolatility:
		err = setDecimal(&sec.ImpliedVolatility, value)
	case trading.Level1HistoricalVolatility:
		err = setDecimal(&sec.HistoricalVolatility, value)
	case trading.Level1TheorPrice:
		err = setDecimal(&sec.TheorPrice, value)
	case trading.Level1Delta:
		err = setDecimal(&sec.Delta, value)
	case trading.Level1Gamma:
		err = setDecimal(&sec.Gamma, value)
	case trading.Level1Vega:
		err = setDecimal(&sec.Vega, value)
	case trading.Level1Theta:
		err = setDecimal(&sec.Theta, value)
	case trading.Level1Rho:
		err = setDecimal(&sec.Rho, value)
	case trading.Level1MarginBuy:
		err = setDecimal(&sec.MarginBuy, value)
	case trading.Level1MarginSell:
		err = setDecimal(&sec.MarginSell, value)
	case trading.Level1OpenInterest:
		err = setDecimal(&sec.OpenInterest, value)
	case trading.Level1MinPrice:
		err = setDecimal(&sec.MinPrice, value)
	case trading.Level1MaxPrice:
		err = setDecimal(&sec.MaxPrice, value)
	case trading.Level1BidsCount:
		err = setInt(&sec.BidsCount, value)
	case trading.Level1BidsVolume:
		err = setDecimal(&sec.BidsVolume, value)
	case trading.Level1AsksCount:
		err = setInt(&sec.AsksCount, value)
	case trading.Level1AsksVolume:
		err = setDecimal(&sec.AsksVolume, value)
	case trading.Level1State:
		var state trading.SecurityState
		if state, err = toSecurityState(value); err == nil {
			sec.State = &state
		}

	case trading.Level1LastTradePrice:
		if b.lastTick.Price, err = toDecimal(value); err == nil {
			b.tickChanged = true
		}
	case trading.Level1LastTradeVolume:
		if b.lastTick.Volume, err = toDecimal(value); err == nil {
			b.tickChanged = true
		}
	case trading.Level1LastTradeID:
		if b.lastTick.ID, err = toInt64(value); err == nil {
			b.tickChanged = true
		}
	case trading.Level1LastTradeStringID:
		if b.lastTick.StringID, err = toString(value); err == nil {
			b.tickChanged = true
		}
	case trading.Level1LastTradeTime:
		if b.lastTick.ServerTime, err = toTime(value); err == nil {
			b.tickChanged = true
		}
	case trading.Level1LastTradeUpDown:
		var upTick bool
		if upTick, err = toBool(value); err == nil {
			b.lastTick.IsUpTick = &upTick
			b.tickChanged = true
		}
	case trading.Level1LastTradeOrigin:
		var side trading.Side
		if side, err = toSide(value); err == nil {
			b.lastTick.OriginSide = &side
			b.tickChanged = true
		}
	case trading.Level1IsSystem:
		var isSystem bool
		if isSystem, err = toBool(value); err == nil {
			b.lastTick.IsSystem = &isSystem
			b.tickChanged = true
		}

	case trading.Level1TradesCount:
		err = setInt(&sec.TradesCount, value)
	case trading.Level1HighBidPrice:
		err = setDecimal(&sec.HighBidPrice, value)
	case trading.Level1LowAskPrice:
		err = setDecimal(&sec.LowAskPrice, value)
	case trading.Level1Yield:
		err = setDecimal(&sec.Yield, value)
	case trading.Level1VWAP:
		err = setDecimal(&sec.VWAP, value)
	case trading.Level1SettlementPrice:
		err = setDecimal(&sec.SettlementPrice, value)
	case trading.Level1AveragePrice:
		err = setDecimal(&sec.AveragePrice, value)
	case trading.Level1Volume:
		err = setDecimal(&sec.Volume, value)
	case trading.Level1Turnover:
		err = setDecimal(&sec.Turnover, value)
	case trading.Level1BuyBackPrice:
		err = setDecimal(&sec.BuyBackPrice, value)
	case trading.Level1BuyBackDate:
		err = setTime(&sec.BuyBackDate, value)
	case trading.Level1CommissionTaker:
		err = setDecimal(&sec.CommissionTaker, value)
	case trading.Level1CommissionMaker:
		err = setDecimal(&sec.CommissionMaker, value)
	case trading.Level1MinVolume:
		err = setDecimal(&sec.MinVolume, value)
	case trading.Level1MaxVolume:
		err = setDecimal(&sec.MaxVolume, value)
	case trading.Level1UnderlyingMinVolume:
		err = setDecimal(&sec.UnderlyingSecurityMinVolume, value)
	case trading.Level1IssueSize:
		err = setDecimal(&sec.IssueSize, value)

	default:
		return false, nil
	}
	return true, err
}
