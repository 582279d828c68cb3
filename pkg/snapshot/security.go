package snapshot

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.heather.loc/helios/venuelink/pkg/trading"
)

// QuoteChange is one side of the best quote
type QuoteChange struct {
	Price  decimal.Decimal `json:"price"`
	Volume decimal.Decimal `json:"volume"`
}

// Tick is the last trade of an instrument
type Tick struct {
	ID         int64           `json:"id,omitempty"`
	StringID   string          `json:"stringId,omitempty"`
	Price      decimal.Decimal `json:"price"`
	Volume     decimal.Decimal `json:"volume"`
	ServerTime time.Time       `json:"serverTime"`
	LocalTime  time.Time       `json:"localTime"`
	IsUpTick   *bool           `json:"isUpTick,omitempty"`
	OriginSide *trading.Side   `json:"originSide,omitempty"`
	IsSystem   *bool           `json:"isSystem,omitempty"`
}

type ExchangeBoard struct {
	Code     string `json:"code"`
	Exchange string `json:"exchange,omitempty"`
}

// BoardProvider resolves board codes, creating unknown boards on demand
type BoardProvider interface {
	GetOrCreateBoard(code string) *ExchangeBoard
}

// Boards is an in-memory BoardProvider
type Boards struct {
	boards sync.Map
}

func (b *Boards) GetOrCreateBoard(code string) *ExchangeBoard {
	board, _ := b.boards.LoadOrStore(code, &ExchangeBoard{Code: code})
	return board.(*ExchangeBoard)
}

// Security is the mutable snapshot of an instrument. Nil fields were never
// received. The caller excludes concurrent writers.
type Security struct {
	Code                        string                `json:"code"`
	Board                       *ExchangeBoard        `json:"board,omitempty"`
	Name                        string                `json:"name,omitempty"`
	ShortName                   string                `json:"shortName,omitempty"`
	Class                       string                `json:"class,omitempty"`
	CfiCode                     string                `json:"cfiCode,omitempty"`
	BinaryOptionType            string                `json:"binaryOptionType,omitempty"`
	UnderlyingSecurityID        string                `json:"underlyingSecurityId,omitempty"`
	ExternalID                  string                `json:"externalId,omitempty"`
	PrimaryID                   string                `json:"primaryId,omitempty"`
	BasketCode                  string                `json:"basketCode,omitempty"`
	BasketExpression            string                `json:"basketExpression,omitempty"`
	Type                        *trading.SecurityType `json:"type,omitempty"`
	OptionType                  *trading.OptionType   `json:"optionType,omitempty"`
	UnderlyingSecurityType      *trading.SecurityType `json:"underlyingSecurityType,omitempty"`
	Currency                    *string               `json:"currency,omitempty"`
	OptionStyle                 *string               `json:"optionStyle,omitempty"`
	SettlementType              *string               `json:"settlementType,omitempty"`
	ExpiryDate                  *time.Time            `json:"expiryDate,omitempty"`
	SettlementDate              *time.Time            `json:"settlementDate,omitempty"`
	IssueDate                   *time.Time            `json:"issueDate,omitempty"`
	Shortable                   *bool                 `json:"shortable,omitempty"`
	PriceStep                   *decimal.Decimal      `json:"priceStep,omitempty"`
	Decimals                    *int                  `json:"decimals,omitempty"`
	VolumeStep                  *decimal.Decimal      `json:"volumeStep,omitempty"`
	Multiplier                  *decimal.Decimal      `json:"multiplier,omitempty"`
	MinVolume                   *decimal.Decimal      `json:"minVolume,omitempty"`
	MaxVolume                   *decimal.Decimal      `json:"maxVolume,omitempty"`
	UnderlyingSecurityMinVolume *decimal.Decimal      `json:"underlyingSecurityMinVolume,omitempty"`
	Strike                      *decimal.Decimal      `json:"strike,omitempty"`
	IssueSize                   *decimal.Decimal      `json:"issueSize,omitempty"`
	FaceValue                   *decimal.Decimal      `json:"faceValue,omitempty"`

	OpenPrice            *decimal.Decimal       `json:"openPrice,omitempty"`
	HighPrice            *decimal.Decimal       `json:"highPrice,omitempty"`
	LowPrice             *decimal.Decimal       `json:"lowPrice,omitempty"`
	ClosePrice           *decimal.Decimal       `json:"closePrice,omitempty"`
	StepPrice            *decimal.Decimal       `json:"stepPrice,omitempty"`
	ImpliedVolatility    *decimal.Decimal       `json:"impliedVolatility,omitempty"`
	HistoricalVolatility *decimal.Decimal       `json:"historicalVolatility,omitempty"`
	TheorPrice           *decimal.Decimal       `json:"theorPrice,omitempty"`
	Delta                *decimal.Decimal       `json:"delta,omitempty"`
	Gamma                *decimal.Decimal       `json:"gamma,omitempty"`
	Vega                 *decimal.Decimal       `json:"vega,omitempty"`
	Theta                *decimal.Decimal       `json:"theta,omitempty"`
	Rho                  *decimal.Decimal       `json:"rho,omitempty"`
	MarginBuy            *decimal.Decimal       `json:"marginBuy,omitempty"`
	MarginSell           *decimal.Decimal       `json:"marginSell,omitempty"`
	OpenInterest         *decimal.Decimal       `json:"openInterest,omitempty"`
	MinPrice             *decimal.Decimal       `json:"minPrice,omitempty"`
	MaxPrice             *decimal.Decimal       `json:"maxPrice,omitempty"`
	BidsCount            *int                   `json:"bidsCount,omitempty"`
	BidsVolume           *decimal.Decimal       `json:"bidsVolume,omitempty"`
	AsksCount            *int                   `json:"asksCount,omitempty"`
	AsksVolume           *decimal.Decimal       `json:"asksVolume,omitempty"`
	State                *trading.SecurityState `json:"state,omitempty"`
	TradesCount          *int                   `json:"tradesCount,omitempty"`
	HighBidPrice         *decimal.Decimal       `json:"highBidPrice,omitempty"`
	LowAskPrice          *decimal.Decimal       `json:"lowAskPrice,omitempty"`
	Yield                *decimal.Decimal       `json:"yield,omitempty"`
	VWAP                 *decimal.Decimal       `json:"vwap,omitempty"`
	SettlementPrice      *decimal.Decimal       `json:"settlementPrice,omitempty"`
	AveragePrice         *decimal.Decimal       `json:"averagePrice,omitempty"`
	Volume               *decimal.Decimal       `json:"volume,omitempty"`
	Turnover             *decimal.Decimal       `json:"turnover,omitempty"`
	BuyBackPrice         *decimal.Decimal       `json:"buyBackPrice,omitempty"`
	BuyBackDate          *time.Time             `json:"buyBackDate,omitempty"`
	CommissionTaker      *decimal.Decimal       `json:"commissionTaker,omitempty"`
	CommissionMaker      *decimal.Decimal       `json:"commissionMaker,omitempty"`

	BestBid  *QuoteChange `json:"bestBid,omitempty"`
	BestAsk  *QuoteChange `json:"bestAsk,omitempty"`
	LastTick *Tick        `json:"lastTick,omitempty"`

	LocalTime      time.Time `json:"localTime"`
	LastChangeTime time.Time `json:"lastChangeTime"`
}

// ID is the code@board identifier of the security
func (s *Security) ID() trading.SecurityID {
	id := trading.SecurityID{Code: s.Code}
	if s.Board != nil {
		id.Board = s.Board.Code
	}
	return id
}
