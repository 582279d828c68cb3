package snapshot

import (
	"time"

	"github.com/shopspring/decimal"
	"gitlab.heather.loc/helios/venuelink/pkg/trading"
)

// Position is the mutable state of a holding in one security
type Position struct {
	SecurityID trading.SecurityID `json:"securityId"`
	Portfolio  *Portfolio         `json:"-"`

	BeginValue       *decimal.Decimal `json:"beginValue,omitempty"`
	CurrentValue     *decimal.Decimal `json:"currentValue,omitempty"`
	BlockedValue     *decimal.Decimal `json:"blockedValue,omitempty"`
	CurrentPrice     *decimal.Decimal `json:"currentPrice,omitempty"`
	AveragePrice     *decimal.Decimal `json:"averagePrice,omitempty"`
	RealizedPnL      *decimal.Decimal `json:"realizedPnL,omitempty"`
	UnrealizedPnL    *decimal.Decimal `json:"unrealizedPnL,omitempty"`
	Commission       *decimal.Decimal `json:"commission,omitempty"`
	CommissionMaker  *decimal.Decimal `json:"commissionMaker,omitempty"`
	CommissionTaker  *decimal.Decimal `json:"commissionTaker,omitempty"`
	VariationMargin  *decimal.Decimal `json:"variationMargin,omitempty"`
	SettlementPrice  *decimal.Decimal `json:"settlementPrice,omitempty"`
	Leverage         *decimal.Decimal `json:"leverage,omitempty"`
	LiquidationPrice *decimal.Decimal `json:"liquidationPrice,omitempty"`
	BuyOrdersMargin  *decimal.Decimal `json:"buyOrdersMargin,omitempty"`
	SellOrdersMargin *decimal.Decimal `json:"sellOrdersMargin,omitempty"`
	OrdersMargin     *decimal.Decimal `json:"ordersMargin,omitempty"`
	BuyOrdersCount   *int             `json:"buyOrdersCount,omitempty"`
	SellOrdersCount  *int             `json:"sellOrdersCount,omitempty"`
	OrdersCount      *int             `json:"ordersCount,omitempty"`
	TradesCount      *int             `json:"tradesCount,omitempty"`
	Currency         *string          `json:"currency,omitempty"`
	ExpirationDate   *time.Time       `json:"expirationDate,omitempty"`

	LocalTime      time.Time `json:"localTime"`
	LastChangeTime time.Time `json:"lastChangeTime"`
}

// Portfolio is the money position of an account. Account level state lives
// here and never on the positions of the account.
type Portfolio struct {
	Position

	Name       string                  `json:"name"`
	Board      *ExchangeBoard          `json:"board,omitempty"`
	ClientCode string                  `json:"clientCode,omitempty"`
	State      *trading.PortfolioState `json:"state,omitempty"`
}

// NewPosition creates a position of the portfolio
func (p *Portfolio) NewPosition(id trading.SecurityID) *Position {
	return &Position{SecurityID: id, Portfolio: p}
}
