package trading

import (
	"time"

	"github.com/shopspring/decimal"
)

// Message is any message exchanged with an adapter
type Message interface {
	Type() MessageType
}

// TransactionIDMessage is a request correlated with its responses by transaction id
type TransactionIDMessage interface {
	Message
	GetTransactionID() uint64
	SetTransactionID(id uint64)
}

// OriginalTransactionIDMessage is a response fragment of some request
type OriginalTransactionIDMessage interface {
	Message
	GetOriginalTransactionID() uint64
}

// ErrorCarrier is a message which may carry a structured error
type ErrorCarrier interface {
	Message
	GetError() error
}

// SecurityIDMessage is a message addressing a security
type SecurityIDMessage interface {
	Message
	GetSecurityID() SecurityID
	SetSecurityID(id SecurityID)
}

type SecurityID struct {
	Code   string `json:"code"`
	Board  string `json:"board"`
	Native string `json:"native,omitempty"`
}

func (id SecurityID) IsEmpty() bool {
	return id == SecurityID{}
}

func (id SecurityID) String() string {
	return id.Code + "@" + id.Board
}

type ConnectMessage struct {
	Error error `json:"-"`
}

func (m *ConnectMessage) Type() MessageType { return MessageTypeConnect }
func (m *ConnectMessage) GetError() error   { return m.Error }

type DisconnectMessage struct {
	Error error `json:"-"`
}

func (m *DisconnectMessage) Type() MessageType { return MessageTypeDisconnect }
func (m *DisconnectMessage) GetError() error   { return m.Error }

// MarketDataMessage requests historical or live market data
type MarketDataMessage struct {
	TransactionID uint64        `json:"transactionId"`
	SecurityID    SecurityID    `json:"securityId"`
	DataType      DataType      `json:"dataType"`
	IsSubscribe   bool          `json:"isSubscribe"`
	From          time.Time     `json:"from"`
	To            time.Time     `json:"to"`
	Count         *int64        `json:"count,omitempty"`
	Fields        []Level1Field `json:"fields,omitempty"`
	TimeFrame     time.Duration `json:"timeFrame,omitempty"`
	BuildField    *Level1Field  `json:"buildField,omitempty"`
	SecurityType  *SecurityType `json:"securityType,omitempty"`
}

func (m *MarketDataMessage) Type() MessageType           { return MessageTypeMarketData }
func (m *MarketDataMessage) GetTransactionID() uint64    { return m.TransactionID }
func (m *MarketDataMessage) SetTransactionID(id uint64)  { m.TransactionID = id }
func (m *MarketDataMessage) GetSecurityID() SecurityID   { return m.SecurityID }
func (m *MarketDataMessage) SetSecurityID(id SecurityID) { m.SecurityID = id }

type SecurityLookupMessage struct {
	TransactionID uint64        `json:"transactionId"`
	SecurityID    SecurityID    `json:"securityId"`
	Name          string        `json:"name,omitempty"`
	SecurityType  *SecurityType `json:"securityType,omitempty"`
}

func (m *SecurityLookupMessage) Type() MessageType           { return MessageTypeSecurityLookup }
func (m *SecurityLookupMessage) GetTransactionID() uint64    { return m.TransactionID }
func (m *SecurityLookupMessage) SetTransactionID(id uint64)  { m.TransactionID = id }
func (m *SecurityLookupMessage) GetSecurityID() SecurityID   { return m.SecurityID }
func (m *SecurityLookupMessage) SetSecurityID(id SecurityID) { m.SecurityID = id }

// Level1Change is one (field, value) pair. Value is kept dynamically typed,
// the merge engine converts it to the field type.
type Level1Change struct {
	Field Level1Field `json:"field"`
	Value interface{} `json:"value"`
}

type Level1ChangeMessage struct {
	OriginalTransactionID uint64         `json:"originalTransactionId"`
	SecurityID            SecurityID     `json:"securityId"`
	ServerTime            time.Time      `json:"serverTime"`
	LocalTime             time.Time      `json:"localTime"`
	Changes               []Level1Change `json:"changes"`
}

func (m *Level1ChangeMessage) Type() MessageType                { return MessageTypeLevel1Change }
func (m *Level1ChangeMessage) GetOriginalTransactionID() uint64 { return m.OriginalTransactionID }

// Add appends a change and returns the message for chaining
func (m *Level1ChangeMessage) Add(field Level1Field, value interface{}) *Level1ChangeMessage {
	m.Changes = append(m.Changes, Level1Change{Field: field, Value: value})
	return m
}

// ExecutionMessage is a tick trade or an order log row
type ExecutionMessage struct {
	OriginalTransactionID uint64           `json:"originalTransactionId"`
	SecurityID            SecurityID       `json:"securityId"`
	DataType              DataType         `json:"dataType"`
	ServerTime            time.Time        `json:"serverTime"`
	LocalTime             time.Time        `json:"localTime"`
	TradeID               int64            `json:"tradeId,omitempty"`
	TradeStringID         string           `json:"tradeStringId,omitempty"`
	TradePrice            *decimal.Decimal `json:"tradePrice,omitempty"`
	TradeVolume           *decimal.Decimal `json:"tradeVolume,omitempty"`
	IsUpTick              *bool            `json:"isUpTick,omitempty"`
	OriginSide            *Side            `json:"originSide,omitempty"`
	IsSystem              *bool            `json:"isSystem,omitempty"`
}

func (m *ExecutionMessage) Type() MessageType                { return MessageTypeExecution }
func (m *ExecutionMessage) GetOriginalTransactionID() uint64 { return m.OriginalTransactionID }

// SecurityMessage describes an instrument. Nil and empty fields are absent.
type SecurityMessage struct {
	OriginalTransactionID       uint64           `json:"originalTransactionId"`
	SecurityID                  SecurityID       `json:"securityId"`
	ExternalID                  string           `json:"externalId,omitempty"`
	PrimaryID                   SecurityID       `json:"primaryId,omitempty"`
	Name                        string           `json:"name,omitempty"`
	ShortName                   string           `json:"shortName,omitempty"`
	Class                       string           `json:"class,omitempty"`
	CfiCode                     string           `json:"cfiCode,omitempty"`
	BinaryOptionType            string           `json:"binaryOptionType,omitempty"`
	UnderlyingSecurityCode      string           `json:"underlyingSecurityCode,omitempty"`
	BasketCode                  string           `json:"basketCode,omitempty"`
	BasketExpression            string           `json:"basketExpression,omitempty"`
	Currency                    *string          `json:"currency,omitempty"`
	OptionStyle                 *string          `json:"optionStyle,omitempty"`
	SettlementType              *string          `json:"settlementType,omitempty"`
	ExpiryDate                  *time.Time       `json:"expiryDate,omitempty"`
	SettlementDate              *time.Time       `json:"settlementDate,omitempty"`
	IssueDate                   *time.Time       `json:"issueDate,omitempty"`
	VolumeStep                  *decimal.Decimal `json:"volumeStep,omitempty"`
	MinVolume                   *decimal.Decimal `json:"minVolume,omitempty"`
	MaxVolume                   *decimal.Decimal `json:"maxVolume,omitempty"`
	Multiplier                  *decimal.Decimal `json:"multiplier,omitempty"`
	PriceStep                   *decimal.Decimal `json:"priceStep,omitempty"`
	Decimals                    *int             `json:"decimals,omitempty"`
	Strike                      *decimal.Decimal `json:"strike,omitempty"`
	IssueSize                   *decimal.Decimal `json:"issueSize,omitempty"`
	FaceValue                   *decimal.Decimal `json:"faceValue,omitempty"`
	UnderlyingSecurityMinVolume *decimal.Decimal `json:"underlyingSecurityMinVolume,omitempty"`
	OptionType                  *OptionType      `json:"optionType,omitempty"`
	SecurityType                *SecurityType    `json:"securityType,omitempty"`
	UnderlyingSecurityType      *SecurityType    `json:"underlyingSecurityType,omitempty"`
	Shortable                   *bool            `json:"shortable,omitempty"`
}

func (m *SecurityMessage) Type() MessageType                { return MessageTypeSecurity }
func (m *SecurityMessage) GetOriginalTransactionID() uint64 { return m.OriginalTransactionID }

type CandleMessage struct {
	OriginalTransactionID uint64          `json:"originalTransactionId"`
	SecurityID            SecurityID      `json:"securityId"`
	TimeFrame             time.Duration   `json:"timeFrame"`
	OpenTime              time.Time       `json:"openTime"`
	OpenPrice             decimal.Decimal `json:"openPrice"`
	HighPrice             decimal.Decimal `json:"highPrice"`
	LowPrice              decimal.Decimal `json:"lowPrice"`
	ClosePrice            decimal.Decimal `json:"closePrice"`
	TotalVolume           decimal.Decimal `json:"totalVolume"`
}

func (m *CandleMessage) Type() MessageType                { return MessageTypeCandle }
func (m *CandleMessage) GetOriginalTransactionID() uint64 { return m.OriginalTransactionID }

type PositionChange struct {
	Type  PositionChangeType `json:"type"`
	Value interface{}        `json:"value"`
}

type PositionChangeMessage struct {
	OriginalTransactionID uint64           `json:"originalTransactionId"`
	SecurityID            SecurityID       `json:"securityId"`
	PortfolioName         string           `json:"portfolioName"`
	BoardCode             string           `json:"boardCode,omitempty"`
	ClientCode            string           `json:"clientCode,omitempty"`
	ServerTime            time.Time        `json:"serverTime"`
	LocalTime             time.Time        `json:"localTime"`
	Changes               []PositionChange `json:"changes"`
}

func (m *PositionChangeMessage) Type() MessageType                { return MessageTypePositionChange }
func (m *PositionChangeMessage) GetOriginalTransactionID() uint64 { return m.OriginalTransactionID }

// Add appends a change and returns the message for chaining
func (m *PositionChangeMessage) Add(t PositionChangeType, value interface{}) *PositionChangeMessage {
	m.Changes = append(m.Changes, PositionChange{Type: t, Value: value})
	return m
}

// SubscriptionResponseMessage acknowledges or rejects a request
type SubscriptionResponseMessage struct {
	OriginalTransactionID uint64 `json:"originalTransactionId"`
	Error                 error  `json:"-"`
}

func (m *SubscriptionResponseMessage) Type() MessageType                { return MessageTypeSubscriptionResponse }
func (m *SubscriptionResponseMessage) GetOriginalTransactionID() uint64 { return m.OriginalTransactionID }
func (m *SubscriptionResponseMessage) GetError() error                  { return m.Error }

// SubscriptionFinishedMessage marks the last fragment of a request
type SubscriptionFinishedMessage struct {
	OriginalTransactionID uint64 `json:"originalTransactionId"`
}

func (m *SubscriptionFinishedMessage) Type() MessageType                { return MessageTypeSubscriptionFinished }
func (m *SubscriptionFinishedMessage) GetOriginalTransactionID() uint64 { return m.OriginalTransactionID }

type ErrorMessage struct {
	OriginalTransactionID uint64 `json:"originalTransactionId"`
	Error                 error  `json:"-"`
}

func (m *ErrorMessage) Type() MessageType                { return MessageTypeError }
func (m *ErrorMessage) GetOriginalTransactionID() uint64 { return m.OriginalTransactionID }
func (m *ErrorMessage) GetError() error                  { return m.Error }
