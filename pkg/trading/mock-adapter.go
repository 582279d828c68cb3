package trading

import (
	"sync"
	"time"

	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MockReply builds the messages the mock venue answers request with
type MockReply func(request Message) []Message

type mockConnectMode uint32

const (
	mockConnectSilent mockConnectMode = iota
	mockConnectAccept
	mockConnectReject
)

// MockAdapter is an in-process venue. Replies come from one-shot
// expectations first, then from persistent handlers, and are delivered on a
// single goroutine like a real gate.
type MockAdapter struct {
	logger      *zap.Logger
	name        string
	hub         messageHub
	settings    ConnectionSettings
	generator   IDGenerator
	native      bool
	storageName string
	storage     NativeIDStorage

	connectMode  uint32
	connectError error

	expectationMx sync.Mutex
	expectations  map[MessageType][]MockReply
	handlers      map[MessageType]MockReply
	rejected      map[MessageType]bool

	sentMx sync.Mutex
	sent   []Message

	queue chan Message
}

func (m *MockAdapter) Name() string {
	return m.name
}

func (m *MockAdapter) Subscribe(handler MessageHandler) func() {
	return m.hub.subscribe(handler)
}

func (m *MockAdapter) ConnectionSettings() ConnectionSettings {
	return m.settings
}

func (m *MockAdapter) SetConnectionSettings(settings ConnectionSettings) {
	m.settings = settings
}

func (m *MockAdapter) TransactionIDGenerator() IDGenerator {
	return m.generator
}

func (m *MockAdapter) IsNativeIdentifiers() bool {
	return m.native
}

func (m *MockAdapter) StorageName() string {
	return m.storageName
}

func (m *MockAdapter) NativeIDStorage() NativeIDStorage {
	return m.storage
}

// SetNativeIdentifiers switches the adapter to venue ids translated through
// storage, call it before the first session
func (m *MockAdapter) SetNativeIdentifiers(storageName string, storage NativeIDStorage) {
	m.native = true
	m.storageName = storageName
	m.storage = storage
}

// AcceptConnect answers every connect request with success
func (m *MockAdapter) AcceptConnect() {
	atomic.StoreUint32(&m.connectMode, uint32(mockConnectAccept))
}

// RejectConnect answers every connect request with err
func (m *MockAdapter) RejectConnect(err error) {
	m.expectationMx.Lock()
	m.connectError = err
	m.expectationMx.Unlock()
	atomic.StoreUint32(&m.connectMode, uint32(mockConnectReject))
}

// SilenceConnect leaves connect requests unanswered
func (m *MockAdapter) SilenceConnect() {
	atomic.StoreUint32(&m.connectMode, uint32(mockConnectSilent))
}

// Expect adds a one-shot reply for the next request of messageType
func (m *MockAdapter) Expect(messageType MessageType, reply MockReply) {
	m.expectationMx.Lock()
	defer m.expectationMx.Unlock()
	m.expectations[messageType] = append(m.expectations[messageType], reply)
}

// Handle installs a persistent reply for every request of messageType
func (m *MockAdapter) Handle(messageType MessageType, reply MockReply) {
	m.expectationMx.Lock()
	defer m.expectationMx.Unlock()
	m.handlers[messageType] = reply
}

// RejectSend makes SendInMessage refuse messages of messageType
func (m *MockAdapter) RejectSend(messageType MessageType) {
	m.expectationMx.Lock()
	defer m.expectationMx.Unlock()
	m.rejected[messageType] = true
}

func (m *MockAdapter) isEmptyExpectations() bool {
	m.expectationMx.Lock()
	defer m.expectationMx.Unlock()
	return len(m.expectations) == 0
}

func (m *MockAdapter) popReply(messageType MessageType) (MockReply, bool) {
	m.expectationMx.Lock()
	defer m.expectationMx.Unlock()
	if list := m.expectations[messageType]; len(list) > 0 {
		m.expectations[messageType] = list[1:]
		if len(m.expectations[messageType]) == 0 {
			delete(m.expectations, messageType)
		}
		return list[0], true
	}
	reply, ok := m.handlers[messageType]
	return reply, ok
}

// Emit delivers messages to subscribers as if the venue pushed them
func (m *MockAdapter) Emit(messages ...Message) {
	for _, msg := range messages {
		m.queue <- msg
	}
}

// Sent returns a copy of every message handed to SendInMessage
func (m *MockAdapter) Sent() []Message {
	m.sentMx.Lock()
	defer m.sentMx.Unlock()
	sent := make([]Message, len(m.sent))
	copy(sent, m.sent)
	return sent
}

// SentCount counts sent messages of messageType
func (m *MockAdapter) SentCount(messageType MessageType) int {
	m.sentMx.Lock()
	defer m.sentMx.Unlock()
	var count int
	for _, msg := range m.sent {
		if msg.Type() == messageType {
			count++
		}
	}
	return count
}

// SubscribersCount is the number of registered message handlers
func (m *MockAdapter) SubscribersCount() int {
	return m.hub.count()
}

func (m *MockAdapter) SendInMessage(msg Message) bool {
	m.sentMx.Lock()
	m.sent = append(m.sent, msg)
	m.sentMx.Unlock()

	m.expectationMx.Lock()
	rejected := m.rejected[msg.Type()]
	connectError := m.connectError
	m.expectationMx.Unlock()
	if rejected {
		m.logger.Info("mock-adapter: send rejected", zap.Stringer("type", msg.Type()))
		return false
	}

	switch msg.(type) {
	case *ConnectMessage:
		switch mockConnectMode(atomic.LoadUint32(&m.connectMode)) {
		case mockConnectAccept:
			m.Emit(&ConnectMessage{})
		case mockConnectReject:
			m.Emit(&ConnectMessage{Error: connectError})
		}
		return true
	case *DisconnectMessage:
		m.Emit(&DisconnectMessage{})
		return true
	}

	reply, ok := m.popReply(msg.Type())
	if !ok {
		m.logger.Warn("mock-adapter: unexpected request", zap.Stringer("type", msg.Type()), zap.Reflect("request", msg))
		return true
	}
	m.Emit(reply(msg)...)
	return true
}

func (m *MockAdapter) run() {
	for msg := range m.queue {
		m.hub.dispatch(msg)
	}
}

func NewMockAdapter(logger *zap.Logger, name string) *MockAdapter {
	adapter := &MockAdapter{
		logger:       logger,
		name:         name,
		generator:    &IncrementalIDGenerator{},
		expectations: make(map[MessageType][]MockReply),
		handlers:     make(map[MessageType]MockReply),
		rejected:     make(map[MessageType]bool),
		queue:        make(chan Message, 1024),
	}
	go adapter.run()
	logger.Info("mock-adapter: created", zap.String("name", name))
	return adapter
}

func originalID(request Message) uint64 {
	if transIDMsg, ok := request.(TransactionIDMessage); ok {
		return transIDMsg.GetTransactionID()
	}
	return 0
}

func mockDecimal(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

// SetupFixtures answers lookups with two securities and market data requests
// with a small deterministic history
func (m *MockAdapter) SetupFixtures() {
	base := time.Date(2019, 8, 2, 14, 21, 22, 0, time.UTC)
	securities := []*SecurityMessage{
		{
			SecurityID: SecurityID{Code: "AAPL", Board: "NASDAQ"},
			Name:       "Apple Inc.",
			CfiCode:    "ESXXXX",
			PriceStep:  mockDecimal("0.01"),
			VolumeStep: mockDecimal("1"),
		},
		{
			SecurityID: SecurityID{Code: "SiU9", Board: "FORTS"},
			Name:       "Si-9.19",
			CfiCode:    "FFXXXX",
			Decimals:   new(int),
			Multiplier: mockDecimal("1"),
		},
	}

	m.Handle(MessageTypeSecurityLookup, func(request Message) []Message {
		id := originalID(request)
		lookup, _ := request.(*SecurityLookupMessage)
		replies := make([]Message, 0, len(securities)+1)
		for _, sec := range securities {
			if lookup != nil && lookup.SecurityID.Code != "" && lookup.SecurityID.Code != sec.SecurityID.Code {
				continue
			}
			reply := *sec
			reply.OriginalTransactionID = id
			replies = append(replies, &reply)
		}
		return append(replies, &SubscriptionFinishedMessage{OriginalTransactionID: id})
	})

	m.Handle(MessageTypeMarketData, func(request Message) []Message {
		id := originalID(request)
		md, ok := request.(*MarketDataMessage)
		if !ok {
			return []Message{&ErrorMessage{OriginalTransactionID: id, Error: errors.New("market data request expected")}}
		}

		rows := 3
		if md.Count != nil && *md.Count < int64(rows) {
			rows = int(*md.Count)
		}
		replies := []Message{&SubscriptionResponseMessage{OriginalTransactionID: id}}
		for i := 0; i < rows; i++ {
			serverTime := base.Add(time.Duration(i) * time.Second)
			price := decimal.New(10525+int64(i), -2)
			volume := decimal.NewFromInt(int64(i + 1))
			switch md.DataType {
			case DataTypeLevel1:
				replies = append(replies, (&Level1ChangeMessage{
					OriginalTransactionID: id,
					SecurityID:            md.SecurityID,
					ServerTime:            serverTime,
					LocalTime:             serverTime,
				}).
					Add(Level1BestBidPrice, price.Sub(decimal.New(1, -2))).
					Add(Level1BestAskPrice, price.Add(decimal.New(1, -2))).
					Add(Level1LastTradePrice, price).
					Add(Level1LastTradeVolume, volume))
			case DataTypeTicks, DataTypeOrderLog:
				side := Side(i % 2)
				replies = append(replies, &ExecutionMessage{
					OriginalTransactionID: id,
					SecurityID:            md.SecurityID,
					DataType:              md.DataType,
					ServerTime:            serverTime,
					LocalTime:             serverTime,
					TradeID:               int64(i + 1),
					TradePrice:            &price,
					TradeVolume:           &volume,
					OriginSide:            &side,
				})
			case DataTypeCandles:
				replies = append(replies, &CandleMessage{
					OriginalTransactionID: id,
					SecurityID:            md.SecurityID,
					TimeFrame:             md.TimeFrame,
					OpenTime:              base.Add(time.Duration(i) * md.TimeFrame),
					OpenPrice:             price,
					HighPrice:             price.Add(decimal.NewFromInt(1)),
					LowPrice:              price.Sub(decimal.NewFromInt(1)),
					ClosePrice:            price,
					TotalVolume:           volume,
				})
			}
		}
		return append(replies, &SubscriptionFinishedMessage{OriginalTransactionID: id})
	})
	m.logger.Info("mock-adapter: setup fixtures", zap.String("name", m.name))
}
