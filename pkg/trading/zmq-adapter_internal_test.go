package trading

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gotest.tools/assert"
)

// zmq push mock

type mockSendRequest func(request Message) error

type pushMock struct {
	logger  *zap.Logger
	ready   chan bool
	isReady uint32
	mx      sync.Mutex
	mocks   []mockSendRequest
	sent    []Message
}

func (c *pushMock) addMock(handler mockSendRequest) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.mocks = append(c.mocks, handler)
}

func (c *pushMock) isMocksEmpty() bool {
	c.mx.Lock()
	defer c.mx.Unlock()
	return len(c.mocks) == 0
}

func (c *pushMock) sentCount() int {
	c.mx.Lock()
	defer c.mx.Unlock()
	return len(c.sent)
}

func (c *pushMock) Ready() chan bool {
	return c.ready
}

func (c *pushMock) SendRequest(request Message) error {
	c.logger.Info("zmq: mock request", zap.Stringer("type", request.Type()), zap.Reflect("request", request))
	c.mx.Lock()
	c.sent = append(c.sent, request)
	if len(c.mocks) == 0 {
		c.mx.Unlock()
		return errors.New("mock requests is empty")
	}
	h := c.mocks[0]
	c.mocks = c.mocks[1:]
	c.mx.Unlock()
	return h(request)
}

func (c *pushMock) IsReady() bool {
	return atomic.LoadUint32(&c.isReady) == 1
}

func (c *pushMock) Close() error {
	return nil
}

func (c *pushMock) setReady(val bool) {
	var state uint32
	if val {
		state = 1
	}

	if atomic.SwapUint32(&c.isReady, state) != state {
		c.logger.Info("zmq: mock push ready", zap.Bool("ready", val))
		select {
		case c.ready <- val:
			// ok
		default:
			panic("zmq: discarding ready call chan capacity")
		}
	}
}

// zmq xsub mock

type xsubMock struct {
	addr     string
	messages chan Message
	logger   *zap.Logger
	ready    chan bool
	isReady  uint32
	mx       sync.Mutex
	topics   map[string]bool
}

func (c *xsubMock) IsReady() bool {
	return atomic.LoadUint32(&c.isReady) == 1
}

func (c *xsubMock) Ready() chan bool {
	return c.ready
}

func (c *xsubMock) Subscribe(topic string) error {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.topics[topic] = true
	return nil
}

func (c *xsubMock) UnSubscribe(topic string) error {
	c.mx.Lock()
	defer c.mx.Unlock()
	delete(c.topics, topic)
	return nil
}

func (c *xsubMock) Messages() chan Message {
	return c.messages
}

func (c *xsubMock) GetAddr() string {
	return c.addr
}

func (c *xsubMock) Close() error {
	return nil
}

func (c *xsubMock) setReady(val bool) {
	var state uint32
	if val {
		state = 1
	}

	if atomic.SwapUint32(&c.isReady, state) != state {
		c.logger.Info("zmq: mock xsub ready", zap.Bool("ready", val))
		select {
		case c.ready <- val:
		default:
			panic("zmq: discarding ready call chan capacity")
		}
	}
}

func newMockedZmqAdapter(t *testing.T, timeout time.Duration) (*ZmqAdapter, *pushMock, *xsubMock) {
	logger, _ := zap.NewDevelopment()
	push := &pushMock{logger: logger, ready: make(chan bool, 2)}
	xsub := &xsubMock{
		addr:     "tcp://127.0.0.1:7779",
		logger:   logger,
		ready:    make(chan bool, 2),
		messages: make(chan Message, 100),
		topics:   make(map[string]bool),
	}
	adapter := newZmqAdapter(logger, configZmqAdapter{Name: t.Name(), Timeout: timeout}, push, xsub)
	t.Cleanup(func() {
		assert.NilError(t, adapter.Close())
	})
	return adapter, push, xsub
}

// collect subscribes to the adapter and streams every message into a channel
func collect(adapter Adapter) (chan Message, func()) {
	messages := make(chan Message, 100)
	unsubscribe := adapter.Subscribe(func(msg Message) {
		messages <- msg
	})
	return messages, unsubscribe
}

func waitMessage(t *testing.T, messages chan Message) Message {
	t.Helper()
	select {
	case msg := <-messages:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("adapter message not received in time")
	}
	return nil
}

func waitReady(t *testing.T, adapter *ZmqAdapter, expected bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for adapter.IsReady() != expected {
		if time.Now().After(deadline) {
			t.Fatalf("adapter ready state %v not reached", expected)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestZmqAdapterConnect(t *testing.T) {

	t.Run("connect when ready", func(t *testing.T) {
		adapter, push, xsub := newMockedZmqAdapter(t, time.Second)
		push.setReady(true)
		xsub.setReady(true)
		waitReady(t, adapter, true)

		messages, unsubscribe := collect(adapter)
		defer unsubscribe()

		assert.Check(t, adapter.SendInMessage(&ConnectMessage{}))
		connect, ok := waitMessage(t, messages).(*ConnectMessage)
		assert.Check(t, ok)
		assert.NilError(t, connect.Error)

		assert.Check(t, adapter.SendInMessage(&DisconnectMessage{}))
		disconnect, ok := waitMessage(t, messages).(*DisconnectMessage)
		assert.Check(t, ok)
		assert.NilError(t, disconnect.Error)
		assert.Equal(t, push.sentCount(), 0, "connection messages stay local")
	})

	t.Run("connect waits for readiness", func(t *testing.T) {
		adapter, push, xsub := newMockedZmqAdapter(t, time.Second)
		messages, unsubscribe := collect(adapter)
		defer unsubscribe()

		assert.Check(t, adapter.SendInMessage(&ConnectMessage{}))
		push.setReady(true)
		xsub.setReady(true)

		connect := waitMessage(t, messages).(*ConnectMessage)
		assert.NilError(t, connect.Error)
	})

	t.Run("connect timeout", func(t *testing.T) {
		adapter, push, _ := newMockedZmqAdapter(t, 100*time.Millisecond)
		messages, unsubscribe := collect(adapter)
		defer unsubscribe()

		assert.Check(t, adapter.SendInMessage(&ConnectMessage{}))
		push.setReady(true)

		connect := waitMessage(t, messages).(*ConnectMessage)
		assert.ErrorContains(t, connect.Error, "not ready")
	})

	t.Run("connection lost", func(t *testing.T) {
		adapter, push, xsub := newMockedZmqAdapter(t, time.Second)
		push.setReady(true)
		xsub.setReady(true)
		waitReady(t, adapter, true)

		messages, unsubscribe := collect(adapter)
		defer unsubscribe()
		assert.Check(t, adapter.SendInMessage(&ConnectMessage{}))
		waitMessage(t, messages)

		xsub.setReady(false)
		disconnect := waitMessage(t, messages).(*DisconnectMessage)
		assert.ErrorContains(t, disconnect.Error, "connection lost")
		assert.Check(t, !adapter.SendInMessage(&MarketDataMessage{}), "requests are dropped while not ready")
	})
}

func TestZmqAdapterBridge(t *testing.T) {
	adapter, push, xsub := newMockedZmqAdapter(t, time.Second)
	push.setReady(true)
	xsub.setReady(true)
	waitReady(t, adapter, true)

	logger, _ := zap.NewDevelopment()
	bridge := NewBridge(logger, adapter).WithOperationTimeout(time.Second)

	push.addMock(func(request Message) error {
		lookup := request.(*SecurityLookupMessage)
		assert.Check(t, lookup.TransactionID != 0)
		xsub.messages <- &SecurityMessage{OriginalTransactionID: lookup.TransactionID, SecurityID: SecurityID{Code: "AAPL", Board: "NASDAQ"}}
		xsub.messages <- &SecurityMessage{OriginalTransactionID: lookup.TransactionID + 1, SecurityID: SecurityID{Code: "MSFT", Board: "NASDAQ"}}
		xsub.messages <- &SubscriptionFinishedMessage{OriginalTransactionID: lookup.TransactionID}
		return nil
	})

	securities, err := bridge.GetSecurities(nil)
	assert.NilError(t, err)
	assert.Equal(t, len(securities), 1)
	assert.Equal(t, securities[0].SecurityID.Code, "AAPL")
	assert.Check(t, push.isMocksEmpty())
	assert.Equal(t, adapter.hub.count(), 0)

	t.Run("send failure times out", func(t *testing.T) {
		_, err := bridge.WithOperationTimeout(100 * time.Millisecond).GetTicks(SecurityID{Code: "AAPL"}, time.Time{}, time.Time{}, DataOptions{})
		assert.Equal(t, ErrorKindOf(err), ErrorOperationTimeout)
	})
}

func TestZmqAdapterClose(t *testing.T) {
	adapter, _, xsub := newMockedZmqAdapter(t, time.Second)
	assert.NilError(t, xsub.Subscribe(replyTopic))

	assert.NilError(t, adapter.Close())
	xsub.mx.Lock()
	_, subscribed := xsub.topics[replyTopic]
	xsub.mx.Unlock()
	assert.Check(t, !subscribed, "reply subscription is dropped")
	assert.NilError(t, adapter.Close())
}

func TestZmqAdapterNativeIDStorage(t *testing.T) {
	adapter, _, _ := newMockedZmqAdapter(t, time.Second)
	assert.Check(t, adapter.NativeIDStorage() == nil)

	storage := NewNativeIDs()
	storage.Add("gate-a", SecurityID{Code: "AAPL", Board: "NASDAQ"}, "265598")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			adapter.SetNativeIDStorage(storage)
		}()
		go func() {
			defer wg.Done()
			if current := adapter.NativeIDStorage(); current != nil {
				_, _ = current.TryGetBySecurityID("gate-a", SecurityID{Code: "AAPL", Board: "NASDAQ"})
			}
		}()
	}
	wg.Wait()

	native, ok := adapter.NativeIDStorage().TryGetBySecurityID("gate-a", SecurityID{Code: "AAPL", Board: "NASDAQ"})
	assert.Check(t, ok)
	assert.Equal(t, native, "265598")
}
