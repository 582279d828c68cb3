package trading

import (
	"sync"
	"sync/atomic"
	"time"
)

// Adapter is a push based connection to a trading venue
type Adapter interface {

	// Name identifies the adapter in logs and metrics
	Name() string

	// SendInMessage hands a message to the venue. False means the message was not accepted
	SendInMessage(msg Message) bool

	// Subscribe registers handler for every message produced by the adapter.
	// After unsubscribe returns the handler is never invoked again.
	Subscribe(handler MessageHandler) (unsubscribe func())

	ConnectionSettings() ConnectionSettings

	TransactionIDGenerator() IDGenerator

	// IsNativeIdentifiers reports that the venue addresses securities by its own ids
	IsNativeIdentifiers() bool

	StorageName() string

	// NativeIDStorage returns nil when no translation table is configured
	NativeIDStorage() NativeIDStorage
}

type MessageHandler func(msg Message)

type ConnectionSettings struct {
	// TimeoutInterval bounds the connect handshake
	TimeoutInterval time.Duration
}

type IDGenerator interface {
	NextID() uint64
}

// IncrementalIDGenerator returns 1, 2, 3 ...
type IncrementalIDGenerator struct {
	current uint64
}

func (g *IncrementalIDGenerator) NextID() uint64 {
	return atomic.AddUint64(&g.current, 1)
}

// DefaultIDGenerator is shared by every adapter of the process
var DefaultIDGenerator IDGenerator = &IncrementalIDGenerator{}

// messageHub fans adapter messages out to subscribers. Dispatch is
// serialized, so a handler never runs concurrently with itself.
type messageHub struct {
	dispatchMx sync.Mutex
	mx         sync.Mutex
	nextID     uint64
	handlers   map[uint64]MessageHandler
}

func (h *messageHub) subscribe(handler MessageHandler) func() {
	h.mx.Lock()
	if h.handlers == nil {
		h.handlers = make(map[uint64]MessageHandler)
	}
	h.nextID++
	id := h.nextID
	h.handlers[id] = handler
	h.mx.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.dispatchMx.Lock()
			defer h.dispatchMx.Unlock()
			h.mx.Lock()
			delete(h.handlers, id)
			h.mx.Unlock()
		})
	}
}

func (h *messageHub) dispatch(msg Message) {
	h.dispatchMx.Lock()
	defer h.dispatchMx.Unlock()

	h.mx.Lock()
	handlers := make([]MessageHandler, 0, len(h.handlers))
	for _, handler := range h.handlers {
		handlers = append(handlers, handler)
	}
	h.mx.Unlock()

	for _, handler := range handlers {
		handler(msg)
	}
}

func (h *messageHub) count() int {
	h.mx.Lock()
	defer h.mx.Unlock()
	return len(h.handlers)
}
