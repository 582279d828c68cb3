package trading

import (
	"sync"
	"time"

	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var readyState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: "zmq_ready_state",
	Help: "Zmq venue gate status",
}, []string{"gate"})

func init() {
	prometheus.MustRegister(readyState)
}

// ZmqAdapter is a venue gate reached over a PUSH socket for requests and an
// XSUB socket for replies. Connect is answered once both sockets are ready.
type ZmqAdapter struct {
	logger      *zap.Logger
	name        string
	push        pushConnecter
	xsub        xsubConnecter
	hub         messageHub
	settings    ConnectionSettings
	generator   IDGenerator
	native      bool
	storageName string
	storage     NativeIDStorage

	// events carries locally produced connection messages to the dispatch loop
	events chan Message

	mx           sync.Mutex
	connecting   bool
	connected    bool
	connectTimer *time.Timer
	isReady      uint32
	closed       chan struct{}
	closeOnce    sync.Once
}

func (c *ZmqAdapter) Name() string {
	return c.name
}

func (c *ZmqAdapter) Subscribe(handler MessageHandler) func() {
	return c.hub.subscribe(handler)
}

func (c *ZmqAdapter) ConnectionSettings() ConnectionSettings {
	return c.settings
}

func (c *ZmqAdapter) TransactionIDGenerator() IDGenerator {
	return c.generator
}

func (c *ZmqAdapter) IsNativeIdentifiers() bool {
	return c.native
}

func (c *ZmqAdapter) StorageName() string {
	return c.storageName
}

func (c *ZmqAdapter) NativeIDStorage() NativeIDStorage {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.storage
}

// SetNativeIDStorage installs the translation table used by the bridge
func (c *ZmqAdapter) SetNativeIDStorage(storage NativeIDStorage) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.storage = storage
}

// IsReady reports that both sockets are up
func (c *ZmqAdapter) IsReady() bool {
	return atomic.LoadUint32(&c.isReady) == 1
}

// SendInMessage handles connection messages locally and pushes the rest to the gate
func (c *ZmqAdapter) SendInMessage(msg Message) bool {
	switch msg.(type) {
	case *ConnectMessage:
		c.connect()
		return true
	case *DisconnectMessage:
		c.disconnect()
		return true
	}

	if !c.IsReady() {
		c.logger.Warn("zmq: gate not ready, request dropped", zap.String("gate", c.name), zap.Stringer("type", msg.Type()))
		return false
	}
	if err := c.push.SendRequest(msg); err != nil {
		c.logger.Warn("zmq: fail send request", zap.String("gate", c.name), zap.Error(err))
		return false
	}
	return true
}

func (c *ZmqAdapter) connect() {
	c.mx.Lock()
	defer c.mx.Unlock()

	if c.IsReady() {
		c.connecting = false
		c.connected = true
		c.emit(&ConnectMessage{})
		return
	}

	c.connecting = true
	timeout := c.settings.TimeoutInterval
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	if c.connectTimer != nil {
		c.connectTimer.Stop()
	}
	c.connectTimer = time.AfterFunc(timeout, func() {
		c.mx.Lock()
		defer c.mx.Unlock()
		if !c.connecting {
			return
		}
		c.connecting = false
		c.emit(&ConnectMessage{Error: errors.Errorf("zmq: gate %s not ready in %s", c.name, timeout)})
	})
}

func (c *ZmqAdapter) disconnect() {
	c.mx.Lock()
	defer c.mx.Unlock()

	c.connecting = false
	c.connected = false
	if c.connectTimer != nil {
		c.connectTimer.Stop()
		c.connectTimer = nil
	}
	c.emit(&DisconnectMessage{})
}

// emit must be called with mx held
func (c *ZmqAdapter) emit(msg Message) {
	select {
	case c.events <- msg:
	case <-c.closed:
	}
}

func (c *ZmqAdapter) setReady(val bool) {
	var promStatus float64
	var state uint32
	if val {
		promStatus = 1
		state = 1
	}
	readyState.WithLabelValues(c.name).Set(promStatus)

	if atomic.SwapUint32(&c.isReady, state) == state {
		return
	}

	c.mx.Lock()
	defer c.mx.Unlock()
	if val && c.connecting {
		c.connecting = false
		c.connected = true
		if c.connectTimer != nil {
			c.connectTimer.Stop()
			c.connectTimer = nil
		}
		c.emit(&ConnectMessage{})
	} else if !val && c.connected {
		c.connected = false
		c.emit(&DisconnectMessage{Error: errors.Errorf("zmq: gate %s connection lost", c.name)})
	}
}

func (c *ZmqAdapter) handleReady() {
	for {
		select {
		case pushReady := <-c.push.Ready():
			c.logger.Info("zmq adapter:", zap.Bool("push ready state", pushReady), zap.String("gate", c.name))
		case xsubReady := <-c.xsub.Ready():
			c.logger.Info("zmq adapter:", zap.Bool("xsub ready state", xsubReady), zap.String("gate", c.name))
		case <-c.closed:
			return
		}

		c.setReady(c.push.IsReady() && c.xsub.IsReady())
	}
}

// dispatch serializes gate replies and local connection messages
func (c *ZmqAdapter) dispatch() {
	messages := c.xsub.Messages()
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				c.logger.Warn("zmq adapter: reply stream closed", zap.String("gate", c.name))
				messages = nil
				continue
			}
			c.hub.dispatch(msg)
		case msg := <-c.events:
			c.hub.dispatch(msg)
		case <-c.closed:
			return
		}
	}
}

// Close drops the reply subscription and releases both sockets, pending
// sessions see a timeout
func (c *ZmqAdapter) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		if unsubErr := c.xsub.UnSubscribe(replyTopic); unsubErr != nil {
			c.logger.Warn("zmq adapter: fail drop reply subscription", zap.String("gate", c.name), zap.Error(unsubErr))
		}
		if pushErr := c.push.Close(); pushErr != nil {
			err = errors.WithMessage(pushErr, "fail close push connection")
		}
		if xsubErr := c.xsub.Close(); xsubErr != nil && err == nil {
			err = errors.WithMessage(xsubErr, "fail close xsub connection")
		}
	})
	return err
}

func newZmqAdapter(logger *zap.Logger, cfg configZmqAdapter, push pushConnecter, xsub xsubConnecter) *ZmqAdapter {
	adapter := &ZmqAdapter{
		logger:      logger,
		name:        cfg.Name,
		push:        push,
		xsub:        xsub,
		settings:    ConnectionSettings{TimeoutInterval: cfg.Timeout},
		generator:   DefaultIDGenerator,
		native:      cfg.Native,
		storageName: cfg.StorageName,
		events:      make(chan Message, 16),
		closed:      make(chan struct{}),
	}
	go adapter.dispatch()
	go adapter.handleReady()
	return adapter
}

func createZmqAdapter(logger *zap.Logger, cfg configZmqAdapter) (*ZmqAdapter, error) {
	xsub, err := newXSubConnection(cfg.XSubAddr, cfg.XSubKey, cfg.Token, logger)
	if err != nil {
		return nil, errors.WithMessage(err, "fail create xsub zmq connection")
	}
	push, err := newPushConnection(cfg.PushAddr, cfg.PushKey, cfg.Token, logger)
	if err != nil {
		return nil, errors.WithMessage(err, "fail create push zmq connection")
	}
	return newZmqAdapter(logger.With(zap.String("gate", cfg.Name)), cfg, push, xsub), nil
}
