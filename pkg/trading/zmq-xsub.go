package trading

import (
	"sync"
	"time"

	"sync/atomic"

	"github.com/pebbe/zmq4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var messageCounters = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "zmq_message_count",
	Help: "zmq income message counters",
}, []string{"gate", "type"})

var replyErrorCounters = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "zmq_reply_error_count",
	Help: "zmq income replies carrying an error",
}, []string{"gate", "type"})

func init() {
	prometheus.MustRegister(messageCounters, replyErrorCounters)
}

// replyTopic is the topic every venue reply is published under
const replyTopic = "reply"

// zmqXsubConnection receives venue replies
type zmqXsubConnection struct {
	zmqCtx   *zmq4.Context
	soc      *zmq4.Socket
	addr     string
	token    string
	messages chan Message
	mx       sync.Mutex
	logger   *zap.Logger
	ready    chan bool
	isReady  uint32
}

func (c *zmqXsubConnection) Messages() chan Message {
	return c.messages
}

func (c *zmqXsubConnection) Ready() chan bool {
	return c.ready
}

// GetAddr get connection endpoint address
func (c *zmqXsubConnection) GetAddr() string {
	return c.addr
}

// IsReady return connection ready state.
// If connection established and heartbeat is received, then true
func (c *zmqXsubConnection) IsReady() bool {
	return atomic.LoadUint32(&c.isReady) == 1
}

func (c *zmqXsubConnection) Close() error {
	c.mx.Lock()
	defer c.mx.Unlock()
	// terminating the context releases the blocked receive
	return c.zmqCtx.Term()
}

func newXSubSocket(zmqCtx *zmq4.Context, monitorAddr, addr, publicKey string) (*zmq4.Socket, error) {
	sock, err := zmqCtx.NewSocket(zmq4.XSUB)
	if err != nil {
		return nil, errors.WithMessage(err, "fail create socket")
	}

	if err = sock.Monitor(monitorAddr, zmq4.EVENT_ALL); err != nil {
		return nil, errors.WithMessage(err, "fail set monitor address")
	}

	if err = sock.SetReconnectIvl(time.Second); err != nil {
		return nil, errors.WithMessage(err, "fail set reconnect interval")
	}
	if err = sock.SetConnectTimeout(5 * time.Second); err != nil {
		return nil, errors.WithMessage(err, "fail set connect timeout")
	}
	if err = sock.SetHeartbeatIvl(10 * time.Second); err != nil {
		return nil, errors.WithMessage(err, "fail set heartbeat interval")
	}
	if err = sock.SetHeartbeatTimeout(20 * time.Second); err != nil {
		return nil, errors.WithMessage(err, "fail set heartbeat timeout")
	}
	if err = sock.SetLinger(0); err != nil {
		return nil, errors.WithMessage(err, "fail set linger timeout")
	}
	if err = sock.SetRcvhwm(100000); err != nil {
		return nil, errors.WithMessage(err, "fail set receive buffer messages count")
	}

	if err = setClientCurve(sock, publicKey); err != nil {
		return nil, err
	}

	if err = sock.Connect(addr); err != nil {
		return nil, errors.WithMessage(err, "fail connect "+addr)
	}

	return sock, nil
}

// newXSubConnection creates the socket with its monitor, subscribes for
// heartbeats and replies and starts the receive loop
func newXSubConnection(addr, publicKey, token string, logger *zap.Logger) (*zmqXsubConnection, error) {
	zmqCtx, err := zmq4.NewContext()
	if err != nil {
		return nil, errors.WithMessage(err, "fail create zmq context")
	}
	monitorAddr := generateMonitorAddr()
	online := make(chan bool)
	go runSocketMonitor(zmqCtx, monitorAddr, online, logger)

	sock, err := newXSubSocket(zmqCtx, monitorAddr, addr, publicKey)
	if err != nil {
		return nil, errors.WithMessage(err, "fail create socket")
	}

	if _, err = sock.SendBytes(append([]byte{1}, heartbeatFrame...), zmq4.DONTWAIT); err != nil {
		return nil, errors.WithMessage(err, "fail subscribe heartbeat")
	}

	xsub := &zmqXsubConnection{
		zmqCtx:   zmqCtx,
		soc:      sock,
		addr:     addr,
		logger:   logger,
		ready:    make(chan bool, 2),
		messages: make(chan Message, 1000),
		token:    token,
	}

	if err = xsub.Subscribe(replyTopic); err != nil {
		return nil, err
	}

	go xsub.handleMonitor(online)

	go xsub.readMessages()

	return xsub, nil
}

func (c *zmqXsubConnection) setReady(val bool) {
	var state uint32
	if val {
		state = 1
	}

	if atomic.SwapUint32(&c.isReady, state) != state {
		if val {
			c.logger.Info("zmq: xsub connection ready", zap.String("addr", c.addr))
		} else {
			c.logger.Warn("zmq: xsub connection closed", zap.String("addr", c.addr))
		}
		select {
		case c.ready <- val:
		default:
			c.logger.Warn("zmq: xsub ready state dropped", zap.String("addr", c.addr), zap.Bool("ready", val))
		}
	}
}

// handleMonitor only lowers readiness, a heartbeat raises it
func (c *zmqXsubConnection) handleMonitor(online chan bool) {
	for status := range online {
		if !status {
			c.setReady(false)
		}
	}
}

func (c *zmqXsubConnection) subscription(flag byte, topic string) []byte {
	return append([]byte{flag}, topic+"."+c.token...)
}

// Subscribe for replies published under topic
func (c *zmqXsubConnection) Subscribe(topic string) error {
	c.logger.Info("zmq: subscribe", zap.String("addr", c.addr), zap.String("topic", topic))
	c.mx.Lock()
	defer c.mx.Unlock()
	_, err := c.soc.SendBytes(c.subscription(1, topic), zmq4.DONTWAIT)
	if err != nil {
		c.logger.Error("zmq: fail send subscription payload", zap.Error(err))
		return errors.WithMessage(err, "fail subscribe "+topic)
	}
	return nil
}

// UnSubscribe from replies published under topic
func (c *zmqXsubConnection) UnSubscribe(topic string) error {
	c.logger.Info("zmq: unsubscribe", zap.String("addr", c.addr), zap.String("topic", topic))
	c.mx.Lock()
	defer c.mx.Unlock()
	_, err := c.soc.SendBytes(c.subscription(0, topic), zmq4.DONTWAIT)
	if err != nil {
		c.logger.Error("zmq: fail send unsubscription payload", zap.Error(err))
		return errors.WithMessage(err, "fail unsubscribe "+topic)
	}
	return nil
}

func (c *zmqXsubConnection) readMessages() {
	defer close(c.messages)

	for {
		frame, err := c.soc.RecvBytes(0)
		if err != nil {
			if zmq4.AsErrno(err) == zmq4.ETERM {
				c.logger.Info("zmq: xsub receive stopped", zap.String("addr", c.addr))
			} else {
				c.logger.Error("zmq: receive data error", zap.Error(err), zap.String("addr", c.addr))
			}
			c.setReady(false)
			if closeErr := c.soc.Close(); closeErr != nil {
				c.logger.Error("zmq: fail close xsub socket", zap.Error(closeErr), zap.String("addr", c.addr))
			}
			return
		}
		c.setReady(true)

		if isHeartbeat(frame) {
			messageCounters.WithLabelValues(c.addr, "heartbeat").Inc()
			c.logger.Debug("zmq: heartbeat", zap.String("addr", c.addr))
			continue
		}

		msg, err := c.parseFrame(frame)
		if err != nil {
			messageCounters.WithLabelValues(c.addr, "invalid").Inc()
			c.logger.Error("zmq: parse fail reply", zap.Error(err), zap.ByteString("frame", frame), zap.String("addr", c.addr))
			continue
		}

		messageCounters.WithLabelValues(c.addr, msg.Type().String()).Inc()
		if carrier, ok := msg.(ErrorCarrier); ok && carrier.GetError() != nil {
			replyErrorCounters.WithLabelValues(c.addr, msg.Type().String()).Inc()
		}
		c.messages <- msg
	}
}

func (c *zmqXsubConnection) parseFrame(frame []byte) (Message, error) {
	_, body, err := splitFrame(frame)
	if err != nil {
		return nil, err
	}
	return decodeMessage(body)
}
