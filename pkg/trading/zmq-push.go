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

var requestCounters = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "zmq_request_count",
	Help: "zmq send message counters",
}, []string{"gate", "type"})

func init() {
	prometheus.MustRegister(requestCounters)
}

// zmqPushConnection sends venue requests
type zmqPushConnection struct {
	logger  *zap.Logger
	zmqCtx  *zmq4.Context
	soc     *zmq4.Socket
	token   string
	addr    string
	sendMx  sync.Mutex
	ready   chan bool
	isReady uint32
}

func (c *zmqPushConnection) Ready() chan bool {
	return c.ready
}

func (c *zmqPushConnection) SendRequest(msg Message) error {
	data, err := encodeRequest(c.token, msg)
	if err != nil {
		return err
	}
	requestCounters.WithLabelValues(c.addr, msg.Type().String()).Inc()

	c.logger.Debug("zmq: send", zap.ByteString("msg", data), zap.String("gate", c.addr))

	c.sendMx.Lock()
	defer c.sendMx.Unlock()
	if _, err = c.soc.SendBytes(data, zmq4.DONTWAIT); err != nil {
		c.logger.Error("zmq: fail send", zap.ByteString("msg", data), zap.String("gate", c.addr), zap.Error(err))
		return errors.WithMessage(err, "fail send via zmq "+msg.Type().String()+" request")
	}
	return nil
}

func (c *zmqPushConnection) IsReady() bool {
	return atomic.LoadUint32(&c.isReady) == 1
}

func (c *zmqPushConnection) setReady(val bool) {
	var state uint32
	if val {
		state = 1
	}

	if atomic.SwapUint32(&c.isReady, state) != state {
		if val {
			c.logger.Info("zmq: push connection ready", zap.String("addr", c.addr))
		} else {
			c.logger.Warn("zmq: push connection closed", zap.String("addr", c.addr))
		}
		select {
		case c.ready <- val:
		default:
			// readiness is also polled through IsReady
			c.logger.Warn("zmq: push ready state dropped", zap.String("addr", c.addr), zap.Bool("ready", val))
		}
	}
}

func (c *zmqPushConnection) Close() error {
	c.sendMx.Lock()
	defer c.sendMx.Unlock()
	if err := c.soc.Close(); err != nil {
		return errors.WithMessage(err, "fail close push socket")
	}
	return c.zmqCtx.Term()
}

func (c *zmqPushConnection) String() string {
	return "PUSH:" + c.addr
}

func newPushSocket(zmqCtx *zmq4.Context, monitorAddr, addr, publicKey string) (*zmq4.Socket, error) {
	sock, err := zmqCtx.NewSocket(zmq4.PUSH)
	if err != nil {
		return nil, errors.WithMessage(err, "fail create socket")
	}
	if err = sock.Monitor(monitorAddr, zmq4.EVENT_ALL); err != nil {
		return nil, errors.WithMessage(err, "fail set monitor address")
	}

	if err = sock.SetReconnectIvl(time.Second); err != nil {
		return nil, errors.WithMessage(err, "fail set reconnect interval")
	}
	if err = sock.SetSndhwm(100000); err != nil {
		return nil, errors.WithMessage(err, "fail set send buffer messages count")
	}
	if err = sock.SetLinger(time.Second); err != nil {
		return nil, errors.WithMessage(err, "fail set linger timeout")
	}
	if err = sock.SetConnectTimeout(5 * time.Second); err != nil {
		return nil, errors.WithMessage(err, "fail set connect timeout")
	}
	if err = sock.SetHeartbeatIvl(2 * time.Second); err != nil {
		return nil, errors.WithMessage(err, "fail set heartbeat interval")
	}
	if err = sock.SetHeartbeatTimeout(5 * time.Second); err != nil {
		return nil, errors.WithMessage(err, "fail set heartbeat timeout")
	}
	// requests are not queued while the gate is away, the bridge reports a timeout instead
	if err = sock.SetImmediate(true); err != nil {
		return nil, errors.WithMessage(err, "fail set immediate send flag")
	}

	if err = setClientCurve(sock, publicKey); err != nil {
		return nil, err
	}

	if err = sock.Connect(addr); err != nil {
		return nil, errors.WithMessage(err, "fail connect "+addr)
	}
	return sock, nil
}

// setClientCurve enables curve auth with an ephemeral client key pair
func setClientCurve(sock *zmq4.Socket, serverKey string) error {
	if serverKey == "" {
		return nil
	}
	keyPublic, keySecret, err := zmq4.NewCurveKeypair()
	if err != nil {
		return errors.WithMessage(err, "fail generate curve pair")
	}
	if err = sock.ClientAuthCurve(serverKey, keyPublic, keySecret); err != nil {
		return errors.WithMessage(err, "fail set auth curve")
	}
	return nil
}

// newPushConnection creates the socket with its monitor and tracks readiness
func newPushConnection(addr, publicKey, token string, logger *zap.Logger) (*zmqPushConnection, error) {
	zmqCtx, err := zmq4.NewContext()
	if err != nil {
		return nil, errors.WithMessage(err, "fail create zmq context")
	}
	monitorAddr := generateMonitorAddr()
	online := make(chan bool)
	go runSocketMonitor(zmqCtx, monitorAddr, online, logger)

	sock, err := newPushSocket(zmqCtx, monitorAddr, addr, publicKey)
	if err != nil {
		return nil, errors.WithMessage(err, "fail create push socket")
	}

	push := &zmqPushConnection{
		logger: logger,
		zmqCtx: zmqCtx,
		soc:    sock,
		addr:   addr,
		token:  token,
		ready:  make(chan bool, 2),
	}

	go func() {
		for status := range online {
			push.setReady(status)
		}
	}()

	return push, nil
}
