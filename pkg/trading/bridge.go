package trading

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var sessionDurations = prometheus.NewSummaryVec(prometheus.SummaryOpts{
	Name:       "bridge_session_phase_duration_us",
	Help:       "bridge session phase durations microseconds",
	AgeBuckets: 1,
}, []string{"adapter", "phase"})

var sessionFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "bridge_session_failure_count",
	Help: "bridge session failures by kind",
}, []string{"adapter", "kind"})

func init() {
	prometheus.MustRegister(sessionDurations, sessionFailures)
}

const (
	// DefaultOperationTimeout bounds result collection, bulk downloads may be slow
	DefaultOperationTimeout = 2 * time.Minute

	// DefaultConnectTimeout is used when the adapter has no timeout configured
	DefaultConnectTimeout = 30 * time.Second
)

// ResultPredicate is called for every adapter message of a session. accept
// adds the message to the results, finished completes the wait, err aborts it.
type ResultPredicate func(msg Message) (accept, finished bool, err error)

// Bridge turns the asynchronous adapter stream into blocking calls. Every
// call runs its own connect, request, collect, disconnect cycle.
type Bridge struct {
	logger           *zap.Logger
	adapter          Adapter
	operationTimeout time.Duration
}

func NewBridge(logger *zap.Logger, adapter Adapter) *Bridge {
	return &Bridge{
		logger:           logger,
		adapter:          adapter,
		operationTimeout: DefaultOperationTimeout,
	}
}

// WithOperationTimeout returns a copy of the bridge with another result collection bound
func (b *Bridge) WithOperationTimeout(timeout time.Duration) *Bridge {
	clone := *b
	clone.operationTimeout = timeout
	return &clone
}

// RunSession connects, sends requests, optionally waits for the predicate to
// report completion and always disconnects. Results are all-or-nothing.
func (b *Bridge) RunSession(requests []Message, waitResponse bool, predicate ResultPredicate) ([]Message, error) {
	if b.adapter == nil {
		return nil, invalidArgument("adapter is nil")
	}
	if predicate == nil {
		return nil, invalidArgument("result predicate is nil")
	}
	for i, request := range requests {
		if request == nil {
			return nil, invalidArgument("request " + strconv.Itoa(i) + " is nil")
		}
	}

	b.translateNativeIDs(requests)

	s := &session{
		id:               uuid.New().String(),
		logger:           b.logger,
		adapter:          b.adapter,
		predicate:        predicate,
		operationTimeout: b.operationTimeout,
		connected:        newPhaseSignal(),
		completed:        newPhaseSignal(),
	}

	unsubscribe := b.adapter.Subscribe(s.handle)
	err := s.run(requests, waitResponse)
	// after unsubscribe the handler is done, results are safe to read
	unsubscribe()

	if err != nil {
		sessionFailures.WithLabelValues(b.adapter.Name(), ErrorKindOf(err).Error()).Inc()
		b.logger.Warn("bridge: session failed", zap.String("session", s.id), zap.String("adapter", b.adapter.Name()), zap.Error(err))
		return nil, err
	}
	return s.results, nil
}

func (b *Bridge) translateNativeIDs(requests []Message) {
	if !b.adapter.IsNativeIdentifiers() || b.adapter.StorageName() == "" {
		return
	}
	storage := b.adapter.NativeIDStorage()
	if storage == nil {
		return
	}

	for _, request := range requests {
		secIDMsg, ok := request.(SecurityIDMessage)
		if !ok {
			continue
		}
		secID := secIDMsg.GetSecurityID()
		if secID.IsEmpty() {
			continue
		}
		// a missing native id is not an error, the venue will reject the request
		native, _ := storage.TryGetBySecurityID(b.adapter.StorageName(), secID)
		secID.Native = native
		secIDMsg.SetSecurityID(secID)
	}
}

type session struct {
	id               string
	logger           *zap.Logger
	adapter          Adapter
	predicate        ResultPredicate
	operationTimeout time.Duration
	connected        *phaseSignal
	completed        *phaseSignal
	results          []Message
}

// handle runs on the adapter dispatch goroutine
func (s *session) handle(msg Message) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(errors.Errorf("result predicate panic: %v", r))
		}
	}()

	switch msg.(type) {
	case *ConnectMessage, *DisconnectMessage:
		if _, err := s.collect(msg); err != nil {
			s.fail(err)
			return
		}
		connErr := msg.(ErrorCarrier).GetError()
		if _, isDisconnect := msg.(*DisconnectMessage); isDisconnect && connErr == nil {
			// a clean disconnect may belong to a previous session
			return
		}
		if !s.connected.fire(connErr) && connErr != nil {
			// connection lost after the handshake
			s.completed.fire(connErr)
		}
	default:
		finished, err := s.collect(msg)
		if err != nil {
			s.fail(err)
			return
		}
		if finished {
			s.completed.fire(nil)
		}
	}
}

func (s *session) collect(msg Message) (bool, error) {
	accept, finished, err := s.predicate(msg)
	if err != nil {
		return false, err
	}
	if accept {
		s.results = append(s.results, msg)
	}
	return finished, nil
}

func (s *session) fail(err error) {
	s.connected.fire(err)
	s.completed.fire(err)
}

func (s *session) run(requests []Message, waitResponse bool) error {
	name := s.adapter.Name()
	connectTimeout := s.adapter.ConnectionSettings().TimeoutInterval
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}

	s.logger.Info("bridge: connect", zap.String("session", s.id), zap.String("adapter", name), zap.Int("requests", len(requests)))
	start := time.Now()
	if !s.adapter.SendInMessage(&ConnectMessage{}) {
		s.logger.Warn("bridge: connect request not accepted", zap.String("session", s.id), zap.String("adapter", name))
	}
	defer s.disconnect()

	result := s.connected.wait(connectTimeout)
	sessionDurations.WithLabelValues(name, "connect").Observe(float64(time.Since(start) / time.Microsecond))
	switch result.outcome {
	case outcomeTimeout:
		return newSessionError(ErrorConnectionTimeout, nil)
	case outcomeError:
		return newSessionError(ErrorConnectionFailed, result.err)
	}

	generator := s.adapter.TransactionIDGenerator()
	if generator == nil {
		generator = DefaultIDGenerator
	}
	for _, request := range requests {
		if transIDMsg, ok := request.(TransactionIDMessage); ok && transIDMsg.GetTransactionID() == 0 {
			transIDMsg.SetTransactionID(generator.NextID())
		}
		// the real error comes later as a missing response
		if !s.adapter.SendInMessage(request) {
			s.logger.Warn("bridge: request not accepted", zap.String("session", s.id), zap.String("adapter", name), zap.Stringer("type", request.Type()))
		}
	}

	if !waitResponse {
		return nil
	}

	start = time.Now()
	result = s.completed.wait(s.operationTimeout)
	sessionDurations.WithLabelValues(name, "operation").Observe(float64(time.Since(start) / time.Microsecond))
	switch result.outcome {
	case outcomeTimeout:
		return newSessionError(ErrorOperationTimeout, nil)
	case outcomeError:
		return newSessionError(ErrorOperationFailed, result.err)
	}
	return nil
}

func (s *session) disconnect() {
	if !s.adapter.SendInMessage(&DisconnectMessage{}) {
		s.logger.Warn("bridge: disconnect request not accepted", zap.String("session", s.id), zap.String("adapter", s.adapter.Name()))
	}
}
