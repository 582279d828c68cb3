package trading

import (
	"fmt"
	"sync/atomic"

	"github.com/pebbe/zmq4"
	"go.uber.org/zap"
)

// runSocketMonitor reports socket connection state into online until the
// zmq context is terminated, then closes online
func runSocketMonitor(zmqCtx *zmq4.Context, addr string, online chan bool, logger *zap.Logger) {
	defer close(online)

	s, err := zmqCtx.NewSocket(zmq4.PAIR)
	if err != nil {
		logger.Error("zmq-monitor: fail create new socket", zap.Error(err))
		return
	}
	if err = s.SetLinger(0); err != nil {
		logger.Error("zmq-monitor: fail setLinger", zap.Error(err))
	}
	defer func() {
		if err = s.Close(); err != nil {
			logger.Error("zmq-monitor: fail close socket", zap.Error(err))
		}
	}()

	if err = s.Connect(addr); err != nil {
		logger.Error("zmq-monitor: fail connect", zap.String("monitor", addr), zap.Error(err))
		return
	}

	for {
		event, address, _, err := s.RecvEvent(0)
		if err != nil {
			if zmq4.AsErrno(err) == zmq4.ETERM {
				logger.Info("zmq-monitor: context terminated", zap.String("monitor", addr))
				return
			}
			logger.Error("zmq-monitor: fail receive event", zap.Error(err))
			continue
		}

		switch event {
		case zmq4.EVENT_CONNECTED:
			logger.Info("zmq-monitor: connection established", zap.String("addr", address))
			online <- true
		case zmq4.EVENT_DISCONNECTED, zmq4.EVENT_CLOSED:
			logger.Warn("zmq-monitor: connection lost", zap.String("addr", address), zap.String("event", event.String()))
			online <- false
		case zmq4.EVENT_CONNECT_DELAYED, zmq4.EVENT_CONNECT_RETRIED:
			logger.Debug("zmq-monitor: connecting", zap.String("addr", address), zap.String("event", event.String()))
		case zmq4.EVENT_MONITOR_STOPPED:
			logger.Info("zmq-monitor: stop monitor", zap.String("monitor", addr))
			return
		default:
			logger.Debug("zmq-monitor: unprocessed event", zap.String("addr", address), zap.String("event", event.String()))
		}
	}
}

var monitorID int64

func generateMonitorAddr() string {
	nextID := atomic.AddInt64(&monitorID, 1)
	return fmt.Sprintf("inproc://venuelink_monitor.%d", nextID)
}
