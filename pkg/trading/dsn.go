package trading

import (
	"strings"
	"time"

	"net/url"

	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type configZmqAdapter struct {
	Name        string
	Token       string
	XSubAddr    string
	XSubKey     string
	PushAddr    string
	PushKey     string
	Timeout     time.Duration
	Native      bool
	StorageName string
}

// parseDsnZmq parses "zmq://host:port?xsub_port=P&timeout=5s&native=true&storage=NAME"
// followed by space separated token=, xsub_key=, push_key= and name= options
func parseDsnZmq(dsn string) (*configZmqAdapter, error) {
	var gate string
	cfg := &configZmqAdapter{}

	for _, conf := range strings.Fields(dsn) {
		switch {
		case strings.HasPrefix(conf, "zmq://"):
			if gate != "" {
				return nil, errors.New("only one zmq gate per adapter is supported")
			}
			gate = conf
		case strings.HasPrefix(conf, "token="):
			cfg.Token = strings.TrimPrefix(conf, "token=")
		case strings.HasPrefix(conf, "xsub_key="):
			cfg.XSubKey = strings.TrimPrefix(conf, "xsub_key=")
		case strings.HasPrefix(conf, "push_key="):
			cfg.PushKey = strings.TrimPrefix(conf, "push_key=")
		case strings.HasPrefix(conf, "name="):
			cfg.Name = strings.TrimPrefix(conf, "name=")
		default:
			return nil, errors.New("unknown dsn option: " + conf)
		}
	}

	if gate == "" {
		return nil, errors.New("empty config")
	}

	u, err := url.Parse(gate)
	if err != nil {
		return nil, err
	}
	if u.Hostname() == "" {
		return nil, errors.New("host is empty")
	}
	if u.Port() == "" {
		return nil, errors.New("port is empty")
	}

	pushPort, err := strconv.Atoi(u.Port())
	if err != nil {
		return nil, errors.WithMessage(err, "invalid push port value")
	}
	xsubPort := pushPort + 1

	query := u.Query()
	if query.Get("xsub_port") != "" {
		xsubPort, err = strconv.Atoi(query.Get("xsub_port"))
		if err != nil {
			return nil, errors.WithMessage(err, "invalid xsub port value")
		}
	}
	if query.Get("timeout") != "" {
		cfg.Timeout, err = time.ParseDuration(query.Get("timeout"))
		if err != nil {
			return nil, errors.WithMessage(err, "invalid timeout value")
		}
	}
	if query.Get("native") != "" {
		cfg.Native, err = strconv.ParseBool(query.Get("native"))
		if err != nil {
			return nil, errors.WithMessage(err, "invalid native value")
		}
	}
	cfg.StorageName = query.Get("storage")

	cfg.PushAddr = "tcp://" + u.Hostname() + ":" + strconv.Itoa(pushPort)
	cfg.XSubAddr = "tcp://" + u.Hostname() + ":" + strconv.Itoa(xsubPort)
	if cfg.Name == "" {
		cfg.Name = u.Host
	}
	return cfg, nil
}

type configMockAdapter struct {
	Name      string
	Connected bool
	Fixtures  bool
	Timeout   time.Duration
}

// parseDsnMock parses "mock://name?connected=true&fixtures=true&timeout=1s"
func parseDsnMock(dsn string) (*configMockAdapter, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	cfg := &configMockAdapter{Name: u.Host}
	if cfg.Name == "" {
		cfg.Name = "mock"
	}

	query := u.Query()
	cfg.Connected = query.Get("connected") == "true"
	cfg.Fixtures = query.Get("fixtures") == "true"
	if query.Get("timeout") != "" {
		cfg.Timeout, err = time.ParseDuration(query.Get("timeout"))
		if err != nil {
			return nil, errors.WithMessage(err, "invalid timeout value")
		}
	}

	return cfg, nil
}

// NewAdapter creates a venue adapter from a zmq:// or mock:// dsn
func NewAdapter(logger *zap.Logger, dsn string) (Adapter, error) {
	dsn = strings.TrimSpace(dsn)

	if strings.HasPrefix(dsn, "mock://") {
		cfg, err := parseDsnMock(dsn)
		if err != nil {
			return nil, errors.WithMessage(err, "fail parse mock dsn")
		}
		adapter := NewMockAdapter(logger, cfg.Name)
		adapter.SetConnectionSettings(ConnectionSettings{TimeoutInterval: cfg.Timeout})
		if cfg.Connected {
			adapter.AcceptConnect()
		}
		if cfg.Fixtures {
			adapter.SetupFixtures()
		}
		return adapter, nil
	}

	if strings.HasPrefix(dsn, "zmq://") {
		cfg, err := parseDsnZmq(dsn)
		if err != nil {
			return nil, errors.WithMessage(err, "fail parse zmq dsn")
		}
		adapter, err := createZmqAdapter(logger, *cfg)
		if err != nil {
			return nil, err
		}
		return adapter, nil
	}

	return nil, errors.New("config not supported")
}
