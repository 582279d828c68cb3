package main

import (
	"flag"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gitlab.heather.loc/helios/venuelink/pkg/snapshot"
	"gitlab.heather.loc/helios/venuelink/pkg/trading"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var output = jsoniter.ConfigCompatibleWithStandardLibrary

type options struct {
	dsn         string
	nativeIDs   string
	storageName string
	logFile     string
	debug       bool
	metricsAddr string
	security    string
	data        string
	from        time.Time
	to          time.Time
	timeFrame   time.Duration
	dataOpts    trading.DataOptions
	timeout     time.Duration
}

func parseOptions() (*options, error) {
	opts := &options{}
	var from, to, securityType, buildField string
	flag.StringVar(&opts.dsn, "dsn", "mock://paper?connected=true&fixtures=true", "venue adapter dsn, zmq:// or mock://")
	flag.StringVar(&opts.nativeIDs, "native-ids", "", "yaml file with native identifier tables")
	flag.StringVar(&opts.storageName, "storage", "", "native identifier table of a mock adapter")
	flag.StringVar(&opts.logFile, "log-file", "", "rotated log file, stderr only when empty")
	flag.BoolVar(&opts.debug, "debug", false, "debug logging")
	flag.StringVar(&opts.metricsAddr, "metrics", "", "prometheus listen address, disabled when empty")
	flag.StringVar(&opts.security, "security", "AAPL@NASDAQ", "security id as code@board")
	flag.StringVar(&opts.data, "data", "level1", "level1, ticks, orderlog, candles or securities")
	flag.StringVar(&from, "from", "", "range start RFC3339, a day before -to by default")
	flag.StringVar(&to, "to", "", "range end RFC3339, now by default")
	flag.DurationVar(&opts.timeFrame, "timeframe", time.Minute, "candle time frame")
	flag.Int64Var(&opts.dataOpts.Count, "count", 0, "rows limit, unlimited when not positive")
	flag.StringVar(&securityType, "security-type", "", "security type of the requested instrument, e.g. stock or future")
	flag.StringVar(&buildField, "build-field", "", "level1 field candles are built from, e.g. ClosePrice")
	flag.DurationVar(&opts.timeout, "timeout", trading.DefaultOperationTimeout, "operation timeout")
	flag.Parse()

	var err error
	opts.to = time.Now().UTC()
	if to != "" {
		if opts.to, err = time.Parse(time.RFC3339, to); err != nil {
			return nil, errors.WithMessage(err, "invalid -to")
		}
	}
	if securityType != "" {
		st, err := trading.SecurityTypeStrToType(securityType)
		if err != nil {
			return nil, errors.WithMessage(err, "invalid -security-type")
		}
		opts.dataOpts.SecurityType = &st
	}
	if buildField != "" {
		field, err := trading.Level1FieldStrToType(buildField)
		if err != nil {
			return nil, errors.WithMessage(err, "invalid -build-field")
		}
		opts.dataOpts.BuildField = &field
	}
	opts.from = opts.to.Add(-24 * time.Hour)
	if from != "" {
		if opts.from, err = time.Parse(time.RFC3339, from); err != nil {
			return nil, errors.WithMessage(err, "invalid -from")
		}
	}
	return opts, nil
}

func newLogger(logFile string, debug bool) *zap.Logger {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		level.SetLevel(zap.DebugLevel)
	}

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level),
	}
	if logFile != "" {
		file := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), file, level))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

func parseSecurityID(value string) (trading.SecurityID, error) {
	code, board, _ := strings.Cut(value, "@")
	if code == "" {
		return trading.SecurityID{}, errors.New("security code is empty: " + value)
	}
	return trading.SecurityID{Code: code, Board: board}, nil
}

func setupNativeIDs(adapter trading.Adapter, path, storageName string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.WithMessage(err, "fail open native ids")
	}
	defer file.Close()

	storage, err := trading.LoadNativeIDs(file)
	if err != nil {
		return err
	}
	switch a := adapter.(type) {
	case *trading.ZmqAdapter:
		a.SetNativeIDStorage(storage)
	case *trading.MockAdapter:
		a.SetNativeIdentifiers(storageName, storage)
	}
	return nil
}

func run(logger *zap.Logger, opts *options) error {
	adapter, err := trading.NewAdapter(logger, opts.dsn)
	if err != nil {
		return err
	}
	if closer, ok := adapter.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn("downloader: fail close adapter", zap.Error(err))
			}
		}()
	}
	if opts.nativeIDs != "" {
		if err = setupNativeIDs(adapter, opts.nativeIDs, opts.storageName); err != nil {
			return err
		}
	}

	secID, err := parseSecurityID(opts.security)
	if err != nil {
		return err
	}

	bridge := trading.NewBridge(logger, adapter).WithOperationTimeout(opts.timeout)
	if err = bridge.Ping(); err != nil {
		return errors.WithMessage(err, "adapter "+adapter.Name()+" is not reachable")
	}

	lookup := &trading.SecurityLookupMessage{SecurityID: secID, SecurityType: opts.dataOpts.SecurityType}
	if opts.data == "securities" {
		lookup.SecurityID = trading.SecurityID{}
	}
	descriptors, err := bridge.GetSecurities(lookup)
	if err != nil {
		return errors.WithMessage(err, "fail lookup securities")
	}
	logger.Info("downloader: securities", zap.Int("count", len(descriptors)))

	boards := &snapshot.Boards{}
	encoder := output.NewEncoder(os.Stdout)

	if opts.data == "securities" {
		for _, descriptor := range descriptors {
			sec := &snapshot.Security{}
			if err = snapshot.ApplySecurity(sec, descriptor, boards, true); err != nil {
				return err
			}
			if err = encoder.Encode(sec); err != nil {
				return err
			}
		}
		return nil
	}

	sec := &snapshot.Security{Code: secID.Code, Board: boards.GetOrCreateBoard(secID.Board)}
	for _, descriptor := range descriptors {
		if descriptor.SecurityID.Code != secID.Code {
			continue
		}
		if err = snapshot.ApplySecurity(sec, descriptor, boards, false); err != nil {
			return err
		}
	}

	switch opts.data {
	case "level1":
		changes, err := bridge.GetLevel1(secID, opts.from, opts.to, opts.dataOpts)
		if err != nil {
			return err
		}
		fallback := func(_ *snapshot.Security, field trading.Level1Field, value interface{}) {
			logger.Debug("downloader: level1 field without property", zap.Stringer("field", field), zap.Any("value", value))
		}
		for _, msg := range changes {
			if _, err = snapshot.ApplyLevel1(sec, msg.Changes, msg.ServerTime, msg.LocalTime, fallback); err != nil {
				return err
			}
		}
		logger.Info("downloader: level1 applied", zap.Int("messages", len(changes)))
		return encoder.Encode(sec)
	case "ticks", "orderlog":
		get := bridge.GetTicks
		if opts.data == "orderlog" {
			get = bridge.GetOrderLog
		}
		executions, err := get(secID, opts.from, opts.to, opts.dataOpts)
		if err != nil {
			return err
		}
		for _, execution := range executions {
			if err = encoder.Encode(execution); err != nil {
				return err
			}
		}
		return nil
	case "candles":
		candles, err := bridge.GetCandles(secID, opts.timeFrame, opts.from, opts.to, opts.dataOpts)
		if err != nil {
			return err
		}
		for _, candle := range candles {
			if err = encoder.Encode(candle); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.New("unsupported data: " + opts.data)
}

func main() {
	opts, err := parseOptions()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	logger := newLogger(opts.logFile, opts.debug)
	defer logger.Sync()

	if opts.metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(opts.metricsAddr, mux); err != nil {
				logger.Error("downloader: metrics server stopped", zap.Error(err))
			}
		}()
	}

	if err = run(logger, opts); err != nil {
		logger.Error("downloader: failed", zap.String("kind", trading.ErrorKindOf(err).Error()), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
