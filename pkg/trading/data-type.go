package trading

import (
	"bytes"
	"strconv"

	"github.com/pkg/errors"
)

// DataType is the kind of market data requested by MarketDataMessage
type DataType uint8

const (
	DataTypeLevel1 DataType = iota
	DataTypeTicks
	DataTypeOrderLog
	DataTypeCandles

	dataTypeLevel1Str   = "level1"
	dataTypeTicksStr    = "ticks"
	dataTypeOrderLogStr = "orderLog"
	dataTypeCandlesStr  = "candles"
)

var (
	dataTypeLevel1Byte   = []byte(`"level1"`)
	dataTypeTicksByte    = []byte(`"ticks"`)
	dataTypeOrderLogByte = []byte(`"orderLog"`)
	dataTypeCandlesByte  = []byte(`"candles"`)
)

func (dt DataType) String() string {
	switch dt {
	case DataTypeLevel1:
		return dataTypeLevel1Str
	case DataTypeTicks:
		return dataTypeTicksStr
	case DataTypeOrderLog:
		return dataTypeOrderLogStr
	case DataTypeCandles:
		return dataTypeCandlesStr
	}
	panic("invalid data type string conversion" + strconv.Itoa(int(dt)))
}

func (dt DataType) MarshalJSON() ([]byte, error) {
	switch dt {
	case DataTypeLevel1:
		return dataTypeLevel1Byte, nil
	case DataTypeTicks:
		return dataTypeTicksByte, nil
	case DataTypeOrderLog:
		return dataTypeOrderLogByte, nil
	case DataTypeCandles:
		return dataTypeCandlesByte, nil
	}
	return nil, errors.New("invalid data type json conversion: " + strconv.Itoa(int(dt)))
}

func (dt *DataType) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, dataTypeLevel1Byte):
		*dt = DataTypeLevel1
	case bytes.Equal(data, dataTypeTicksByte):
		*dt = DataTypeTicks
	case bytes.Equal(data, dataTypeOrderLogByte):
		*dt = DataTypeOrderLog
	case bytes.Equal(data, dataTypeCandlesByte):
		*dt = DataTypeCandles
	default:
		return errors.New("unsupported data type: " + string(data))
	}
	return nil
}

func DataTypeStrToType(value string) (DataType, error) {
	switch value {
	case dataTypeLevel1Str:
		return DataTypeLevel1, nil
	case dataTypeTicksStr:
		return DataTypeTicks, nil
	case dataTypeOrderLogStr:
		return DataTypeOrderLog, nil
	case dataTypeCandlesStr:
		return DataTypeCandles, nil
	}
	return 0, errors.New("unsupported data type: " + value)
}
