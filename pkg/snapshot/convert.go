package snapshot

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gitlab.heather.loc/helios/venuelink/pkg/trading"
)

// Change values arrive either as Go values from an in-process adapter or as
// json.Number and strings from the wire. Converters accept both forms.

func errUnsupported(value interface{}, target string) error {
	return errors.Errorf("unsupported %T value %v for %s", value, value, target)
}

// textOf returns the textual form of strings, named string types and json.Number
func textOf(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case []byte:
		return string(v), true
	}
	rv := reflect.ValueOf(value)
	if rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func toDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v != nil {
			return *v, nil
		}
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, errUnsupported(value, "decimal")
		}
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	}

	if text, ok := textOf(value); ok {
		d, err := decimal.NewFromString(text)
		if err != nil {
			return decimal.Zero, errors.WithMessage(err, "invalid decimal")
		}
		return d, nil
	}

	rv := reflect.ValueOf(value)
	if rv.IsValid() {
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return decimal.NewFromInt(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return decimal.NewFromBigInt(new(big.Int).SetUint64(rv.Uint()), 0), nil
		}
	}
	return decimal.Zero, errUnsupported(value, "decimal")
}

var (
	maxInt64Decimal = decimal.NewFromInt(math.MaxInt64)
	minInt64Decimal = decimal.NewFromInt(math.MinInt64)
)

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		if !v.IsInteger() {
			return 0, errors.Errorf("decimal %s is not an integer", v)
		}
		if v.GreaterThan(maxInt64Decimal) || v.LessThan(minInt64Decimal) {
			return 0, errors.Errorf("decimal %s overflows int64", v)
		}
		return v.IntPart(), nil
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold
		if v != math.Trunc(v) || v >= math.MaxInt64 || v < math.MinInt64 {
			return 0, errors.Errorf("float %v is not an integer", v)
		}
		return int64(v), nil
	}

	if text, ok := textOf(value); ok {
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return 0, errors.WithMessage(err, "invalid integer")
		}
		return i, nil
	}

	rv := reflect.ValueOf(value)
	if rv.IsValid() {
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if rv.Uint() > math.MaxInt64 {
				return 0, errors.Errorf("integer %d overflows int64", rv.Uint())
			}
			return int64(rv.Uint()), nil
		}
	}
	return 0, errUnsupported(value, "integer")
}

func toInt(value interface{}) (int, error) {
	i, err := toInt64(value)
	if err != nil {
		return 0, err
	}
	if i > math.MaxInt32 || i < math.MinInt32 {
		return 0, errors.Errorf("integer %d overflows int32", i)
	}
	return int(i), nil
}

// toTime accepts time values, RFC 3339 text and unix milliseconds
func toTime(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v != nil {
			return *v, nil
		}
		return time.Time{}, errUnsupported(value, "time")
	}

	if text, ok := textOf(value); ok {
		if t, err := time.Parse(time.RFC3339Nano, text); err == nil {
			return t, nil
		}
	}
	ms, err := toInt64(value)
	if err != nil {
		return time.Time{}, errUnsupported(value, "time")
	}
	return time.UnixMilli(ms).UTC(), nil
}

func toBool(value interface{}) (bool, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	if text, ok := textOf(value); ok {
		b, err := strconv.ParseBool(text)
		if err != nil {
			return false, errors.WithMessage(err, "invalid bool")
		}
		return b, nil
	}
	return false, errUnsupported(value, "bool")
}

func toString(value interface{}) (string, error) {
	if text, ok := textOf(value); ok {
		return text, nil
	}
	if stringer, ok := value.(fmt.Stringer); ok {
		return stringer.String(), nil
	}
	return "", errUnsupported(value, "string")
}

func toSide(value interface{}) (trading.Side, error) {
	if v, ok := value.(trading.Side); ok {
		return v, nil
	}
	if text, ok := textOf(value); ok {
		if side, err := trading.SideStrToType(text); err == nil {
			return side, nil
		}
	}
	code, err := toInt64(value)
	if err != nil || (trading.Side(code) != trading.SideSell && trading.Side(code) != trading.SideBuy) {
		return 0, errUnsupported(value, "side")
	}
	return trading.Side(code), nil
}

func toSecurityState(value interface{}) (trading.SecurityState, error) {
	if v, ok := value.(trading.SecurityState); ok {
		return v, nil
	}
	if text, ok := textOf(value); ok {
		if state, err := trading.SecurityStateStrToType(text); err == nil {
			return state, nil
		}
	}
	code, err := toInt64(value)
	if err != nil || (trading.SecurityState(code) != trading.SecurityStateTrading && trading.SecurityState(code) != trading.SecurityStateStopped) {
		return 0, errUnsupported(value, "security state")
	}
	return trading.SecurityState(code), nil
}

func toPortfolioState(value interface{}) (trading.PortfolioState, error) {
	if v, ok := value.(trading.PortfolioState); ok {
		return v, nil
	}
	if text, ok := textOf(value); ok {
		if state, err := trading.PortfolioStateStrToType(text); err == nil {
			return state, nil
		}
	}
	code, err := toInt64(value)
	if err != nil || (trading.PortfolioState(code) != trading.PortfolioStateActive && trading.PortfolioState(code) != trading.PortfolioStateBlocked) {
		return 0, errUnsupported(value, "portfolio state")
	}
	return trading.PortfolioState(code), nil
}

// setters write converted values into optional fields

func setDecimal(target **decimal.Decimal, value interface{}) error {
	d, err := toDecimal(value)
	if err != nil {
		return err
	}
	*target = &d
	return nil
}

func setInt(target **int, value interface{}) error {
	i, err := toInt(value)
	if err != nil {
		return err
	}
	*target = &i
	return nil
}

func setTime(target **time.Time, value interface{}) error {
	t, err := toTime(value)
	if err != nil {
		return err
	}
	*target = &t
	return nil
}

func setString(target **string, value interface{}) error {
	s, err := toString(value)
	if err != nil {
		return err
	}
	*target = &s
	return nil
}
