package trading

import (
	"bytes"
	"strconv"

	"github.com/pkg/errors"
)

// Side is the aggressor side of a trade
type Side uint8

const (
	SideSell Side = iota
	SideBuy

	sideSellStr = "sell"
	sideBuyStr  = "buy"
)

var (
	sideSellByte = []byte(`"sell"`)
	sideBuyByte  = []byte(`"buy"`)
)

func (s Side) String() string {
	switch s {
	case SideSell:
		return sideSellStr
	case SideBuy:
		return sideBuyStr
	}
	panic("invalid side string conversion" + strconv.Itoa(int(s)))
}

func (s Side) MarshalJSON() ([]byte, error) {
	switch s {
	case SideSell:
		return sideSellByte, nil
	case SideBuy:
		return sideBuyByte, nil
	}
	return nil, errors.New("invalid side json conversion: " + strconv.Itoa(int(s)))
}

func (s *Side) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, sideSellByte) {
		*s = SideSell
		return nil
	}

	if bytes.Equal(data, sideBuyByte) {
		*s = SideBuy
		return nil
	}

	return errors.New("unsupported side: " + string(data))
}

func SideStrToType(value string) (Side, error) {
	switch value {
	case sideSellStr:
		return SideSell, nil
	case sideBuyStr:
		return SideBuy, nil
	}
	return 0, errors.New("unsupported side: " + value)
}
