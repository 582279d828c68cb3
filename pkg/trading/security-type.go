package trading

import (
	"strconv"

	"github.com/pkg/errors"
)

type SecurityType uint8

const (
	SecurityTypeStock SecurityType = iota
	SecurityTypeFuture
	SecurityTypeOption
	SecurityTypeIndex
	SecurityTypeCurrency
	SecurityTypeBond
	SecurityTypeWarrant
	SecurityTypeForward
	SecurityTypeSwap
	SecurityTypeCommodity
	SecurityTypeFund
	SecurityTypeCryptoCurrency

	securityTypeCount
)

var securityTypeMapping = [securityTypeCount]string{
	SecurityTypeStock:          "stock",
	SecurityTypeFuture:         "future",
	SecurityTypeOption:         "option",
	SecurityTypeIndex:          "index",
	SecurityTypeCurrency:       "currency",
	SecurityTypeBond:           "bond",
	SecurityTypeWarrant:        "warrant",
	SecurityTypeForward:        "forward",
	SecurityTypeSwap:           "swap",
	SecurityTypeCommodity:      "commodity",
	SecurityTypeFund:           "fund",
	SecurityTypeCryptoCurrency: "cryptoCurrency",
}

func (st SecurityType) String() string {
	if st < securityTypeCount {
		return securityTypeMapping[st]
	}
	panic("invalid security type string conversion" + strconv.Itoa(int(st)))
}

func (st SecurityType) MarshalJSON() ([]byte, error) {
	if st < securityTypeCount {
		return quoteName(securityTypeMapping[st]), nil
	}
	return nil, errors.New("invalid security type json conversion: " + strconv.Itoa(int(st)))
}

func (st *SecurityType) UnmarshalJSON(data []byte) error {
	i, err := unmarshalName(data, securityTypeMapping[:], int(securityTypeCount), "security type")
	if err != nil {
		return err
	}
	*st = SecurityType(i)
	return nil
}

func SecurityTypeStrToType(value string) (SecurityType, error) {
	i, err := nameIndex(value, securityTypeMapping[:], "security type")
	return SecurityType(i), err
}

type OptionType uint8

const (
	OptionTypeCall OptionType = iota
	OptionTypePut

	optionTypeCount
)

var optionTypeMapping = [optionTypeCount]string{
	OptionTypeCall: "call",
	OptionTypePut:  "put",
}

func (ot OptionType) String() string {
	if ot < optionTypeCount {
		return optionTypeMapping[ot]
	}
	panic("invalid option type string conversion" + strconv.Itoa(int(ot)))
}

func (ot OptionType) MarshalJSON() ([]byte, error) {
	if ot < optionTypeCount {
		return quoteName(optionTypeMapping[ot]), nil
	}
	return nil, errors.New("invalid option type json conversion: " + strconv.Itoa(int(ot)))
}

func (ot *OptionType) UnmarshalJSON(data []byte) error {
	i, err := unmarshalName(data, optionTypeMapping[:], int(optionTypeCount), "option type")
	if err != nil {
		return err
	}
	*ot = OptionType(i)
	return nil
}

// SecurityState is the trading state reported by the venue for an instrument
type SecurityState uint8

const (
	SecurityStateTrading SecurityState = iota
	SecurityStateStopped

	securityStateCount
)

var securityStateMapping = [securityStateCount]string{
	SecurityStateTrading: "trading",
	SecurityStateStopped: "stopped",
}

func (s SecurityState) String() string {
	if s < securityStateCount {
		return securityStateMapping[s]
	}
	panic("invalid security state string conversion" + strconv.Itoa(int(s)))
}

func (s SecurityState) MarshalJSON() ([]byte, error) {
	if s < securityStateCount {
		return quoteName(securityStateMapping[s]), nil
	}
	return nil, errors.New("invalid security state json conversion: " + strconv.Itoa(int(s)))
}

func (s *SecurityState) UnmarshalJSON(data []byte) error {
	i, err := unmarshalName(data, securityStateMapping[:], int(securityStateCount), "security state")
	if err != nil {
		return err
	}
	*s = SecurityState(i)
	return nil
}

func SecurityStateStrToType(value string) (SecurityState, error) {
	i, err := nameIndex(value, securityStateMapping[:], "security state")
	return SecurityState(i), err
}

// PortfolioState is an account level state, never stored on a position
type PortfolioState uint8

const (
	PortfolioStateActive PortfolioState = iota
	PortfolioStateBlocked

	portfolioStateCount
)

var portfolioStateMapping = [portfolioStateCount]string{
	PortfolioStateActive:  "active",
	PortfolioStateBlocked: "blocked",
}

func (s PortfolioState) String() string {
	if s < portfolioStateCount {
		return portfolioStateMapping[s]
	}
	panic("invalid portfolio state string conversion" + strconv.Itoa(int(s)))
}

func (s PortfolioState) MarshalJSON() ([]byte, error) {
	if s < portfolioStateCount {
		return quoteName(portfolioStateMapping[s]), nil
	}
	return nil, errors.New("invalid portfolio state json conversion: " + strconv.Itoa(int(s)))
}

func (s *PortfolioState) UnmarshalJSON(data []byte) error {
	i, err := unmarshalName(data, portfolioStateMapping[:], int(portfolioStateCount), "portfolio state")
	if err != nil {
		return err
	}
	*s = PortfolioState(i)
	return nil
}

func PortfolioStateStrToType(value string) (PortfolioState, error) {
	i, err := nameIndex(value, portfolioStateMapping[:], "portfolio state")
	return PortfolioState(i), err
}
