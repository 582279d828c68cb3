package trading

import (
	"strconv"

	"github.com/pkg/errors"
)

type MessageType uint8

const (
	MessageTypeConnect MessageType = iota
	MessageTypeDisconnect
	MessageTypeMarketData
	MessageTypeSecurityLookup
	MessageTypeLevel1Change
	MessageTypeExecution
	MessageTypeSecurity
	MessageTypeCandle
	MessageTypePositionChange
	MessageTypeSubscriptionResponse
	MessageTypeSubscriptionFinished
	MessageTypeError

	messageTypeCount
)

var messageTypeMapping = [messageTypeCount]string{
	MessageTypeConnect:              "connect",
	MessageTypeDisconnect:           "disconnect",
	MessageTypeMarketData:           "marketData",
	MessageTypeSecurityLookup:       "securityLookup",
	MessageTypeLevel1Change:         "level1Change",
	MessageTypeExecution:            "execution",
	MessageTypeSecurity:             "security",
	MessageTypeCandle:               "candle",
	MessageTypePositionChange:       "positionChange",
	MessageTypeSubscriptionResponse: "subscriptionResponse",
	MessageTypeSubscriptionFinished: "subscriptionFinished",
	MessageTypeError:                "error",
}

func (mt MessageType) String() string {
	if mt < messageTypeCount {
		return messageTypeMapping[mt]
	}
	panic("invalid message type string conversion" + strconv.Itoa(int(mt)))
}

func (mt MessageType) MarshalJSON() ([]byte, error) {
	if mt < messageTypeCount {
		return []byte(`"` + messageTypeMapping[mt] + `"`), nil
	}
	return nil, errors.New("invalid message type json conversion: " + strconv.Itoa(int(mt)))
}

func (mt *MessageType) UnmarshalJSON(data []byte) error {
	if len(data) > 2 && data[0] == '"' && data[len(data)-1] == '"' {
		if val, err := MessageTypeStrToType(string(data[1 : len(data)-1])); err == nil {
			*mt = val
			return nil
		}
	}
	return errors.New("unsupported message type: " + string(data))
}

func MessageTypeStrToType(value string) (MessageType, error) {
	for i, name := range messageTypeMapping {
		if name == value {
			return MessageType(i), nil
		}
	}
	return 0, errors.New("unsupported message type: " + value)
}
