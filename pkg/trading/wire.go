package trading

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// wireJSON keeps dynamically typed values as json.Number, the merge engine
// converts them without float rounding
var wireJSON = jsoniter.Config{
	EscapeHTML:             false,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

var (
	heartbeatFrame = []byte(".HEARTBEAT")
	frameSeparator = byte(0)
)

type transportRequest struct {
	Type  MessageType `json:"type"`
	Token string      `json:"token,omitempty"`
	Data  interface{} `json:"data"`
}

type transportReply struct {
	Type MessageType         `json:"type"`
	Data jsoniter.RawMessage `json:"data"`
}

// payloadError is the wire form of the messages carrying a structured error
type payloadError struct {
	OriginalTransactionID uint64 `json:"originalTransactionId,omitempty"`
	Error                 string `json:"error,omitempty"`
}

func (p payloadError) err() error {
	if p.Error == "" {
		return nil
	}
	return errors.New(p.Error)
}

func newPayloadError(origID uint64, err error) payloadError {
	p := payloadError{OriginalTransactionID: origID}
	if err != nil {
		p.Error = err.Error()
	}
	return p
}

func encodeRequest(token string, msg Message) ([]byte, error) {
	var data interface{} = msg
	switch m := msg.(type) {
	case *ConnectMessage:
		data = newPayloadError(0, m.Error)
	case *DisconnectMessage:
		data = newPayloadError(0, m.Error)
	case *SubscriptionResponseMessage:
		data = newPayloadError(m.OriginalTransactionID, m.Error)
	case *ErrorMessage:
		data = newPayloadError(m.OriginalTransactionID, m.Error)
	}

	payload, err := wireJSON.Marshal(transportRequest{Type: msg.Type(), Token: token, Data: data})
	if err != nil {
		return nil, errors.WithMessage(err, "fail marshal "+msg.Type().String()+" request")
	}
	return payload, nil
}

// newMessage allocates the concrete message of a wire type
func newMessage(messageType MessageType) (Message, error) {
	switch messageType {
	case MessageTypeMarketData:
		return &MarketDataMessage{}, nil
	case MessageTypeSecurityLookup:
		return &SecurityLookupMessage{}, nil
	case MessageTypeLevel1Change:
		return &Level1ChangeMessage{}, nil
	case MessageTypeExecution:
		return &ExecutionMessage{}, nil
	case MessageTypeSecurity:
		return &SecurityMessage{}, nil
	case MessageTypeCandle:
		return &CandleMessage{}, nil
	case MessageTypePositionChange:
		return &PositionChangeMessage{}, nil
	case MessageTypeSubscriptionFinished:
		return &SubscriptionFinishedMessage{}, nil
	}
	return nil, errors.New("unsupported wire message type: " + messageType.String())
}

func decodeMessage(data []byte) (Message, error) {
	var reply transportReply
	if err := wireJSON.Unmarshal(data, &reply); err != nil {
		return nil, errors.WithMessage(err, "fail unmarshal envelope")
	}

	switch reply.Type {
	case MessageTypeConnect, MessageTypeDisconnect, MessageTypeSubscriptionResponse, MessageTypeError:
		var p payloadError
		if len(reply.Data) > 0 {
			if err := wireJSON.Unmarshal(reply.Data, &p); err != nil {
				return nil, errors.WithMessage(err, "fail unmarshal "+reply.Type.String())
			}
		}
		switch reply.Type {
		case MessageTypeConnect:
			return &ConnectMessage{Error: p.err()}, nil
		case MessageTypeDisconnect:
			return &DisconnectMessage{Error: p.err()}, nil
		case MessageTypeSubscriptionResponse:
			return &SubscriptionResponseMessage{OriginalTransactionID: p.OriginalTransactionID, Error: p.err()}, nil
		default:
			return &ErrorMessage{OriginalTransactionID: p.OriginalTransactionID, Error: p.err()}, nil
		}
	}

	msg, err := newMessage(reply.Type)
	if err != nil {
		return nil, err
	}
	if err = wireJSON.Unmarshal(reply.Data, msg); err != nil {
		return nil, errors.WithMessage(err, "fail unmarshal "+reply.Type.String())
	}
	return msg, nil
}

// splitFrame cuts "<topic>.<token>\x00<json>\x00" into topic and json
func splitFrame(frame []byte) (topic, body []byte, err error) {
	idx := bytes.IndexByte(frame, frameSeparator)
	if idx < 0 {
		return nil, nil, errors.New("frame separator not found")
	}
	topic = frame[:idx]
	body = bytes.TrimRight(frame[idx+1:], "\x00")
	if len(body) == 0 {
		return nil, nil, errors.New("frame body is empty")
	}
	return topic, body, nil
}

func isHeartbeat(frame []byte) bool {
	return bytes.Contains(frame, heartbeatFrame)
}
