package trading

import (
	"time"

	"github.com/pkg/errors"
)

// Download sends request and collects every adapter message of type T that
// belongs to it. Responses are correlated by transaction id when T carries an
// original transaction id, otherwise every T is accepted.
func Download[T Message](b *Bridge, request Message) ([]T, error) {
	if request == nil {
		return nil, invalidArgument("request is nil")
	}

	var zero T
	_, resultIsConnect := any(zero).(*ConnectMessage)
	_, resultIsOrigID := any(zero).(OriginalTransactionIDMessage)

	var predicate ResultPredicate
	if transIDMsg, ok := request.(TransactionIDMessage); ok && resultIsOrigID {
		predicate = transactionPredicate[T](transIDMsg)
	} else {
		predicate = otherPredicate[T]()
	}

	messages, err := b.RunSession([]Message{request}, !resultIsConnect, predicate)
	if err != nil {
		return nil, err
	}

	results := make([]T, 0, len(messages))
	for _, msg := range messages {
		results = append(results, msg.(T))
	}
	return results, nil
}

func transactionPredicate[T Message](request TransactionIDMessage) ResultPredicate {
	return func(msg Message) (bool, bool, error) {
		origMsg, ok := msg.(OriginalTransactionIDMessage)
		if !ok {
			return false, false, nil
		}
		// the id is assigned by RunSession right before the request is sent
		if origMsg.GetOriginalTransactionID() != request.GetTransactionID() {
			return false, false, nil
		}

		switch m := msg.(type) {
		case *SubscriptionResponseMessage:
			if m.Error != nil {
				return false, false, m.Error
			}
		case *ErrorMessage:
			return false, false, venueError(m.Error)
		case *SubscriptionFinishedMessage:
			_, accept := msg.(T)
			return accept, true, nil
		}

		_, accept := msg.(T)
		return accept, false, nil
	}
}

func otherPredicate[T Message]() ResultPredicate {
	return func(msg Message) (bool, bool, error) {
		if _, ok := msg.(T); ok {
			return true, false, nil
		}
		switch m := msg.(type) {
		case *ErrorMessage:
			return false, false, venueError(m.Error)
		case *SubscriptionResponseMessage:
			if m.Error != nil {
				return false, false, m.Error
			}
		case *SubscriptionFinishedMessage:
			return false, true, nil
		}
		return false, false, nil
	}
}

func venueError(err error) error {
	if err == nil {
		return errors.New("venue reported an error without details")
	}
	return err
}

// Upload sends messages inside a session without waiting for any response
func (b *Bridge) Upload(messages ...Message) error {
	_, err := b.RunSession(messages, false, func(Message) (bool, bool, error) {
		return false, false, nil
	})
	return err
}

// DataOptions narrows a market data download
type DataOptions struct {
	// Count limits the amount of returned rows when positive
	Count        int64
	SecurityType *SecurityType
	// BuildField is the level1 field candles are built from, candles only
	BuildField *Level1Field
}

func (o DataOptions) marketData(id SecurityID, dataType DataType, from, to time.Time) *MarketDataMessage {
	request := &MarketDataMessage{
		SecurityID:   id,
		DataType:     dataType,
		IsSubscribe:  true,
		From:         from,
		To:           to,
		SecurityType: o.SecurityType,
	}
	if o.Count > 0 {
		count := o.Count
		request.Count = &count
	}
	return request
}

// GetLevel1 downloads level1 snapshots for the security within [from, to]
func (b *Bridge) GetLevel1(id SecurityID, from, to time.Time, opts DataOptions, fields ...Level1Field) ([]*Level1ChangeMessage, error) {
	request := opts.marketData(id, DataTypeLevel1, from, to)
	request.Fields = fields
	return Download[*Level1ChangeMessage](b, request)
}

func (b *Bridge) GetTicks(id SecurityID, from, to time.Time, opts DataOptions) ([]*ExecutionMessage, error) {
	return Download[*ExecutionMessage](b, opts.marketData(id, DataTypeTicks, from, to))
}

func (b *Bridge) GetOrderLog(id SecurityID, from, to time.Time, opts DataOptions) ([]*ExecutionMessage, error) {
	return Download[*ExecutionMessage](b, opts.marketData(id, DataTypeOrderLog, from, to))
}

// GetCandles downloads time frame candles
func (b *Bridge) GetCandles(id SecurityID, timeFrame time.Duration, from, to time.Time, opts DataOptions) ([]*CandleMessage, error) {
	if timeFrame <= 0 {
		return nil, invalidArgument("candle time frame must be positive")
	}
	request := opts.marketData(id, DataTypeCandles, from, to)
	request.TimeFrame = timeFrame
	request.BuildField = opts.BuildField
	return Download[*CandleMessage](b, request)
}

// GetSecurities looks up instruments matching the criteria
func (b *Bridge) GetSecurities(criteria *SecurityLookupMessage) ([]*SecurityMessage, error) {
	if criteria == nil {
		criteria = &SecurityLookupMessage{}
	}
	return Download[*SecurityMessage](b, criteria)
}

// Ping checks that the adapter is able to connect
func (b *Bridge) Ping() error {
	_, err := b.RunSession(nil, false, otherPredicate[*ConnectMessage]())
	return err
}
