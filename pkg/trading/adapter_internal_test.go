package trading

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gotest.tools/assert"
)

func TestMessageHub(t *testing.T) {
	var hub messageHub
	var received []Message

	unsubscribe := hub.subscribe(func(msg Message) {
		received = append(received, msg)
	})
	assert.Equal(t, hub.count(), 1)

	hub.dispatch(&ConnectMessage{})
	unsubscribe()
	unsubscribe()
	hub.dispatch(&DisconnectMessage{})

	assert.Equal(t, hub.count(), 0)
	assert.Equal(t, len(received), 1)
	assert.Equal(t, received[0].Type(), MessageTypeConnect)
}

func TestMessageHubUnsubscribeWaitsDispatch(t *testing.T) {
	var hub messageHub
	started := make(chan struct{})
	release := make(chan struct{})
	var finished bool

	unsubscribe := hub.subscribe(func(msg Message) {
		close(started)
		<-release
		finished = true
	})
	go hub.dispatch(&ConnectMessage{})
	<-started

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		unsubscribe()
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.Check(t, finished, "unsubscribe returned before the handler finished")
}

func TestIncrementalIDGenerator(t *testing.T) {
	generator := &IncrementalIDGenerator{}
	assert.Equal(t, generator.NextID(), uint64(1))
	assert.Equal(t, generator.NextID(), uint64(2))
}

func TestPhaseSignal(t *testing.T) {
	signal := newPhaseSignal()
	assert.Check(t, signal.fire(nil))
	assert.Check(t, !signal.fire(errors.New("late")), "only the first outcome is delivered")
	assert.Equal(t, signal.wait(time.Second).outcome, outcomeSuccess)

	signal = newPhaseSignal()
	signal.fire(errors.New("refused"))
	result := signal.wait(time.Second)
	assert.Equal(t, result.outcome, outcomeError)
	assert.ErrorContains(t, result.err, "refused")

	signal = newPhaseSignal()
	assert.Equal(t, signal.wait(10*time.Millisecond).outcome, outcomeTimeout)
}

func TestErrorKindOf(t *testing.T) {
	assert.Equal(t, ErrorKindOf(nil), ErrorUnknown)
	assert.Equal(t, ErrorKindOf(errors.New("plain")), ErrorUnknown)
	assert.Equal(t, ErrorKindOf(invalidArgument("id is empty")), ErrorInvalidArgument)

	err := errors.WithMessage(newSessionError(ErrorOperationFailed, errors.New("rejected")), "download")
	assert.Equal(t, ErrorKindOf(err), ErrorOperationFailed)
	assert.Check(t, errors.Is(err, ErrorOperationFailed))
	assert.Check(t, !errors.Is(err, ErrorOperationTimeout))
	assert.Equal(t, errors.Cause(err).Error(), "rejected")
	assert.Equal(t, newSessionError(ErrorConnectionTimeout, nil).Error(), "connectionTimeout")
}

func TestMockAdapterReplies(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	adapter := NewMockAdapter(logger, "mock")

	received := make(chan Message, 10)
	unsubscribe := adapter.Subscribe(func(msg Message) {
		received <- msg
	})
	defer unsubscribe()

	adapter.Expect(MessageTypeSecurityLookup, func(request Message) []Message {
		return []Message{&SubscriptionFinishedMessage{OriginalTransactionID: 1}}
	})
	adapter.Handle(MessageTypeSecurityLookup, func(request Message) []Message {
		return []Message{&SubscriptionFinishedMessage{OriginalTransactionID: 2}}
	})
	assert.Check(t, !adapter.isEmptyExpectations())

	assert.Check(t, adapter.SendInMessage(&SecurityLookupMessage{}))
	assert.Check(t, adapter.isEmptyExpectations(), "expectation is one-shot")
	assert.Check(t, adapter.SendInMessage(&SecurityLookupMessage{}))
	assert.Check(t, adapter.SendInMessage(&SecurityLookupMessage{}))

	for _, expected := range []uint64{1, 2, 2} {
		select {
		case msg := <-received:
			assert.Equal(t, msg.(*SubscriptionFinishedMessage).OriginalTransactionID, expected)
		case <-time.After(time.Second):
			t.Fatal("mock reply not received in time")
		}
	}

	assert.Check(t, adapter.SendInMessage(&ConnectMessage{}), "silent connect is accepted")
	adapter.RejectSend(MessageTypeMarketData)
	assert.Check(t, !adapter.SendInMessage(&MarketDataMessage{}))
	assert.Equal(t, len(adapter.Sent()), 5)
	assert.Equal(t, adapter.SentCount(MessageTypeSecurityLookup), 3)

	select {
	case msg := <-received:
		t.Fatalf("unexpected message %v", msg.Type())
	case <-time.After(50 * time.Millisecond):
	}
}
