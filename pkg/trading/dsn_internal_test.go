package trading

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"gotest.tools/assert"
)

func TestParseDsnZmq(t *testing.T) {

	t.Run("simple ok", func(t *testing.T) {
		cfg, err := parseDsnZmq("zmq://10.195.46.21:7778")
		assert.NilError(t, err)
		assert.Equal(t, cfg.PushAddr, "tcp://10.195.46.21:7778")
		assert.Equal(t, cfg.XSubAddr, "tcp://10.195.46.21:7779")
		assert.Equal(t, cfg.Name, "10.195.46.21:7778")
		assert.Equal(t, cfg.Timeout, time.Duration(0))
		assert.Check(t, !cfg.Native)
	})

	t.Run("simple ok port", func(t *testing.T) {
		cfg, err := parseDsnZmq("zmq://10.195.46.21:7778?xsub_port=8779")
		assert.NilError(t, err)
		assert.Equal(t, cfg.PushAddr, "tcp://10.195.46.21:7778")
		assert.Equal(t, cfg.XSubAddr, "tcp://10.195.46.21:8779")
	})

	t.Run("complete ok", func(t *testing.T) {
		cfg, err := parseDsnZmq("zmq://10.195.46.21:7778?xsub_port=8779&timeout=5s&native=true&storage=gate-a token=astra   xsub_key=a!BHF!Tb?rtY.gHjwzx!>>V@DJ2ZAlLP6Mp:llwJ push_key=RuU0F(D9u/57m:YLghIvusNgd)r&lfg6.ZJ3SY@A name=moex")
		assert.NilError(t, err)
		assert.Equal(t, cfg.PushAddr, "tcp://10.195.46.21:7778")
		assert.Equal(t, cfg.XSubAddr, "tcp://10.195.46.21:8779")
		assert.Equal(t, cfg.Token, "astra")
		assert.Equal(t, cfg.PushKey, "RuU0F(D9u/57m:YLghIvusNgd)r&lfg6.ZJ3SY@A")
		assert.Equal(t, cfg.XSubKey, "a!BHF!Tb?rtY.gHjwzx!>>V@DJ2ZAlLP6Mp:llwJ")
		assert.Equal(t, cfg.Name, "moex")
		assert.Equal(t, cfg.Timeout, 5*time.Second)
		assert.Check(t, cfg.Native)
		assert.Equal(t, cfg.StorageName, "gate-a")
	})

	t.Run("multiply gates", func(t *testing.T) {
		_, err := parseDsnZmq("zmq://10.195.46.21:7778 zmq://10.195.46.71:8778?xsub_port=8779 xsub_key=qwe push_key=rty")
		assert.ErrorContains(t, err, "only one zmq gate")
	})

	t.Run("errors", func(t *testing.T) {
		_, err := parseDsnZmq("token=astra")
		assert.ErrorContains(t, err, "empty config")
		_, err = parseDsnZmq("zmq://10.195.46.21")
		assert.ErrorContains(t, err, "port is empty")
		_, err = parseDsnZmq("zmq://10.195.46.21:7778?timeout=soon")
		assert.ErrorContains(t, err, "invalid timeout value")
		_, err = parseDsnZmq("zmq://10.195.46.21:7778?native=maybe")
		assert.ErrorContains(t, err, "invalid native value")
		_, err = parseDsnZmq("zmq://10.195.46.21:7778 secret=1")
		assert.ErrorContains(t, err, "unknown dsn option")
	})
}

func TestParseDsnMock(t *testing.T) {
	cfg, err := parseDsnMock("mock://paper?connected=true&fixtures=true&timeout=250ms")
	assert.NilError(t, err)
	assert.DeepEqual(t, *cfg, configMockAdapter{
		Name:      "paper",
		Connected: true,
		Fixtures:  true,
		Timeout:   250 * time.Millisecond,
	})

	cfg, err = parseDsnMock("mock://")
	assert.NilError(t, err)
	assert.Equal(t, cfg.Name, "mock")
	assert.Check(t, !cfg.Connected)

	_, err = parseDsnMock("mock://paper?timeout=later")
	assert.ErrorContains(t, err, "invalid timeout value")
}

func TestNewAdapter(t *testing.T) {
	logger := zap.NewNop()

	adapter, err := NewAdapter(logger, " mock://paper?connected=true&timeout=1s ")
	assert.NilError(t, err)
	assert.Equal(t, adapter.Name(), "paper")
	assert.Equal(t, adapter.ConnectionSettings().TimeoutInterval, time.Second)
	_, isMock := adapter.(*MockAdapter)
	assert.Check(t, isMock)

	_, err = NewAdapter(logger, "zmq://10.195.46.21")
	assert.ErrorContains(t, err, "fail parse zmq dsn")

	adapter, err = NewAdapter(logger, "amqp://localhost")
	assert.ErrorContains(t, err, "config not supported")
	assert.Check(t, adapter == nil)
}
