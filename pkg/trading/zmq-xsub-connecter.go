package trading

// xsubConnecter carries venue replies
type xsubConnecter interface {

	// IsReady inform about ready transport status
	IsReady() bool

	// Ready streams ready state transitions
	Ready() chan bool

	// Subscribe for replies published under topic
	Subscribe(topic string) error

	UnSubscribe(topic string) error

	// Messages streams decoded replies, closed when the socket fails
	Messages() chan Message

	GetAddr() string

	Close() error
}
