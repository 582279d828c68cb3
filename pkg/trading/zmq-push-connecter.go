package trading

// pushConnecter carries venue requests
type pushConnecter interface {

	// SendRequest encodes msg into the wire envelope and sends it
	SendRequest(msg Message) error

	// IsReady inform about ready transport status
	IsReady() bool

	// Ready streams ready state transitions
	Ready() chan bool

	Close() error
}
