package presence

//go:generate mockgen -destination=mock_clock.go -package=presence github.com/carverauto/pulse/pkg/presence Clock,Ticker

import "time"

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	Ticker(d time.Duration) Ticker
}

// Ticker abstracts the ticker behavior.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// Conn is the opaque transport handle recorded per connection identifier.
// The store never depends on a concrete transport; it only needs to be able
// to push bytes back and to discard the handle.
type Conn interface {
	Send(data []byte) error
	Close() error
}
