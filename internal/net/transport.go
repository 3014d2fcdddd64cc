package net

import (
	"errors"
	"time"
)

var (
	// ErrNotBound is returned by Send and Receive before a successful Bind.
	ErrNotBound = errors.New("transport not bound")
	// ErrBindFailed wraps socket-level bind failures such as a port in use.
	ErrBindFailed = errors.New("bind failed")
	// ErrAlreadyBound is returned by a second Bind on the same transport.
	ErrAlreadyBound = errors.New("transport already bound")
	// ErrDatagramTooLarge is returned by Receive for a datagram over the
	// configured size. The datagram is dropped.
	ErrDatagramTooLarge = errors.New("datagram too large")
)

// Message is one inbound datagram. Payload is owned by the caller.
type Message struct {
	Payload []byte
	Addr    string
	Port    int
}

// Transport is the minimal datagram contract game-networking code relies
// on. Delivery is unreliable and unordered; payloads are opaque bytes.
type Transport interface {
	// Bind acquires a local endpoint. Port 0 picks an ephemeral port.
	Bind(port int) error
	// Send fires one datagram at addr:port without waiting for delivery.
	Send(payload []byte, addr string, port int) error
	// Receive waits at most timeout for one datagram. The bool is false
	// when the timeout expired with nothing received.
	Receive(timeout time.Duration) (Message, bool, error)
	// Close releases the endpoint. It is idempotent and safe before Bind.
	Close() error
}
