package net

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Server pumps inbound datagrams from a bound Transport into the game loop.
// The receive loop runs in its own goroutine and never touches game state;
// datagrams are handed over through a bounded channel.
type Server struct {
	transport   Transport
	pollTimeout time.Duration
	inbound     chan Message
	log         *zap.Logger

	closeCh   chan struct{}
	closeOnce sync.Once
	started   atomic.Bool
	done      chan struct{}
}

func NewServer(transport Transport, pollTimeout time.Duration, queueSize int, log *zap.Logger) *Server {
	return &Server{
		transport:   transport,
		pollTimeout: pollTimeout,
		inbound:     make(chan Message, queueSize),
		log:         log,
		closeCh:     make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// ReceiveLoop runs in its own goroutine until Shutdown. Each iteration
// waits at most pollTimeout so shutdown is noticed promptly.
func (s *Server) ReceiveLoop() {
	s.started.Store(true)
	defer close(s.done)
	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		msg, ok, err := s.transport.Receive(s.pollTimeout)
		if err != nil {
			select {
			case <-s.closeCh:
				return // server shutting down
			default:
			}
			if errors.Is(err, ErrNotBound) {
				s.log.Error("receive loop stopped: transport not bound")
				return
			}
			s.log.Warn("datagram receive failed", zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		select {
		case s.inbound <- msg:
		default:
			s.log.Warn("inbound queue full, dropping datagram",
				zap.String("from", msg.Addr), zap.Int("port", msg.Port))
		}
	}
}

// Inbound returns the channel of received datagrams.
func (s *Server) Inbound() <-chan Message {
	return s.inbound
}

// Transport returns the underlying transport, e.g. to reply to a peer.
func (s *Server) Transport() Transport {
	return s.transport
}

// Shutdown stops the receive loop, waits for it to exit and closes the
// transport. Safe to call more than once.
func (s *Server) Shutdown() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeCh)
		err = s.transport.Close()
		if !s.started.Load() {
			return
		}
		select {
		case <-s.done:
		case <-time.After(s.pollTimeout + time.Second):
			s.log.Warn("receive loop did not stop in time")
		}
	})
	return err
}
