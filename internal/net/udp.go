package net

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// UDPSocket implements Transport over a single UDP socket.
// Send and Receive may be called from different goroutines; Close may be
// called at any time and unblocks a pending Receive.
type UDPSocket struct {
	host string
	log  *zap.Logger

	mu   sync.Mutex
	conn *net.UDPConn

	readMu  sync.Mutex // serialises Receive so buf is never shared
	buf     []byte
	maxSize int
}

// maxUDPPayload is the largest payload a UDP datagram can carry.
const maxUDPPayload = 65535

var _ Transport = (*UDPSocket)(nil)

// NewUDPSocket creates an unbound socket that will bind on host.
// maxSize caps the datagram size Receive accepts; a longer datagram is
// consumed and reported as ErrDatagramTooLarge, never truncated.
func NewUDPSocket(host string, maxSize int, log *zap.Logger) *UDPSocket {
	if maxSize <= 0 {
		maxSize = 1024
	}
	if maxSize > maxUDPPayload {
		maxSize = maxUDPPayload
	}
	return &UDPSocket{
		host:    host,
		log:     log,
		buf:     make([]byte, maxUDPPayload),
		maxSize: maxSize,
	}
}

func (s *UDPSocket) Bind(port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return ErrAlreadyBound
	}

	ip := net.IPv4zero
	if s.host != "" {
		ip = net.ParseIP(s.host)
		if ip == nil {
			return fmt.Errorf("%w: invalid host %q", ErrBindFailed, s.host)
		}
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: ip, Port: port})
	if err != nil {
		return fmt.Errorf("%w: %s:%d: %w", ErrBindFailed, s.host, port, err)
	}
	s.conn = conn
	s.log.Info("udp socket bound", zap.String("addr", conn.LocalAddr().String()))
	return nil
}

func (s *UDPSocket) bound() (*net.UDPConn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, ErrNotBound
	}
	return s.conn, nil
}

func (s *UDPSocket) Send(payload []byte, addr string, port int) error {
	conn, err := s.bound()
	if err != nil {
		return err
	}
	dst, err := net.ResolveUDPAddr("udp", net.JoinHostPort(addr, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("resolve %s:%d: %w", addr, port, err)
	}
	if _, err := conn.WriteToUDP(payload, dst); err != nil {
		return fmt.Errorf("send to %s: %w", dst, err)
	}
	return nil
}

func (s *UDPSocket) Receive(timeout time.Duration) (Message, bool, error) {
	conn, err := s.bound()
	if err != nil {
		return Message{}, false, err
	}

	s.readMu.Lock()
	defer s.readMu.Unlock()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return Message{}, false, fmt.Errorf("set read deadline: %w", err)
	}
	n, from, err := conn.ReadFromUDP(s.buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return Message{}, false, nil
		}
		if errors.Is(err, net.ErrClosed) {
			return Message{}, false, ErrNotBound
		}
		return Message{}, false, fmt.Errorf("receive: %w", err)
	}
	if n > s.maxSize {
		return Message{}, false, fmt.Errorf("%w: %d bytes from %s, limit %d", ErrDatagramTooLarge, n, from, s.maxSize)
	}

	payload := make([]byte, n)
	copy(payload, s.buf[:n])
	return Message{
		Payload: payload,
		Addr:    from.IP.String(),
		Port:    from.Port,
	}, true, nil
}

func (s *UDPSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.log.Debug("udp socket closed")
	return err
}

// LocalPort returns the bound port, or 0 when unbound.
func (s *UDPSocket) LocalPort() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return 0
	}
	return s.conn.LocalAddr().(*net.UDPAddr).Port
}
