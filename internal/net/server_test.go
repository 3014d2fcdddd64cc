package net_test

import (
	"testing"
	"time"

	gonet "github.com/rtype/engine/internal/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestServerDeliversInbound(t *testing.T) {
	sock := gonet.NewUDPSocket("127.0.0.1", 0, zaptest.NewLogger(t))
	require.NoError(t, sock.Bind(0))

	srv := gonet.NewServer(sock, 10*time.Millisecond, 8, zaptest.NewLogger(t))
	go srv.ReceiveLoop()
	defer srv.Shutdown()

	peer := bindLoopback(t)
	require.NoError(t, peer.Send([]byte("ping"), "127.0.0.1", sock.LocalPort()))

	select {
	case msg := <-srv.Inbound():
		assert.Equal(t, []byte("ping"), msg.Payload)
		assert.Equal(t, peer.LocalPort(), msg.Port)
	case <-time.After(2 * time.Second):
		t.Fatal("datagram not delivered")
	}
}

func TestServerShutdownClosesTransport(t *testing.T) {
	sock := gonet.NewUDPSocket("127.0.0.1", 0, zaptest.NewLogger(t))
	require.NoError(t, sock.Bind(0))

	srv := gonet.NewServer(sock, 10*time.Millisecond, 1, zaptest.NewLogger(t))
	go srv.ReceiveLoop()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, srv.Shutdown())
	assert.NoError(t, srv.Shutdown())
	assert.ErrorIs(t, sock.Send([]byte("x"), "127.0.0.1", 9), gonet.ErrNotBound)
}

func TestServerDropsWhenQueueFull(t *testing.T) {
	sock := gonet.NewUDPSocket("127.0.0.1", 0, zaptest.NewLogger(t))
	require.NoError(t, sock.Bind(0))

	srv := gonet.NewServer(sock, 10*time.Millisecond, 1, zaptest.NewLogger(t))
	go srv.ReceiveLoop()
	defer srv.Shutdown()

	peer := bindLoopback(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, peer.Send([]byte{byte(i)}, "127.0.0.1", sock.LocalPort()))
	}

	time.Sleep(100 * time.Millisecond)
	assert.Len(t, srv.Inbound(), 1)
}
