package system

import (
	"time"

	"github.com/rtype/engine/internal/core/event"
	coresys "github.com/rtype/engine/internal/core/system"
	gonet "github.com/rtype/engine/internal/net"
	"go.uber.org/zap"
)

// InputSystem drains datagrams received by the network server and turns
// them into DatagramReceived events. It never touches the Registry.
// Phase 0 (Input).
type InputSystem struct {
	server  *gonet.Server
	bus     *event.Bus
	maxPer  int
	echo    bool
	log     *zap.Logger
	drained uint64
}

// NewInputSystem drains at most maxPerTick datagrams per tick. With echo
// set every payload is sent back to its sender.
func NewInputSystem(server *gonet.Server, bus *event.Bus, maxPerTick int, echo bool, log *zap.Logger) *InputSystem {
	return &InputSystem{
		server: server,
		bus:    bus,
		maxPer: maxPerTick,
		echo:   echo,
		log:    log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for i := 0; i < s.maxPer; i++ {
		select {
		case msg := <-s.server.Inbound():
			s.handle(msg)
		default:
			return
		}
	}
}

func (s *InputSystem) handle(msg gonet.Message) {
	s.drained++
	s.log.Info("datagram received",
		zap.String("from", msg.Addr),
		zap.Int("port", msg.Port),
		zap.Int("bytes", len(msg.Payload)))
	event.Emit(s.bus, event.DatagramReceived{Payload: msg.Payload, Addr: msg.Addr, Port: msg.Port})

	if s.echo {
		if err := s.server.Transport().Send(msg.Payload, msg.Addr, msg.Port); err != nil {
			s.log.Warn("echo failed", zap.Error(err))
		}
	}
}

// Drained returns the total number of datagrams consumed.
func (s *InputSystem) Drained() uint64 { return s.drained }
