// Package transport implements the JSON-over-websocket control plane
// (spec §4.8): one command in, one broadcast-to-all-peers reply out.
// Adapted from the teacher's network package (which spoke HTTP/JSON to
// a streaming station directory) reworked around
// github.com/gorilla/websocket, grounded on the original
// CustomWebSocketServer (ixwebsocket-based: per-connection message
// callback, disablePerMessageDeflate, broadcast-to-all-clients reply).
package transport

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/l-bnp/audioproc/internal/domain"
	"github.com/l-bnp/audioproc/internal/eventbus"
	"github.com/l-bnp/audioproc/internal/logger"
)

// Config mirrors config.TransportConfig; kept as its own type so this
// package does not depend on internal/config.
type Config struct {
	ReadBufferSize  int
	WriteBufferSize int
	WriteTimeout    time.Duration
	// SampleRate grounds set_filter's Nyquist bound check (spec §7(f)).
	SampleRate int
}

func DefaultConfig() Config {
	return Config{ReadBufferSize: 4096, WriteBufferSize: 4096, WriteTimeout: 5 * time.Second, SampleRate: 48000}
}

// Server fans control messages from any connected peer onto the bus,
// and fans notify_*/error replies from the bus (or parsed locally) out
// to every connected peer — the original's broadcast-to-all-clients
// semantics, not a per-request response.
type Server struct {
	cfg      Config
	bus      *eventbus.Bus
	upgrader websocket.Upgrader

	mu    sync.Mutex
	peers map[*websocket.Conn]struct{}

	httpServer *http.Server
}

// NewServer subscribes the broadcast-on-notify side of the dispatch
// table (spec §4.8's "reply broadcast" column) and returns a Server
// ready to accept connections via Serve.
func NewServer(bus *eventbus.Bus, cfg Config) *Server {
	s := &Server{
		cfg:   cfg,
		bus:   bus,
		peers: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			// Disabling compression matches the original's
			// disablePerMessageDeflate(), a Raspberry-Pi-class CPU
			// concession.
			EnableCompression: false,
			CheckOrigin:       func(r *http.Request) bool { return true },
		},
	}

	eventbus.OnGain(bus, eventbus.EventNotifyGain, func(n eventbus.GainNotification) {
		s.broadcast(gainResponse(eventbus.EventNotifyGain, n))
	})
	eventbus.OnMute(bus, eventbus.EventNotifyMute, func(n eventbus.MuteNotification) {
		s.broadcast(muteResponse(eventbus.EventNotifyMute, n))
	})
	eventbus.OnMixer(bus, eventbus.EventNotifyMixer, func(n eventbus.MixerNotification) {
		s.broadcast(mixerResponse(eventbus.EventNotifyMixer, n))
	})
	eventbus.OnFilter(bus, eventbus.EventNotifyFilter, func(n eventbus.FilterNotification) {
		commandType := n.CommandType
		if commandType == "" {
			commandType = eventbus.EventNotifyFilter
		}
		s.broadcast(filterResponse(commandType, n))
	})
	eventbus.OnMeter(bus, eventbus.EventNotifyMeter, func(n eventbus.MeterNotification) {
		s.broadcast(meterResponse(eventbus.EventNotifyMeter, n))
	})

	return s
}

// Handler returns the HTTP handler that upgrades incoming requests to
// websocket connections, exposed separately from Serve so tests can
// drive it through httptest.NewServer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleUpgrade)
	return mux
}

// Serve binds addr (spec §4.8: "0.0.0.0:<port>") and blocks until the
// listener errors or Close is called.
func (s *Server) Serve(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.Handler()}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	logger.Info("control transport listening", logger.String("addr", addr))
	return s.httpServer.Serve(ln)
}

// Close drops every connected peer and stops accepting new ones.
func (s *Server) Close() error {
	s.mu.Lock()
	for c := range s.peers {
		c.Close()
	}
	s.peers = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", logger.Error(err))
		return
	}

	s.mu.Lock()
	s.peers[conn] = struct{}{}
	s.mu.Unlock()

	logger.Info("control peer connected", logger.String("remote", conn.RemoteAddr().String()))

	go s.readLoop(conn)
}

func (s *Server) readLoop(conn *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.peers, conn)
		s.mu.Unlock()
		conn.Close()
		logger.Info("control peer disconnected", logger.String("remote", conn.RemoteAddr().String()))
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		s.handleMessage(data)
	}
}

func (s *Server) handleMessage(data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Warn("control message parse failed", logger.Error(err))
		s.broadcast(errorResponse("parse_error", err.Error()))
		return
	}

	if msg.CommandType == "" {
		logger.Warn("control message missing command_type")
		s.broadcast(errorResponse("missing_command", ""))
		return
	}

	if err := dispatch(s.bus, msg, s.cfg.SampleRate); err != nil {
		logger.Warn("control message dispatch failed",
			logger.String("command_type", msg.CommandType), logger.Error(err))
		if cerr, ok := err.(*domain.CommandError); ok {
			s.broadcast(errorResponse(cerr.ErrorType, cerr.ErrorMessage))
			return
		}
		s.broadcast(errorResponse("unknown_command", "fail"))
	}
}

func (s *Server) broadcast(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		logger.ErrorLog("control response marshal failed", logger.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.peers {
		conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Warn("control broadcast write failed",
				logger.String("remote", conn.RemoteAddr().String()), logger.Error(err))
		}
	}
}
