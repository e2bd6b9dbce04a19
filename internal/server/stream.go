// Package server streams engine snapshots to websocket viewers and accepts
// simple control commands from them.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeusync/impulse/internal/core/observability/log"
	"github.com/zeusync/impulse/internal/core/physics/debugdraw"
	"github.com/zeusync/impulse/internal/core/physics/engine"
	"github.com/zeusync/impulse/pkg/generic"
)

// Config holds stream server configuration
type Config struct {
	ListenAddr string
	MaxClients int

	// SendBuffer is the number of snapshots queued per client before new
	// ones are dropped for that client.
	SendBuffer     int
	WriteTimeout   time.Duration
	MaxMessageSize int64

	// CommandBuffer bounds the commands waiting for the simulation loop.
	CommandBuffer int
}

// DefaultConfig returns default stream server configuration
func DefaultConfig() Config {
	return Config{
		ListenAddr:     "127.0.0.1:8080",
		MaxClients:     64,
		SendBuffer:     16,
		WriteTimeout:   5 * time.Second,
		MaxMessageSize: 1024,
		CommandBuffer:  16,
	}
}

// CommandType names a viewer request.
type CommandType string

const (
	CommandPause  CommandType = "pause"
	CommandResume CommandType = "resume"
	// CommandStep asks for a single step while paused.
	CommandStep CommandType = "step"
)

// Command is sent by viewers as JSON. The server only queues commands; the
// simulation loop applies them between steps.
type Command struct {
	Type CommandType `json:"type"`
}

func (c Command) validate() error {
	switch c.Type {
	case CommandPause, CommandResume, CommandStep:
		return nil
	default:
		return fmt.Errorf("%q: %w", c.Type, ErrInvalidCommand)
	}
}

// Stats are the server's delivery counters.
type Stats struct {
	Clients   int
	Published uint64
	Sent      uint64
	Dropped   uint64
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// StreamServer broadcasts a Snapshot after each published step.
type StreamServer struct {
	config   Config
	logger   log.Log
	upgrader websocket.Upgrader

	server   *http.Server
	listener net.Listener
	running  atomic.Bool

	mu      sync.Mutex
	clients map[*client]struct{}

	commands chan Command

	// publishMu serialises Publish so the recorder can be reused.
	publishMu sync.Mutex
	recorder  *debugdraw.Recorder
	buffers   *generic.Pool[*bytes.Buffer]
	last      atomic.Pointer[[]byte]

	published atomic.Uint64
	sent      atomic.Uint64
	dropped   atomic.Uint64
}

func NewStreamServer(config Config, logger log.Log) *StreamServer {
	if logger == nil {
		logger = log.NewNop()
	}
	return &StreamServer{
		config: config,
		logger: logger.With(log.String("component", "stream")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients:  make(map[*client]struct{}),
		commands: make(chan Command, max(config.CommandBuffer, 1)),
		recorder: debugdraw.NewRecorder(),
		buffers:  generic.NewResetPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset),
	}
}

// Handler serves /ws for viewers and /snapshot for the latest snapshot as
// plain JSON.
func (s *StreamServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *StreamServer) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Stream server stopped", log.Error(err))
		}
	}()

	s.logger.Info("Stream server started", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr is the bound address once started.
func (s *StreamServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts the HTTP server down and disconnects every viewer.
func (s *StreamServer) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}
	err := s.server.Shutdown(ctx)

	s.mu.Lock()
	for c := range s.clients {
		s.dropLocked(c)
	}
	s.mu.Unlock()

	s.logger.Info("Stream server stopped")
	return err
}

// Commands delivers viewer commands to the simulation loop.
func (s *StreamServer) Commands() <-chan Command { return s.commands }

// Publish captures e and broadcasts it. It must be called between steps, from
// the goroutine that steps e.
func (s *StreamServer) Publish(e *engine.Engine) error {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	snap := Capture(e, s.recorder)

	buf := s.buffers.Get()
	defer s.buffers.Put(buf)
	if err := json.NewEncoder(buf).Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	msg := bytes.Clone(buf.Bytes())
	s.last.Store(&msg)
	s.published.Add(1)

	s.broadcast(msg)
	return nil
}

func (s *StreamServer) Stats() Stats {
	s.mu.Lock()
	n := len(s.clients)
	s.mu.Unlock()
	return Stats{
		Clients:   n,
		Published: s.published.Load(),
		Sent:      s.sent.Load(),
		Dropped:   s.dropped.Load(),
	}
}

func (s *StreamServer) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *StreamServer) broadcast(msg []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			s.dropped.Add(1)
		}
	}
}

func (s *StreamServer) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	msg := s.last.Load()
	if msg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(*msg)
}

func (s *StreamServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.config.MaxClients > 0 && s.ClientCount() >= s.config.MaxClients {
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("Websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, max(s.config.SendBuffer, 1)),
	}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug("Viewer connected", log.String("remote", conn.RemoteAddr().String()))

	go s.writeLoop(c)
	s.readLoop(c)
}

func (s *StreamServer) readLoop(c *client) {
	defer s.drop(c)
	if s.config.MaxMessageSize > 0 {
		c.conn.SetReadLimit(s.config.MaxMessageSize)
	}

	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				s.logger.Debug("Malformed command", log.Error(err))
				continue
			}
			return
		}
		if err := cmd.validate(); err != nil {
			s.logger.Debug("Rejected command", log.Error(err))
			continue
		}
		select {
		case s.commands <- cmd:
		default:
			s.logger.Warn("Command queue full", log.String("command", string(cmd.Type)))
		}
	}
}

func (s *StreamServer) writeLoop(c *client) {
	defer func() { _ = c.conn.Close() }()
	for msg := range c.send {
		if s.config.WriteTimeout > 0 {
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			s.logger.Debug("Viewer write failed", log.Error(err))
			s.drop(c)
			return
		}
		s.sent.Add(1)
	}
}

func (s *StreamServer) drop(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(c)
}

// dropLocked closes the client's queue; writeLoop then closes the connection,
// which also ends readLoop.
func (s *StreamServer) dropLocked(c *client) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	close(c.send)
}
