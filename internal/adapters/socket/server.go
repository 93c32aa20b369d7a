package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corey/tabwarden/internal/ports"
)

// Server is the daemon endpoint that listens on a Unix socket and serves
// events, queries and control requests.
type Server struct {
	queries  AppQueries
	log      *zap.Logger
	listener net.Listener
	sockPath string
	started  time.Time

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a daemon server. log may be nil.
func NewServer(sockPath string, queries AppQueries, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		queries:    queries,
		log:        log,
		sockPath:   sockPath,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first. If the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop gracefully shuts down the server, closing the listener and removing the socket file.
// Idempotent: safe to call multiple times (e.g., after remote shutdown + signal).
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine should select on this alongside
// OS signals so the process actually exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Unblock the scanner when the server stops.
	connDone := make(chan struct{})
	defer close(connDone)
	go func() {
		select {
		case <-s.done:
			conn.SetReadDeadline(time.Now())
		case <-connDone:
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024) // 1MB max message

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		resp := s.handleRequest(req)
		if req.Method == MethodShutdown {
			// Signal before acknowledging so the caller can rely on it.
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			s.writeResponse(conn, resp)
			return
		}
		s.writeResponse(conn, resp)
	}
}

func (s *Server) handleRequest(req Request) Response {
	if s.queries == nil && req.Method != MethodHealth && req.Method != MethodShutdown {
		return Response{ID: req.ID, Error: "daemon not ready"}
	}
	switch req.Method {
	case MethodEvent:
		return s.handleEvent(req)
	case MethodHealth:
		return s.handleHealth(req)
	case MethodStatus:
		return s.handleStatus(req)
	case MethodStats:
		return s.handleStats(req)
	case MethodTrend:
		return s.handleTrend(req)
	case MethodInsights:
		return s.handleInsights(req)
	case MethodSprint:
		return s.handleSprint(req)
	case MethodReset:
		return s.handleReset(req)
	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

func (s *Server) handleEvent(req Request) Response {
	var ev ports.Event
	if err := json.Unmarshal(req.Params, &ev); err != nil {
		return Response{ID: req.ID, Error: "invalid event params"}
	}
	if !ev.Valid() {
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown event kind: %q", ev.Kind)}
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if err := s.queries.Submit(ev); err != nil {
		s.log.Warn("event rejected", zap.String("id", ev.ID), zap.Error(err))
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: EventResult{ID: ev.ID, Queued: true}}
}

func (s *Server) handleHealth(req Request) Response {
	result := HealthResult{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Second).String(),
	}
	if s.queries != nil {
		result.Events = s.queries.EventCount()
		result.Generator = s.queries.GeneratorName()
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleStatus(req Request) Response {
	st, err := s.queries.Status()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: st}
}

func (s *Server) handleStats(req Request) Response {
	result, err := s.queries.Stats()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleTrend(req Request) Response {
	result, err := s.queries.Trend()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleInsights(req Request) Response {
	result, err := s.queries.Insights()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleSprint(req Request) Response {
	var params SprintParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid sprint params"}
	}
	result, err := s.queries.SetSprint(params.Active)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleReset(req Request) Response {
	if err := s.queries.Reset(); err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	s.log.Info("state reset by client")
	return Response{ID: req.ID, Result: struct{}{}}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("marshal response", zap.Error(err))
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}
