package semnet

import (
	"context"
	"net/http"
	"net/http/pprof"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	clog "github.com/vilterp/semnet/pkg/log"
	"github.com/vilterp/semnet/pkg/scenario"
)

// Server answers requests against a fixed catalog of scenarios. Scenarios
// are immutable and every request builds its own context, so connections
// share no mutable state beyond the connection table.
type Server struct {
	catalog    *scenario.Catalog
	config     *Config
	metrics    *metrics
	httpServer *http.Server
	ctx        context.Context

	mu struct {
		sync.Mutex
		connections      map[connectionID]*connection
		nextConnectionID int
	}
}

func NewServer(catalog *scenario.Catalog, config *Config) *Server {
	s := &Server{
		catalog: catalog,
		config:  config,
		ctx:     context.Background(),
	}
	s.mu.connections = make(map[connectionID]*connection)
	s.metrics = newMetrics(s)
	s.httpServer = &http.Server{Addr: config.Addr(), Handler: s.newHandler()}
	return s
}

func (s *Server) Ctx() context.Context {
	return s.ctx
}

// Handler serves /ws, /metrics and /healthz.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) newHandler() http.Handler {
	mux := http.NewServeMux()

	// Serve metrics.
	mux.Handle(
		"/metrics",
		promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}),
	)
	mux.HandleFunc("/healthz", func(resp http.ResponseWriter, _ *http.Request) {
		resp.Header().Set("Content-Type", "text/plain")
		_, _ = resp.Write([]byte("ok\n"))
	})

	if s.config.Pprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	// Serve WebSocket endpoint for requests.
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	mux.HandleFunc("/ws", func(resp http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(resp, req, nil)
		if err != nil {
			clog.Println(s, "upgrade failed:", err)
			return
		}
		s.addConnection(conn)
	})

	return mux
}

func (s *Server) checkOrigin(req *http.Request) bool {
	origin := req.Header.Get("Origin")
	if len(s.config.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	for _, allowed := range s.config.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// addConnection serves a websocket until it closes.
func (s *Server) addConnection(wsConn *websocket.Conn) {
	s.mu.Lock()
	conn := newConnection(wsConn, s, s.mu.nextConnectionID)
	s.mu.nextConnectionID++
	s.mu.connections[conn.id] = conn
	s.mu.Unlock()

	conn.handleRequests()
}

func (s *Server) removeConn(conn *connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mu.connections, conn.id)
}

func (s *Server) ListenAndServe() error {
	clog.Printf(s, "serving HTTP at http://%s/", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests, then closes open websockets.
func (s *Server) Shutdown(ctx context.Context) error {
	clog.Println(s, "shutting down http server...")
	err := s.httpServer.Shutdown(ctx)
	s.closeConnections()
	clog.Println(s, "bye!")
	return err
}

func (s *Server) Close() error {
	clog.Println(s, "closing http server...")
	err := s.httpServer.Close()
	s.closeConnections()
	clog.Println(s, "bye!")
	return err
}

func (s *Server) closeConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.mu.connections {
		if err := conn.clientConn.Close(); err != nil {
			clog.Println(conn, "error closing:", err)
		}
	}
}
