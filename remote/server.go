package remote

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/xtermjs/backend"
	"github.com/lixenwraith/xtermjs/logger"
)

//go:embed static
var staticFiles embed.FS

// Handler drives one session. The session is closed when it returns.
type Handler func(ctx context.Context, s *Session) error

// Server serves the xterm.js page and runs a Handler per WebSocket session
type Server struct {
	config   *Config
	handler  Handler
	beOpts   []backend.Option
	router   *chi.Mux
	upgrader websocket.Upgrader

	httpSrv  *http.Server
	listener net.Listener

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	active   int  // admitted sockets, including those still upgrading
	stopping bool // set by Stop; no socket is admitted afterwards

	ctx    context.Context
	cancel context.CancelFunc

	running atomic.Bool
	wg      sync.WaitGroup

	log zerolog.Logger
}

// NewServer creates a server; opts configure every session's backend
func NewServer(cfg *Config, h Handler, opts ...backend.Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:   cfg,
		handler:  h,
		beOpts:   opts,
		sessions: make(map[uuid.UUID]*Session),
		ctx:      ctx,
		cancel:   cancel,
		log:      logger.WithComponent("remote"),
		upgrader: websocket.Upgrader{
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   cfg.ReadBufferSize,
			WriteBufferSize:  cfg.WriteBufferSize,
			CheckOrigin:      cfg.checkOrigin,
		},
	}
	s.router = s.routes()
	return s
}

// Router exposes the HTTP handler, for embedding or tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err) // embedded tree is fixed at build time
	}
	r.With(s.handleCORS).Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleSocket)
	r.Handle("/*", http.FileServer(http.FS(static)))
	return r
}

// handleCORS lets dashboards on the allowed origins poll /healthz. No configured
// origins allows any.
func (s *Server) handleCORS(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept"},
		MaxAge:         300,
	})(next)
}

// Start binds the configured address and serves in the background
func (s *Server) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return nil // Already running
	}

	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("listen %s: %w", s.config.Address, err)
	}
	s.listener = ln
	s.httpSrv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.HandshakeTimeout,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("http server failed")
		}
	}()

	s.log.Info().Str("address", ln.Addr().String()).Msg("serving xterm.js sessions")
	return nil
}

// Addr returns the bound address once started
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop cancels every session, waits for handlers to return, and shuts the listener down
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()
	s.cancel()

	var err error
	if s.running.CompareAndSwap(true, false) {
		err = s.httpSrv.Shutdown(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
	return err
}

// SessionCount returns the number of open sessions
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.SessionCount(),
	})
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	if msg := s.admit(); msg != "" {
		http.Error(w, msg, http.StatusServiceUnavailable)
		return
	}
	defer s.release()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}
	s.serveSession(conn)
}

// admit reserves a session slot and registers it with the WaitGroup under the
// same lock Stop uses, so Stop never waits while a socket is being admitted.
// It returns the refusal reason, or "" when admitted.
func (s *Server) admit() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return "server stopping"
	}
	if s.config.MaxSessions > 0 && s.active >= s.config.MaxSessions {
		return "too many sessions"
	}
	s.active++
	s.wg.Add(1)
	return ""
}

func (s *Server) release() {
	s.mu.Lock()
	s.active--
	s.mu.Unlock()
	s.wg.Done()
}

// serveSession runs the handler on this goroutine and tears the session down after
func (s *Server) serveSession(conn *websocket.Conn) {
	id := uuid.New()
	term := newTerminal(id, conn, s.config)
	term.run()

	if !term.waitHello(s.config.HelloTimeout) {
		term.log.Debug().Msg("no hello from page, using default size")
	}

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	go func() {
		select {
		case <-term.Closed():
			cancel()
		case <-ctx.Done():
		}
	}()

	sess := &Session{
		ID:       id,
		Terminal: term,
		Backend:  backend.New(term, s.beOpts...),
		ctx:      ctx,
	}
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	term.log.Info().Int("cols", term.Cols()).Int("rows", term.Rows()).Msg("session opened")
	start := time.Now()

	herr := s.runHandler(ctx, sess)
	cerr := sess.Close()

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	ev := term.log.Info()
	if herr != nil || cerr != nil {
		ev = term.log.Warn().AnErr("handler_error", herr).AnErr("close_error", cerr)
	}
	ev.Dur("duration", time.Since(start)).Msg("session closed")
}

// runHandler converts a handler panic into an error so the session still closes cleanly
func (s *Server) runHandler(ctx context.Context, sess *Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	if s.handler == nil {
		<-ctx.Done()
		return nil
	}
	return s.handler(ctx, sess)
}

// requestLogger logs every HTTP request at debug level
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
