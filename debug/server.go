// Package debug serves an optional HTTP surface for inspecting the
// tracing pipeline in a running process: health, Prometheus metrics,
// recent spans, and a live span feed over WebSocket.
package debug

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tracewire/tracewire/reporter"
	"github.com/tracewire/tracewire/trace"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Debug surface binds to loopback by default
	},
}

// Options configures the debug server.
type Options struct {
	Host     string
	Port     string
	RingSize int
	Logger   *zap.Logger
}

// Server exposes tracing internals over HTTP. It implements
// trace.Reporter, so it composes with other sinks through
// reporter.Multi.
type Server struct {
	ring   *reporter.Ring
	logger *zap.Logger
	router *gin.Engine
	srv    *http.Server

	mu   sync.Mutex
	subs map[chan spanView]struct{}
}

// spanView is the JSON shape served for a span.
type spanView struct {
	TraceID  string            `json:"trace_id"`
	SpanID   string            `json:"span_id"`
	ParentID string            `json:"parent_id,omitempty"`
	Kind     string            `json:"kind,omitempty"`
	Name     string            `json:"name"`
	Tags     map[string]string `json:"tags,omitempty"`
	Remote   *trace.Endpoint   `json:"remote_endpoint,omitempty"`
	Start    time.Time         `json:"start"`
	Duration string            `json:"duration"`
}

// NewServer creates the debug server. Call Run to start serving.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Accept", "Origin"},
		MaxAge:       12 * time.Hour,
	}))

	s := &Server{
		ring:   reporter.NewRing(opts.RingSize),
		logger: opts.Logger,
		router: router,
		subs:   make(map[chan spanView]struct{}),
		srv: &http.Server{
			Addr:    net.JoinHostPort(opts.Host, opts.Port),
			Handler: router,
		},
	}

	router.GET("/healthz", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/api/spans", s.recentSpans)
	router.GET("/api/spans/stream", s.streamSpans)

	return s
}

// Report stores the span in the ring and feeds live subscribers. Slow
// subscribers miss spans rather than block the pipeline.
func (s *Server) Report(span *trace.Span) {
	s.ring.Report(span)

	view := viewOf(span)
	s.mu.Lock()
	for ch := range s.subs {
		select {
		case ch <- view:
		default:
		}
	}
	s.mu.Unlock()
}

// Run starts serving. Blocks until the listener fails or Close is
// called.
func (s *Server) Run() error {
	s.logger.Info("debug server listening", zap.String("addr", s.srv.Addr))
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close shuts the server down gracefully.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "spans_buffered": s.ring.Len()})
}

func (s *Server) recentSpans(c *gin.Context) {
	spans := s.ring.Recent()
	views := make([]spanView, 0, len(spans))
	for _, span := range spans {
		views = append(views, viewOf(span))
	}

	body, err := sonic.Marshal(views)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode spans"})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

func (s *Server) streamSpans(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ch := make(chan spanView, 64)
	s.subscribe(ch)
	defer s.unsubscribe(ch)

	for view := range ch {
		if err := conn.WriteJSON(view); err != nil {
			return
		}
	}
}

func (s *Server) subscribe(ch chan spanView) {
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) unsubscribe(ch chan spanView) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}

func viewOf(span *trace.Span) spanView {
	sc := span.Context()
	return spanView{
		TraceID:  sc.TraceID,
		SpanID:   sc.SpanID,
		ParentID: sc.ParentID,
		Kind:     string(span.Kind()),
		Name:     span.Name(),
		Tags:     span.Tags(),
		Remote:   span.RemoteEndpoint(),
		Start:    span.StartTime(),
		Duration: span.Duration().String(),
	}
}
