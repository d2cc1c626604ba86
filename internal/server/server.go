package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"
	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/wfm"
	"github.com/kode4food/wfm/internal/util"
	"github.com/kode4food/wfm/pkg/api"
	"github.com/kode4food/wfm/pkg/bus"
	"github.com/kode4food/wfm/pkg/client"
)

// Server implements the HTTP gateway in front of the workflow client
type Server struct {
	client   *client.Client
	events   topic.Topic[*api.StatusEvent]
	producer topic.Producer[*api.StatusEvent]
	sockets  util.Set[*Socket]
	mu       sync.Mutex
}

var (
	ErrInvalidJSON = errors.New("invalid JSON request")
	ErrGetProfile  = errors.New("failed to get user profile")
)

// NewServer creates a new HTTP gateway
func NewServer(cl *client.Client) *Server {
	events := caravan.NewTopic[*api.StatusEvent]()
	return &Server{
		client:   cl,
		events:   events,
		producer: events.NewProducer(),
		sockets:  util.Set[*Socket]{},
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.GET("/health", s.handleHealth)

	g := router.Group("/wfm")
	{
		// Workflow endpoints
		g.GET("/workflows", s.listWorkflows)
		g.POST("/workflows", s.createWorkflow)
		g.GET("/workflows/:workflowID", s.getWorkflow)
		g.PUT("/workflows/:workflowID", s.updateWorkflow)
		g.DELETE("/workflows/:workflowID", s.removeWorkflow)

		// Workorder endpoints
		g.GET("/workorders", s.listWorkorders)
		g.GET("/workorders/:workorderID", s.getWorkorder)
		g.PUT("/workorders/:workorderID", s.updateWorkorder)
		g.GET("/workorders/:workorderID/summary", s.getWorkorderSummary)
		g.GET("/workorders/:workorderID/result", s.getWorkorderResult)
		g.POST("/workorders/:workorderID/result", s.beginWorkorder)

		// Result endpoints
		g.GET("/results", s.listResults)
		g.POST("/results", s.createResult)
		g.PUT("/results/:resultID", s.updateResult)

		g.GET("/profile", s.getProfile)

		// WebSocket
		g.GET("/ws", s.handleWebSocket)
	}

	return router
}

// Close closes every WebSocket connection and stops publishing status
// events
func (s *Server) Close() {
	s.CloseWebSockets()
	s.producer.Close()
}

// CloseWebSockets closes all active WebSocket connections
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := s.sockets.Values()
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Service: wfm.Name,
		Status:  "healthy",
	})
}

func (s *Server) getProfile(c *gin.Context) {
	p, err := s.client.ReadUserProfile(c.Request.Context())
	if err != nil {
		respondError(c, ErrGetProfile, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) registerWebSocket(c *Socket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterWebSocket(c *Socket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return false
	}
	return true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, api.ErrorResponse{
		Error:  err.Error(),
		Status: http.StatusBadRequest,
	})
}

// respondError renders a failed bus call. A missing record is a 404, an
// unreachable or slow mediator is a 503 or 504, a rejection by the
// responder is a 400 and anything else is a 500
func respondError(c *gin.Context, base, err error) {
	code := http.StatusInternalServerError
	var remote *bus.RemoteError
	switch {
	case errors.Is(err, bus.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, bus.ErrNoResponder), errors.Is(err, bus.ErrBusClosed):
		code = http.StatusServiceUnavailable
	case errors.Is(err, bus.ErrRequestTimeout):
		code = http.StatusGatewayTimeout
	case errors.As(err, &remote):
		code = http.StatusBadRequest
	}
	c.JSON(code, api.ErrorResponse{
		Error:  fmt.Sprintf("%s: %v", base, err),
		Status: code,
	})
}
