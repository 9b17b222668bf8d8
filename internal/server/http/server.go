// Package httpserver exposes the mybook HTTP API.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/and161185/mybook/internal/convert"
	"github.com/and161185/mybook/internal/errs"
	"github.com/and161185/mybook/internal/metrics"
	"github.com/and161185/mybook/internal/model"
	"github.com/and161185/mybook/internal/service"
)

const healthTimeout = 2 * time.Second

// Pinger reports storage liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries optional collaborators. Zero values are usable.
type Options struct {
	GatewayKey []byte
	Health     Pinger
	Gatherer   prometheus.Gatherer
	Metrics    *metrics.Metrics
	Log        *zap.Logger
}

// Server wires services into HTTP handlers.
type Server struct {
	purchase service.PurchaseService
	query    service.QueryService
	reader   service.ReaderService

	gatewayKey []byte
	health     Pinger
	gatherer   prometheus.Gatherer
	metrics    *metrics.Metrics
	log        *zap.Logger

	engine *gin.Engine
}

// New constructs the HTTP server with injected services.
func New(purchase service.PurchaseService, query service.QueryService, reader service.ReaderService, opts Options) *Server {
	s := &Server{
		purchase:   purchase,
		query:      query,
		reader:     reader,
		gatewayKey: opts.GatewayKey,
		health:     opts.Health,
		gatherer:   opts.Gatherer,
		metrics:    opts.Metrics,
		log:        opts.Log,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	s.engine = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(
		Logging(s.log, s.metrics),
		Recover(s.log),
		ErrorHandlingMiddleware(s.log),
	)

	r.GET("/healthz", s.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	g := r.Group("/myBook", s.requireIdentity())
	g.POST("/purchase", s.purchaseBook)
	g.GET("/history", s.history)
	g.GET("/read/:bookId", s.readBook)
	g.GET("/check/:bookId", s.checkBook)
	return r
}

func identity(c *gin.Context) (model.Identity, error) {
	who, ok := IdentityFromCtx(c.Request.Context())
	if !ok {
		return model.Identity{}, errs.ErrUnauthenticated
	}
	return who, nil
}

// purchaseBook handles POST /myBook/purchase.
func (s *Server) purchaseBook(c *gin.Context) {
	who, err := identity(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var body convert.PurchaseRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, fmt.Errorf("bad body: %v: %w", err, errs.ErrInvalidArgument))
		return
	}
	req, err := convert.FromPurchaseRequest(body)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	rc, err := s.purchase.Purchase(c.Request.Context(), who, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, convert.ToPurchaseResponse(rc))
}

// history handles GET /myBook/history.
func (s *Server) history(c *gin.Context) {
	who, err := identity(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	list, err := s.query.History(c.Request.Context(), who.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, convert.ToHistory(list))
}

// readBook handles GET /myBook/read/{bookId}.
func (s *Server) readBook(c *gin.Context) {
	who, err := identity(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	bookID, err := convert.ParseBookID(c.Param("bookId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	v, err := s.reader.Read(c.Request.Context(), who.UserID, bookID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, convert.ToReadResponse(v))
}

// checkBook handles GET /myBook/check/{bookId}.
func (s *Server) checkBook(c *gin.Context) {
	who, err := identity(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	bookID, err := convert.ParseBookID(c.Param("bookId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok, err := s.query.IsPurchased(c.Request.Context(), who.UserID, bookID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, convert.CheckResponse{IsPurchased: ok})
}

func (s *Server) healthz(c *gin.Context) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			s.log.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
