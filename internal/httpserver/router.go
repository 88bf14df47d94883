package httpserver

import (
	"context"
	"errors"
	"time"

	"fabricstore/internal/domain"
	"fabricstore/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type orderService interface {
	Submit(ctx context.Context, sub domain.OrderSubmission) (*domain.Order, error)
	Track(ctx context.Context, id string) (*domain.TrackingInfo, error)
	TrackByNumber(ctx context.Context, orderNumber, phone string) (*domain.TrackingInfo, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, trackingNumber string) (*domain.Order, error)
	ListForCustomer(ctx context.Context, token string) ([]domain.Order, error)
	IssueToken(ctx context.Context, phone string, ttl time.Duration) (string, time.Time, error)
}

// Deps carries what the router needs beyond the database pool.
type Deps struct {
	OrderSvc    orderService
	AdminToken  string
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.OrderSvc == nil {
		return nil, errors.New("order service required")
	}
	logger = logging.OrNop(logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logging.Writer(logger)), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &orderHandlers{svc: deps.OrderSvc, logger: logger}
	router.POST("/orders/beacon", h.beacon)
	router.POST("/orders", h.create)
	router.GET("/orders/:id/track", h.track)
	router.GET("/tracking", h.trackByNumber)

	me := router.Group("/me", customerTokenMiddleware())
	me.GET("/orders", h.myOrders)

	admin := router.Group("/admin", adminMiddleware(deps.AdminToken))
	admin.PATCH("/orders/:id/status", h.updateStatus)
	admin.POST("/tokens", h.issueToken)

	return router, nil
}
