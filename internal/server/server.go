package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"groundslot/internal/auth"
	"groundslot/internal/booking"
	"groundslot/internal/config"
	"groundslot/internal/lock"
	"groundslot/internal/slot"

	"github.com/gin-gonic/gin"
)

// Services are the domain services the HTTP surface exposes.
type Services struct {
	Locks    lock.Service
	Slots    slot.Service
	Bookings booking.Service
}

type Server struct {
	router *gin.Engine
	config *config.Config
	http   *http.Server
}

func New(cfg *config.Config, svc Services) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	lockHandler := lock.NewHandler(svc.Locks)
	slotHandler := slot.NewHandler(svc.Slots)
	bookingHandler := booking.NewHandler(svc.Bookings)

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	gate := auth.ChannelMiddleware(cfg.JWTSecret)
	limit := RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)

	protected := router.Group("/")
	protected.Use(gate, limit)
	{
		protected.POST("/locks", lockHandler.Acquire)
		protected.GET("/locks/:holdID", lockHandler.GetHold)
		protected.DELETE("/locks/:holdID", lockHandler.Release)

		protected.GET("/slots/:slotID", slotHandler.GetSlot)
		protected.GET("/facilities/:facilityID/slots", slotHandler.ListFacilitySlots)

		protected.GET("/bookings/:bookingID", bookingHandler.GetBooking)
	}

	payments := router.Group("/payments")
	payments.Use(gate, limit, auth.RequireRole(auth.RolePayments))
	{
		payments.POST("/captured", bookingHandler.PaymentCaptured)
	}

	desk := router.Group("/bookings")
	desk.Use(gate, limit, auth.RequireRole(auth.RoleDesk))
	{
		desk.POST("", bookingHandler.CounterSale)
	}

	return &Server{
		router: router,
		config: cfg,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
