package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nayeemx/gymstore/config"
	"github.com/nayeemx/gymstore/internal/events"
	"github.com/nayeemx/gymstore/internal/gateway"
	"github.com/nayeemx/gymstore/internal/handlers"
	"github.com/nayeemx/gymstore/internal/metrics"
	"github.com/nayeemx/gymstore/internal/middleware"
	"github.com/nayeemx/gymstore/internal/orders"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	store := orders.NewGormStore(db)
	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:       cfg.GatewayBaseURL,
		StoreID:       cfg.GatewayStoreID,
		StorePassword: cfg.GatewayStorePassword,
		Timeout:       cfg.GatewayTimeout,
	}, logger)

	producer := events.NewProducer(cfg.KafkaBrokers, logger)
	var sink orders.Publisher
	if producer.Enabled() {
		sink = producer
		defer producer.Close()
	}

	m := metrics.New("gymstore")
	queries := orders.NewQueries(store)

	newEngine := func(domain orders.Domain) *orders.Engine {
		return orders.NewEngine(orders.EngineConfig{
			Domain:       domain,
			Store:        store,
			Gateway:      gatewayClient,
			Events:       sink,
			Metrics:      m,
			CallbackBase: cfg.CallbackBaseURL,
			Currency:     cfg.Currency,
			Logger:       logger,
		})
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery(), middleware.CORS(cfg.AllowedOrigins))

	setupRoutes(r, cfg, handlers.NewOrderHandler(newEngine(orders.DomainCourse), queries, cfg.FrontendURL, logger),
		handlers.NewOrderHandler(newEngine(orders.DomainAccessories), queries, cfg.FrontendURL, logger))

	sweeper := orders.NewSweeper(store, cfg.PendingOrderTTL, cfg.SweepInterval, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sweeper.Run(ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func setupRoutes(r *gin.Engine, cfg *config.Config, course, accessories *handlers.OrderHandler) {
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<h1>Welcome to Our Gym</h1>"))
	})
	// Health stays database-free so probes keep passing during DB trouble.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "Server is running",
			"timestamp": time.Now(),
			"port":      cfg.Port,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/gym")
	mountOrderRoutes(api.Group("/course/order"), course)
	mountOrderRoutes(api.Group("/accessories/order"), accessories)
}

func mountOrderRoutes(g *gin.RouterGroup, h *handlers.OrderHandler) {
	g.POST("/payment", h.CreateOrder)
	g.GET("/payment/success/:trnID", h.PaymentSuccess)
	g.GET("/payment/fail/:trnID", h.PaymentFail)
	g.GET("/payment/cancel/:trnID", h.PaymentCancel)
	g.POST("/captureOrder", h.CaptureOrder)
	g.GET("/list/:userId", h.ListOrders)
	g.GET("/details/:id", h.OrderDetails)
}
