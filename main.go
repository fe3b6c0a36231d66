package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Injajul/Foodify2/configs"
	"github.com/Injajul/Foodify2/controllers"
	"github.com/Injajul/Foodify2/middlewares"
	"github.com/Injajul/Foodify2/pkg/lock"
	"github.com/Injajul/Foodify2/pkg/logger"
	"github.com/Injajul/Foodify2/pkg/payment"
	"github.com/Injajul/Foodify2/repository"
	"github.com/Injajul/Foodify2/routes"
	"github.com/Injajul/Foodify2/services"
	"github.com/Injajul/Foodify2/ws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"
)

const lockTTL = 30 * time.Second

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *configs.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := configs.ConnectDB(cfg.DBSource)
	if err != nil {
		return err
	}
	if err := configs.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if cfg.SeedDemo {
		if err := configs.SeedDemo(db, zl); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	// Locks
	var locker lock.Locker = lock.NewLocal()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		locker = lock.NewRedis(rdb, "foodify", lockTTL, zl)
		zl.Info("using redis locks", zap.String("addr", cfg.RedisAddr))
	} else {
		zl.Info("using in-process locks")
	}

	// External services
	stripe := payment.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret, zl.Named("stripe"))
	clerkHook, err := svix.NewWebhook(cfg.ClerkWebhookSecret)
	if err != nil {
		return fmt.Errorf("identity webhook secret: %w", err)
	}

	hub := ws.NewOrderHub(zl.Named("ws"))
	go hub.Run()
	defer hub.Stop()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	restRepo := repository.NewRestaurantRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Services
	cartSvc := services.NewCartService(db, cartRepo, productRepo, restRepo, locker, zl.Named("cart"))
	checkoutSvc := services.NewCheckoutService(db, cartRepo, orderRepo, productRepo, restRepo,
		stripe, locker, hub, zl.Named("checkout"), cfg.Currency, cfg.PaymentTimeout)
	orderSvc := services.NewOrderService(db, orderRepo, productRepo, restRepo,
		stripe, locker, hub, zl.Named("orders"), cfg.PaymentTimeout)
	reconciler := services.NewPaymentReconciler(db, orderRepo, cartRepo, productRepo, restRepo,
		locker, hub, zl.Named("reconciler"))
	identitySvc := services.NewIdentityService(db, userRepo, restRepo, productRepo, cartRepo,
		orderRepo, reviewRepo, cartSvc, zl.Named("identity"))
	reviewSvc := services.NewReviewService(db, reviewRepo, productRepo, zl.Named("reviews"))
	menuSvc := services.NewMenuService(restRepo, productRepo)

	// HTTP
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestID(), middlewares.RequestLogger(zl.Named("http")),
		middlewares.CORSMiddleware(cfg.CORSOrigins))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:       middlewares.NewAuthenticator(cfg.JWTSecret, identitySvc),
		Menu:       controllers.NewMenuController(menuSvc),
		Cart:       controllers.NewCartController(cartSvc, checkoutSvc),
		Order:      controllers.NewOrderController(orderSvc),
		OwnerOrder: controllers.NewOwnerOrderController(orderSvc),
		Review:     controllers.NewReviewController(reviewSvc),
		Payment:    controllers.NewPaymentController(stripe, reconciler, zl.Named("webhooks")),
		Identity:   controllers.NewAuthController(identitySvc, clerkHook, zl.Named("webhooks")),
		Hub:        hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		zl.Info("server running", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
