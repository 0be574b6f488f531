package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/ferixo/storefront/internal/config"
	"github.com/ferixo/storefront/internal/es"
	"github.com/ferixo/storefront/internal/events"
	"github.com/ferixo/storefront/internal/handlers"
	"github.com/ferixo/storefront/internal/logging"
	"github.com/ferixo/storefront/internal/payment"
	"github.com/ferixo/storefront/internal/pricing"
	"github.com/ferixo/storefront/internal/service/token"
	httpserver "github.com/ferixo/storefront/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	config.MustNonEmpty(configuration.JWT_SECRET, "JWT_SECRET")
	config.MustNonEmpty(configuration.REFRESH_SECRET, "REFRESH_SECRET")

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	gateway, err := payment.NewRazorpay(configuration.RAZORPAY_KEY_ID, configuration.RAZORPAY_KEY_SECRET)
	if err != nil {
		// Checkout refuses requests without credentials; the rest of the
		// storefront still serves.
		logger.Warn("payment gateway disabled", "error", err)
	}

	prod := events.NewProducer([]string{configuration.KAFKA_ADDRESS})

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatalf("elasticsearch init error: %v", err)
	}

	policy := pricing.Policy{
		TaxRate:           configuration.Pricing.TaxRate,
		FreeShippingAbove: configuration.Pricing.FreeShippingAbove,
		ShippingFee:       configuration.Pricing.ShippingFee,
		ShippingInTotal:   configuration.Pricing.ShippingInTotal,
		HomeState:         configuration.Pricing.HomeState,
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	deps := httpserver.Deps{
		DB: db,
		AuthHandler: &handlers.AuthHandler{
			DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret,
			Producer: prod, AdminEmails: configuration.ADMIN_EMAILS,
		},
		ProductHandler:  &handlers.ProductHandler{DB: db, ES: esClient, Index: "product", Producer: prod},
		CouponHandler:   &handlers.CouponHandler{DB: db, Producer: prod},
		CheckoutHandler: checkoutHandler(db, gateway, prod, policy),
		OrderHandler:    &handlers.OrderHandler{DB: db},
		ReviewHandler:   &handlers.ReviewHandler{DB: db},
		SearchHandler:   &handlers.SearchHandler{ES: esClient, Index: "product"},
		TokenService:    &token.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}

func checkoutHandler(db *gorm.DB, gateway *payment.Razorpay, prod *events.Producer, policy pricing.Policy) *handlers.CheckoutHandler {
	h := &handlers.CheckoutHandler{DB: db, Producer: prod, Policy: policy}
	if gateway != nil {
		h.Gateway = gateway
	}
	return h
}
