package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/sasismene/merch-backend/internal/modules/auth"
	"github.com/sasismene/merch-backend/internal/modules/checkout"
	"github.com/sasismene/merch-backend/internal/modules/merch"
	"github.com/sasismene/merch-backend/internal/modules/paypal"
	"github.com/sasismene/merch-backend/internal/modules/payout"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, relying on process environment")
	}

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	currency := os.Getenv("CURRENCY")
	if currency == "" {
		currency = "EUR"
	}

	ctx := context.Background()
	if err := checkout.EnsureSchema(ctx, db); err != nil {
		log.Fatal(err)
	}
	if err := merch.EnsureSchema(ctx, db, currency); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Successfully connected to the database!")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── PayPal gateway ──────────────────────────────────────
	paypalEnv := os.Getenv("PAYPAL_ENV")
	if paypalEnv == "" {
		paypalEnv = "sandbox"
	}
	gateway := paypal.NewClient(
		os.Getenv("PAYPAL_CLIENT_ID"),
		os.Getenv("PAYPAL_SECRET"),
		paypalEnv,
	)

	// ── Optional admin guard on the order listing ───────────
	var guard func(http.Handler) http.Handler
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminHash := os.Getenv("ADMIN_PASSWORD_HASH")
	jwtSecret := os.Getenv("JWT_SECRET")
	if adminEmail != "" && adminHash != "" && jwtSecret != "" {
		authService := auth.NewService(adminEmail, adminHash, []byte(jwtSecret))
		auth.NewHandler(authService).RegisterRoutes(router)
		guard = auth.Middleware([]byte(jwtSecret))
	} else {
		log.Println("admin credentials not configured, order listing is unguarded")
	}

	// ── Checkout workflow ───────────────────────────────────
	var dispatcher checkout.Dispatcher
	if receiver := os.Getenv("PAYPAL_PAYOUT_RECEIVER"); receiver != "" {
		dispatcher = payout.NewDispatcher(gateway, receiver, currency)
	}

	orderRepo := checkout.NewPostgresRepository(db)
	checkoutService := checkout.NewService(orderRepo, gateway, dispatcher, currency)
	checkout.NewHandler(checkoutService, checkout.PublicConfig{
		PayPalClientID: os.Getenv("PAYPAL_CLIENT_ID"),
		Currency:       currency,
		Env:            paypalEnv,
	}).RegisterRoutes(router, guard)

	// ── Storefront catalog ──────────────────────────────────
	merch.NewHandler(merch.NewPostgresRepository(db)).RegisterRoutes(router)

	// ── Start Server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Merch API server starting on :%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
