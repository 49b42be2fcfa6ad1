package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/greencart/greencart-golang/internal/auth"
	"github.com/greencart/greencart-golang/internal/database"
	"github.com/greencart/greencart-golang/internal/handlers"
	"github.com/greencart/greencart-golang/internal/orders"
	"github.com/greencart/greencart-golang/internal/payment"
	"github.com/greencart/greencart-golang/internal/routes"
	"github.com/joho/godotenv"
)

func main() {
	// --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	// --- Database Connection ---
	db, err := database.OpenDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// --- JWT Keys ---
	keys, err := auth.LoadKeys()
	if err != nil {
		log.Fatalf("CRITICAL ERROR: %v", err)
	}

	// --- Payment Gateway ---
	// Constructed here, once, with explicit credentials. A missing key is a
	// startup failure, not a surprise on the first checkout.
	gateway, err := payment.NewClient(os.Getenv("RAZORPAY_KEY_ID"), os.Getenv("RAZORPAY_KEY_SECRET"))
	if err != nil {
		log.Fatalf("CRITICAL ERROR: %v", err)
	}

	// --- Seller Credentials ---
	sellerEmail := os.Getenv("SELLER_EMAIL")
	sellerPassword := os.Getenv("SELLER_PASSWORD")
	if sellerEmail == "" || sellerPassword == "" {
		log.Fatalf("CRITICAL ERROR: SELLER_EMAIL and SELLER_PASSWORD must be set.")
	}

	// --- Order Lifecycle Manager ---
	store := orders.NewMySQLStore(db)
	orderService := orders.NewService(store, store, gateway, gateway.KeySecret())

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:             db,
		Orders:         orderService,
		Keys:           keys,
		Gateway:        gateway,
		SellerEmail:    sellerEmail,
		SellerPassword: sellerPassword,
		Production:     os.Getenv("APP_ENV") == "production",
	}

	// --- Background Worker ---
	// The retention cleanup also runs inline before the seller listing; this
	// ticker keeps old delivered orders from piling up when nobody opens the
	// dashboard for a while.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		log.Println("Background worker started: monitoring for old delivered orders...")

		for range ticker.C {
			if _, err := orderService.CleanupDelivered(context.Background()); err != nil {
				log.Printf("Background cleanup failed: %v", err)
			}
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting GreenCart API server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
