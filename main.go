package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"villa-backend/config"
	"villa-backend/controllers"
	"villa-backend/routes"
	"villa-backend/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found or couldn't load it; continuing with environment variables")
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("config.DB is nil after ConnectDatabase()")
	}
	log.Println("Database connection established, migrations applied")

	// Services
	pricingService := services.NewPricingService(db)
	optionService := services.NewOptionService(db)
	availabilityService := services.NewAvailabilityService(db, pricingService)
	bookingService := services.NewBookingService(db, pricingService, availabilityService)
	propertyService := services.NewPropertyService(db)
	periodService := services.NewPeriodService(db)

	// Controllers
	pricingController := controllers.NewPricingController(pricingService)
	availabilityController := controllers.NewAvailabilityController(availabilityService)
	bookingController := controllers.NewBookingController(bookingService)
	propertyController := controllers.NewPropertyController(propertyService)
	periodController := controllers.NewPeriodController(periodService)
	optionController := controllers.NewOptionController(optionService)
	publicController := controllers.NewPublicController(pricingService, availabilityService, bookingService)

	router := routes.SetupRouter(
		db,
		pricingController,
		availabilityController,
		bookingController,
		propertyController,
		periodController,
		optionController,
		publicController,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
