package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"villa-backend/controllers"
	"villa-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func SetupRouter(
	db *gorm.DB,
	pricingCtl *controllers.PricingController,
	availabilityCtl *controllers.AvailabilityController,
	bookingCtl *controllers.BookingController,
	propertyCtl *controllers.PropertyController,
	periodCtl *controllers.PeriodController,
	optionCtl *controllers.OptionController,
	publicCtl *controllers.PublicController,
) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(), gin.Recovery())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Tenant"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.TenantResolver(db))
	{
		pricing := api.Group("/pricing")
		{
			pricing.POST("/calculate", pricingCtl.Calculate)
		}

		availability := api.Group("/availability")
		{
			availability.GET("/check-availability", availabilityCtl.CheckQuery)
			availability.POST("/check-availability", availabilityCtl.Check)

			availability.GET("/blocked-periods", availabilityCtl.ListBlockedPeriods)
			availability.POST("/blocked-periods", availabilityCtl.CreateBlockedPeriod)
			availability.PATCH("/blocked-periods/:id", availabilityCtl.UpdateBlockedPeriod)
			availability.DELETE("/blocked-periods/:id", availabilityCtl.DeleteBlockedPeriod)
		}

		properties := api.Group("/properties")
		{
			properties.GET("", propertyCtl.List)
			properties.POST("", propertyCtl.Create)
			properties.GET("/:id", propertyCtl.Get)
			properties.PATCH("/:id", propertyCtl.Update)
			properties.POST("/:id/publish", propertyCtl.Publish)
			properties.POST("/:id/archive", propertyCtl.Archive)

			properties.PUT("/:id/options/:optionId", optionCtl.UpsertOverride)
		}

		periods := api.Group("/periods")
		{
			periods.GET("", periodCtl.List)
			periods.POST("", periodCtl.Create)
			periods.PATCH("/:id", periodCtl.Update)
			periods.DELETE("/:id", periodCtl.Delete)
		}

		options := api.Group("/booking-options")
		{
			options.GET("", optionCtl.List)
			options.POST("", optionCtl.Create)
			options.GET("/:id", optionCtl.Get)
			options.PATCH("/:id", optionCtl.Update)
			options.DELETE("/:id", optionCtl.Delete)
		}

		api.GET("/payment-configuration", optionCtl.GetPaymentConfiguration)
		api.PUT("/payment-configuration", optionCtl.UpdatePaymentConfiguration)

		bookings := api.Group("/bookings")
		{
			bookings.GET("", bookingCtl.List)
			bookings.POST("", bookingCtl.Create)

			// /stats must register before /:id
			bookings.GET("/stats", bookingCtl.Stats)

			bookings.GET("/:id", bookingCtl.Get)
			bookings.PATCH("/:id", bookingCtl.UpdateGuestDetails)
			bookings.POST("/:id/confirm", bookingCtl.Confirm)
			bookings.POST("/:id/cancel", bookingCtl.Cancel)
		}

		public := api.Group("/public")
		{
			public.GET("/properties", publicCtl.ListProperties)
			public.POST("/pricing/calculate", publicCtl.CalculatePricing)
			public.GET("/availability", publicCtl.CheckAvailability)
			public.POST("/bookings", publicCtl.CreateBooking)
			public.GET("/bookings/:reference", publicCtl.GetBooking)
		}
	}

	return r
}
