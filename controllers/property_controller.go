// controllers/property_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"villa-backend/middleware"
	"villa-backend/models"
	"villa-backend/services"
	"villa-backend/utils"
)

type CreatePropertyRequest struct {
	Name            string                 `json:"name" binding:"required"`
	BasePrice       float64                `json:"basePrice" binding:"required,gt=0"`
	WeekendPremium  float64                `json:"weekendPremium"`
	CleaningFee     float64                `json:"cleaningFee"`
	SecurityDeposit float64                `json:"securityDeposit"`
	MinNights       int                    `json:"minNights"`
	MaxGuests       int                    `json:"maxGuests"`
	Address         string                 `json:"address"`
	City            string                 `json:"city"`
	Amenities       map[string]interface{} `json:"amenities"`
}

type UpdatePropertyRequest struct {
	Name            *string                `json:"name,omitempty"`
	BasePrice       *float64               `json:"basePrice,omitempty"`
	WeekendPremium  *float64               `json:"weekendPremium,omitempty"`
	CleaningFee     *float64               `json:"cleaningFee,omitempty"`
	SecurityDeposit *float64               `json:"securityDeposit,omitempty"`
	MinNights       *int                   `json:"minNights,omitempty"`
	MaxGuests       *int                   `json:"maxGuests,omitempty"`
	Address         *string                `json:"address,omitempty"`
	City            *string                `json:"city,omitempty"`
	Amenities       map[string]interface{} `json:"amenities,omitempty"`
}

type PropertyController struct {
	Properties *services.PropertyService
}

func NewPropertyController(properties *services.PropertyService) *PropertyController {
	return &PropertyController{Properties: properties}
}

// Create handles POST /api/properties. New properties start as DRAFT.
func (ctl *PropertyController) Create(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	maxGuests := req.MaxGuests
	if maxGuests < 1 {
		maxGuests = 2
	}

	property := &models.Property{
		TenantID:        middleware.TenantID(c),
		Name:            req.Name,
		BasePrice:       req.BasePrice,
		WeekendPremium:  req.WeekendPremium,
		CleaningFee:     req.CleaningFee,
		SecurityDeposit: req.SecurityDeposit,
		MinNights:       req.MinNights,
		MaxGuests:       maxGuests,
		Address:         req.Address,
		City:            req.City,
		Amenities:       datatypes.JSONMap(req.Amenities),
	}
	if err := ctl.Properties.Create(property); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, property)
}

// List handles GET /api/properties. Archived ones are hidden unless asked for.
func (ctl *PropertyController) List(c *gin.Context) {
	includeArchived := c.Query("includeArchived") == "true"
	properties, err := ctl.Properties.List(middleware.TenantID(c), includeArchived)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, properties)
}

// Get handles GET /api/properties/:id.
func (ctl *PropertyController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	property, err := ctl.Properties.Get(middleware.TenantID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, property)
}

// Update handles PATCH /api/properties/:id with partial updates.
func (ctl *PropertyController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.BasePrice != nil {
		updates["base_price"] = *req.BasePrice
	}
	if req.WeekendPremium != nil {
		updates["weekend_premium"] = *req.WeekendPremium
	}
	if req.CleaningFee != nil {
		updates["cleaning_fee"] = *req.CleaningFee
	}
	if req.SecurityDeposit != nil {
		updates["security_deposit"] = *req.SecurityDeposit
	}
	if req.MinNights != nil {
		updates["min_nights"] = *req.MinNights
	}
	if req.MaxGuests != nil {
		updates["max_guests"] = *req.MaxGuests
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Amenities != nil {
		updates["amenities"] = datatypes.JSONMap(req.Amenities)
	}

	property, err := ctl.Properties.Update(middleware.TenantID(c), id, updates)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, property)
}

// Publish handles POST /api/properties/:id/publish.
func (ctl *PropertyController) Publish(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	property, err := ctl.Properties.Publish(middleware.TenantID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, property)
}

// Archive handles POST /api/properties/:id/archive.
func (ctl *PropertyController) Archive(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	property, err := ctl.Properties.Archive(middleware.TenantID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, property)
}
