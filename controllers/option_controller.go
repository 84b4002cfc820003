// controllers/option_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"villa-backend/middleware"
	"villa-backend/models"
	"villa-backend/services"
	"villa-backend/utils"
)

type CreateOptionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`

	PricingType  string  `json:"pricingType" binding:"required"`
	PricePerUnit float64 `json:"pricePerUnit" binding:"required,gt=0"`

	MinQuantity int  `json:"minQuantity"`
	MaxQuantity *int `json:"maxQuantity,omitempty"`

	MinGuests *int `json:"minGuests,omitempty"`
	MaxGuests *int `json:"maxGuests,omitempty"`
	MinNights *int `json:"minNights,omitempty"`

	IsActive *bool `json:"isActive,omitempty"`
	Order    int   `json:"order"`
}

type UpdateOptionRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`

	PricingType  *string  `json:"pricingType,omitempty"`
	PricePerUnit *float64 `json:"pricePerUnit,omitempty"`

	MinQuantity *int `json:"minQuantity,omitempty"`
	MaxQuantity *int `json:"maxQuantity,omitempty"`

	MinGuests *int `json:"minGuests,omitempty"`
	MaxGuests *int `json:"maxGuests,omitempty"`
	MinNights *int `json:"minNights,omitempty"`

	IsActive *bool `json:"isActive,omitempty"`
	Order    *int  `json:"order,omitempty"`
}

type UpsertOptionOverrideRequest struct {
	CustomPrice       *float64 `json:"customPrice,omitempty"`
	CustomMinQuantity *int     `json:"customMinQuantity,omitempty"`
	CustomMaxQuantity *int     `json:"customMaxQuantity,omitempty"`
	IsEnabled         *bool    `json:"isEnabled,omitempty"`
}

type UpdatePaymentConfigurationRequest struct {
	TouristTaxEnabled    bool    `json:"touristTaxEnabled"`
	TouristTaxType       string  `json:"touristTaxType"`
	TouristTaxAdultPrice float64 `json:"touristTaxAdultPrice"`
	TouristTaxChildPrice float64 `json:"touristTaxChildPrice"`
	TouristTaxPeriod     string  `json:"touristTaxPeriod"`
	TouristTaxMaxNights  *int    `json:"touristTaxMaxNights,omitempty"`

	DepositType  string  `json:"depositType"`
	DepositValue float64 `json:"depositValue"`
}

type OptionController struct {
	Options *services.OptionService
}

func NewOptionController(options *services.OptionService) *OptionController {
	return &OptionController{Options: options}
}

// Create handles POST /api/booking-options.
func (ctl *OptionController) Create(c *gin.Context) {
	var req CreateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	option := &models.BookingOption{
		TenantID:     middleware.TenantID(c),
		Name:         req.Name,
		Description:  req.Description,
		PricingType:  req.PricingType,
		PricePerUnit: req.PricePerUnit,
		MinQuantity:  req.MinQuantity,
		MaxQuantity:  req.MaxQuantity,
		MinGuests:    req.MinGuests,
		MaxGuests:    req.MaxGuests,
		MinNights:    req.MinNights,
		IsActive:     isActive,
		Order:        req.Order,
	}
	if err := ctl.Options.Create(option); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, option)
}

// List handles GET /api/booking-options.
func (ctl *OptionController) List(c *gin.Context) {
	options, err := ctl.Options.List(middleware.TenantID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, options)
}

// Get handles GET /api/booking-options/:id.
func (ctl *OptionController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	option, err := ctl.Options.Get(middleware.TenantID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, option)
}

// Update handles PATCH /api/booking-options/:id.
func (ctl *OptionController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PricingType != nil {
		updates["pricing_type"] = *req.PricingType
	}
	if req.PricePerUnit != nil {
		updates["price_per_unit"] = *req.PricePerUnit
	}
	if req.MinQuantity != nil {
		updates["min_quantity"] = *req.MinQuantity
	}
	if req.MaxQuantity != nil {
		updates["max_quantity"] = *req.MaxQuantity
	}
	if req.MinGuests != nil {
		updates["min_guests"] = *req.MinGuests
	}
	if req.MaxGuests != nil {
		updates["max_guests"] = *req.MaxGuests
	}
	if req.MinNights != nil {
		updates["min_nights"] = *req.MinNights
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Order != nil {
		updates["order"] = *req.Order
	}

	option, err := ctl.Options.Update(middleware.TenantID(c), id, updates)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, option)
}

// Delete handles DELETE /api/booking-options/:id.
func (ctl *OptionController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ctl.Options.Delete(middleware.TenantID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// UpsertOverride handles PUT /api/properties/:id/options/:optionId.
func (ctl *OptionController) UpsertOverride(c *gin.Context) {
	propertyID, ok := paramID(c, "id")
	if !ok {
		return
	}
	optionID, ok := paramID(c, "optionId")
	if !ok {
		return
	}
	var req UpsertOptionOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	isEnabled := true
	if req.IsEnabled != nil {
		isEnabled = *req.IsEnabled
	}

	override := &models.PropertyBookingOption{
		PropertyID:        propertyID,
		OptionID:          optionID,
		CustomPrice:       req.CustomPrice,
		CustomMinQuantity: req.CustomMinQuantity,
		CustomMaxQuantity: req.CustomMaxQuantity,
		IsEnabled:         isEnabled,
	}
	if err := ctl.Options.UpsertPropertyOverride(middleware.TenantID(c), override); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, override)
}

// GetPaymentConfiguration handles GET /api/payment-configuration. A tenant
// with no stored policy gets an empty (disabled) configuration back.
func (ctl *OptionController) GetPaymentConfiguration(c *gin.Context) {
	cfg, err := ctl.Options.GetPaymentConfiguration(middleware.TenantID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if cfg == nil {
		cfg = &models.PaymentConfiguration{TenantID: middleware.TenantID(c)}
	}
	utils.JSONSuccess(c, http.StatusOK, cfg)
}

// UpdatePaymentConfiguration handles PUT /api/payment-configuration.
func (ctl *OptionController) UpdatePaymentConfiguration(c *gin.Context) {
	var req UpdatePaymentConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cfg := &models.PaymentConfiguration{
		TouristTaxEnabled:    req.TouristTaxEnabled,
		TouristTaxType:       req.TouristTaxType,
		TouristTaxAdultPrice: req.TouristTaxAdultPrice,
		TouristTaxChildPrice: req.TouristTaxChildPrice,
		TouristTaxPeriod:     req.TouristTaxPeriod,
		TouristTaxMaxNights:  req.TouristTaxMaxNights,
		DepositType:          req.DepositType,
		DepositValue:         req.DepositValue,
	}
	if err := ctl.Options.UpdatePaymentConfiguration(middleware.TenantID(c), cfg); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, cfg)
}
