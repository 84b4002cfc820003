// controllers/params.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"villa-backend/utils"
)

// queryUintPtr parses an optional uint query parameter. Absent means nil;
// malformed means a 400 has been written and ok is false.
func queryUintPtr(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid "+name)
		return nil, false
	}
	u := uint(v)
	return &u, true
}

// queryDatePtr parses an optional date query parameter.
func queryDatePtr(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid "+name)
		return nil, false
	}
	return &t, true
}

// parseStayDates normalizes the check-in/check-out pair every stay-scoped
// endpoint receives.
func parseStayDates(c *gin.Context, checkInRaw, checkOutRaw string) (time.Time, time.Time, bool) {
	checkIn, err := utils.ParseDate(checkInRaw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid checkIn date")
		return time.Time{}, time.Time{}, false
	}
	checkOut, err := utils.ParseDate(checkOutRaw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid checkOut date")
		return time.Time{}, time.Time{}, false
	}
	return checkIn, checkOut, true
}
