package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"villa-backend/models"
)

const tenantContextKey = "tenantID"

// TenantResolver maps the X-Tenant header (the tenant's subdomain) to a
// tenant id and stores it on the request context. Every API route is
// tenant-scoped; requests without a resolvable tenant stop here.
func TenantResolver(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		subdomain := strings.TrimSpace(c.GetHeader("X-Tenant"))
		if subdomain == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"message": "Tenant not specified"},
			})
			return
		}

		var tenant models.Tenant
		err := db.Where("subdomain = ? AND is_active = ?", subdomain, true).First(&tenant).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"success": false,
					"error":   gin.H{"message": "Tenant not found"},
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"message": "Failed to resolve tenant"},
			})
			return
		}

		c.Set(tenantContextKey, tenant.ID)
		c.Next()
	}
}

// TenantID reads the resolved tenant id from the request context.
func TenantID(c *gin.Context) uint {
	if v, ok := c.Get(tenantContextKey); ok {
		if id, ok2 := v.(uint); ok2 {
			return id
		}
	}
	return 0
}
