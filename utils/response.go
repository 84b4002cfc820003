package utils

import "github.com/gin-gonic/gin"

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": gin.H{"message": message}})
}

// JSONErrorWithDetails carries structured fields (conflict lists, limits,
// required minimums) so the client can self-correct.
func JSONErrorWithDetails(c *gin.Context, code int, message string, details gin.H) {
	payload := gin.H{"message": message}
	for k, v := range details {
		payload[k] = v
	}
	c.JSON(code, gin.H{"success": false, "error": payload})
}
