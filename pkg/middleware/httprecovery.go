package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HTTPRecovery handles handler panics and sets the response code accordingly
func HTTPRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Msgf("Panic occurred: %v\n%s", err, debug.Stack())
				errorMsg := fmt.Sprintf("%v", err)
				c.JSON(500, gin.H{"error": errorMsg})
				c.Abort()
			}
		}()
		c.Next()
	}
}
