package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The wire contract is flat: {"error": "..."} for client errors, plus
// "details" and "success": false when the provider failed.

func RespondError(c *gin.Context, status int, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, gin.H{"error": msg})
}

func RespondProviderError(c *gin.Context, err error) {
	details := "unknown error"
	if err != nil {
		details = err.Error()
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Failed to generate meme video",
		"details": details,
		"success": false,
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
