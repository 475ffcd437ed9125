package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Created writes a 201 JSON response.
func Created(c *gin.Context, payload any) {
	JSON(c, http.StatusCreated, payload)
}

// Fresh writes a 200 JSON snapshot that intermediaries must not cache.
// Loading views poll these every interval.
func Fresh(c *gin.Context, payload any) {
	c.Header("Cache-Control", "no-store")
	OK(c, payload)
}
