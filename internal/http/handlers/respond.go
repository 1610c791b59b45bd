package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error bodies are flat: {"error": "..."} plus an optional machine-readable
// "code" for the 400-class validation failures. Clients key off status or
// code, never off the message text.

func RespondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"error": message})
}

func RespondErrorCode(ctx *gin.Context, status int, message, code string) {
	ctx.JSON(status, gin.H{"error": message, "code": code})
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message)
}

func RespondInternal(ctx *gin.Context, err error) {
	RespondError(ctx, http.StatusInternalServerError, "Internal server error: "+err.Error())
}
