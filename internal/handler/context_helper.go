package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/eteeap/admissions-api/internal/middleware"
	"github.com/eteeap/admissions-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.SessionClaims {
	return middleware.ClaimsFromContext(c)
}
