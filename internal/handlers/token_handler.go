package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brigadehq/roster/internal/models"
	"github.com/brigadehq/roster/internal/repository"
	"github.com/brigadehq/roster/internal/services"
)

type TokenHandler struct {
	tokenService *services.TokenService
	memberRepo   *repository.MemberRepository
}

func NewTokenHandler(tokenService *services.TokenService, memberRepo *repository.MemberRepository) *TokenHandler {
	return &TokenHandler{
		tokenService: tokenService,
		memberRepo:   memberRepo,
	}
}

// CreateToken issues a session token for a registered member.
func (h *TokenHandler) CreateToken(c *gin.Context) {
	var req models.CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.memberRepo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up member"})
		return
	}
	if member == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown member"})
		return
	}

	tokenString, expiresAt, err := h.tokenService.CreateToken(member)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusCreated, models.CreateTokenResponse{
		Token:     tokenString,
		ExpiresAt: expiresAt,
	})
}
