package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cutclub/cutclub-backend/internal/middleware"
	"github.com/cutclub/cutclub-backend/internal/models"
	"github.com/cutclub/cutclub-backend/internal/storage"
)

type MeHandler struct {
	db     *gorm.DB
	photos *storage.PhotoStore
}

func NewMeHandler(db *gorm.DB, photos *storage.PhotoStore) *MeHandler {
	return &MeHandler{db: db, photos: photos}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userIDVal, exists := c.Get(middleware.ContextUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user_not_in_context"})
		return
	}

	userID, ok := userIDVal.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_user_id_type"})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user_not_found"})
		return
	}

	body := userJSON(&user)
	if user.PhotoURL != "" && h.photos != nil {
		if url, err := h.photos.URL(c.Request.Context(), user.PhotoURL); err == nil {
			body["photo_url"] = url
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": body})
}
