package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/middleware"
	"github.com/cutclub/cutclub-backend/internal/models"
	"github.com/cutclub/cutclub-backend/internal/storage"
)

const maxPhotoBytes = 5 << 20 // 5 MB

type PhotoHandler struct {
	db     *gorm.DB
	photos *storage.PhotoStore
}

func NewPhotoHandler(db *gorm.DB, photos *storage.PhotoStore) *PhotoHandler {
	return &PhotoHandler{db: db, photos: photos}
}

func (h *PhotoHandler) Upload(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	file, err := c.FormFile("photo")
	if err != nil {
		httperr.BadRequest(c, "missing_photo", "Envie a foto no campo 'photo'.")
		return
	}
	if file.Size > maxPhotoBytes {
		httperr.BadRequest(c, "photo_too_large", "A foto deve ter no máximo 5MB.")
		return
	}

	src, err := file.Open()
	if err != nil {
		httperr.Internal(c, "failed_to_read_photo", "Erro ao ler a foto.")
		return
	}
	defer src.Close()

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		httperr.Internal(c, "user_not_found", "Usuário não encontrado.")
		return
	}

	key, err := h.photos.Save(c.Request.Context(), "profile", userID, src)
	if err != nil {
		httperr.BadRequest(c, "invalid_photo", "Não foi possível processar a foto (use JPEG ou PNG).")
		return
	}

	oldKey := user.PhotoURL
	user.PhotoURL = key
	if err := h.db.Save(&user).Error; err != nil {
		httperr.Internal(c, "failed_to_save_photo", "Erro ao salvar a foto.")
		return
	}

	if oldKey != "" {
		// Best effort; the new photo already replaced it.
		_ = h.photos.Delete(c.Request.Context(), oldKey)
	}

	url, err := h.photos.URL(c.Request.Context(), key)
	if err != nil {
		url = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"photo_key": key,
		"photo_url": url,
	})
}
