package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"signing-backend/internal/shared/server/middleware"
	"signing-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

type meResponse struct {
	UserID  string `json:"userId"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}

	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	switch {
	case err == nil:
		respond.JSON(c, http.StatusOK, meResponse{
			UserID:  user.ID,
			Email:   user.Email,
			Name:    user.FullName,
			Picture: user.PictureURL,
		})
	case errors.Is(err, ErrNotFound):
		// Tokens minted before the profile was stored still carry identity.
		respond.JSON(c, http.StatusOK, meResponse{
			UserID:  userID,
			Email:   middleware.UserEmailFromContext(c),
			Name:    middleware.UserNameFromContext(c),
			Picture: middleware.UserPictureFromContext(c),
		})
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
	}
}
