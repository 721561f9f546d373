package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// SetIdentity stores the resolved caller on the request context.
func SetIdentity(c *gin.Context, identity Identity) {
	c.Set(identityKey, identity)
	c.Set("user_id", identity.UserID)
}

// IdentityFromContext writes a 401 and returns false when no identity was resolved.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	raw, exists := c.Get(identityKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "identity missing"})
		return Identity{}, false
	}
	identity, ok := raw.(Identity)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid identity"})
		return Identity{}, false
	}
	return identity, true
}

type Handler struct{ service Service }

func NewHandler(s Service) *Handler { return &Handler{s} }

// Me handles GET /users/me
// @Summary Current user
// @Tags Users
// @Produce json
// @Success 200 {object} User
// @Failure 401 {object} map[string]string
// @Router /api/v1/users/me [get]
func (h *Handler) Me(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return
	}

	user, err := h.service.GetUserByID(c.Request.Context(), identity.UserID)
	if errors.Is(err, ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	c.JSON(http.StatusOK, user)
}
