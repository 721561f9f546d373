package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Respond writes an outcome as {"error": CODE, "message": ...} with its mapped
// status. Anything else is reported as an opaque 500.
func Respond(c *gin.Context, err error) {
	var e *Error
	if errors.As(err, &e) {
		c.JSON(HTTPStatus(e.Code), gin.H{"error": e.Code, "message": e.Message})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
