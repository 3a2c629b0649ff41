package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/authkit/errors"
)

// RespondWithError renders err. An *apperrors.AppError carries its own status
// and code; anything else becomes a 500 INTERNAL_ERROR whose cause is hidden.
// The handler chain is aborted.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.Normalize(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 response with data as the body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a 201 response with data as the body.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}
