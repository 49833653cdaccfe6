package handlers

import (
	"net/http"

	"task-tracker/backend/internal/apperrors"
	"task-tracker/backend/internal/query"

	"github.com/gin-gonic/gin"
)

// Every response carries the same envelope so clients can always read
// message and data regardless of outcome.
func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"message": message, "data": data})
}

func respondError(c *gin.Context, err error) {
	switch {
	case apperrors.IsNotFound(err):
		respond(c, http.StatusNotFound, apperrors.MessageOf(err), nil)
	case apperrors.IsValidation(err), apperrors.IsConflict(err):
		respond(c, http.StatusBadRequest, apperrors.MessageOf(err), nil)
	default:
		respond(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

func queryParams(c *gin.Context) query.Params {
	return query.Params{
		Where:  c.Query("where"),
		Select: c.Query("select"),
		Sort:   c.Query("sort"),
		Limit:  c.Query("limit"),
		Skip:   c.Query("skip"),
		Count:  c.Query("count"),
	}
}
