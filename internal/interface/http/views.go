package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskflow/internal/application"
	"taskflow/internal/domain/entity"
	"taskflow/pkg/response"
)

// userView is the public user representation: the password hash never
// appears here.
func userView(u *entity.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"profile": gin.H{
			"bio":    u.Bio,
			"avatar": u.AvatarURL,
		},
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

func taskView(t *entity.Task) gin.H {
	var due *string
	if t.DueDate != nil {
		s := t.DueDate.Format(time.RFC3339)
		due = &s
	}
	return gin.H{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"status":      t.Status,
		"priority":    t.Priority,
		"due_date":    due,
		"owner_id":    t.UserID,
		"created_at":  t.CreatedAt,
		"updated_at":  t.UpdatedAt,
	}
}

func taskViews(tasks []*entity.Task) []gin.H {
	out := make([]gin.H, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskView(t))
	}
	return out
}

// writeErr converts a service error into the envelope for its failure kind.
func writeErr(c *gin.Context, logger *logrus.Logger, err error) {
	var ve *application.ValidationError
	switch {
	case errors.As(err, &ve):
		response.Error[any](c, http.StatusBadRequest, "validation failed", ve.Details())
	case errors.Is(err, application.ErrEmailTaken):
		response.Error[any](c, http.StatusConflict, "email already registered", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, application.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	default:
		if logger != nil {
			logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
