package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodeasy/backend/internal/middleware"
	"github.com/foodeasy/backend/internal/service"
	"github.com/foodeasy/backend/internal/types"
)

func uintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", service.ErrValidation, name, raw)
	}
	return uint(id), nil
}

func boolQuery(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: invalid %s %q", service.ErrValidation, name, raw)
	}
	return v, nil
}

// dateQuery parses an optional YYYY-MM-DD query value, defaulting to today.
func dateQuery(c *gin.Context, name string, today time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return types.NormalizeDate(today), nil
	}
	d, err := types.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", service.ErrValidation, err)
	}
	return d, nil
}

// owner returns the authenticated user. RequireOwner has already checked
// that it matches the :user_id path segment.
func owner(c *gin.Context) uuid.UUID {
	id, _ := middleware.UserID(c)
	return id
}

// chain returns the guard handlers followed by h without sharing guard's
// backing array between routes.
func chain(guard []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(guard)+1)
	out = append(out, guard...)
	return append(out, h)
}
