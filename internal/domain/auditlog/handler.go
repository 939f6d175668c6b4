package auditlog

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medid/medid/internal/platform/auth"
	"github.com/medid/medid/pkg/pagination"
)

type Handler struct {
	svc     *Service
	isOwner func(c echo.Context, userID, profileID uuid.UUID) (bool, error)
}

// NewHandler builds the audit log handler. isOwner gates the per-profile
// history endpoint to the profile owner.
func NewHandler(svc *Service, isOwner func(c echo.Context, userID, profileID uuid.UUID) (bool, error)) *Handler {
	return &Handler{svc: svc, isOwner: isOwner}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/profiles/:id/audit", h.ListProfileHistory)

	adminGroup := api.Group("", auth.RequireRole("admin"))
	adminGroup.GET("/audit", h.Search)
	adminGroup.GET("/audit/:id", h.GetRecord)
}

// ListProfileHistory returns a profile's access history to its owner.
func (h *Handler) ListProfileHistory(c echo.Context) error {
	uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	owns, err := h.isOwner(c, uid, profileID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	if !owns {
		return echo.NewHTTPError(http.StatusForbidden, "not the profile owner")
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByProfile(c.Request().Context(), profileID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.GetRecord(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "audit record not found")
	}
	return c.JSON(http.StatusOK, rec)
}

// Search filters the access log by profile, viewer, action, and time range.
func (h *Handler) Search(c echo.Context) error {
	var f SearchFilter

	if v := c.QueryParam("profile_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid profile_id")
		}
		f.ProfileID = id
	}
	if v := c.QueryParam("viewer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid viewer_id")
		}
		f.ViewerID = id
	}
	f.Action = c.QueryParam("action")
	if v := c.QueryParam("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from timestamp")
		}
		f.From = ts
	}
	if v := c.QueryParam("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to timestamp")
		}
		f.To = ts
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.Search(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
