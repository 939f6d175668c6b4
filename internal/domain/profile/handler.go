package profile

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medid/medid/internal/platform/auth"
	"github.com/medid/medid/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/profiles", h.CreateProfile)
	api.GET("/profiles", h.ListProfiles)
	api.GET("/profiles/:id", h.GetProfile)
	api.PUT("/profiles/:id", h.UpdateProfile)
	api.DELETE("/profiles/:id", h.DeleteProfile)

	api.GET("/profiles/:id/contacts", h.ListContacts)
	api.POST("/profiles/:id/contacts", h.AddContact)
	api.PUT("/profiles/:id/contacts/:contactId", h.UpdateContact)
	api.DELETE("/profiles/:id/contacts/:contactId", h.DeleteContact)

	api.GET("/profiles/:id/privacy", h.GetPrivacy)
	api.PUT("/profiles/:id/privacy", h.UpdatePrivacy)
	api.PUT("/profiles/:id/privacy/password", h.SetAccessPassword)
	api.DELETE("/profiles/:id/privacy/password", h.ClearAccessPassword)
}

// callerID resolves the authenticated user from the request context.
func callerID(c echo.Context) (uuid.UUID, error) {
	uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}
	return uid, nil
}

func writeServiceError(err error) error {
	if errors.Is(err, ErrNotOwner) {
		return echo.NewHTTPError(http.StatusForbidden, "not the profile owner")
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

// -- Profile Handlers --

func (h *Handler) CreateProfile(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	var p Profile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.OwnerID = uid
	if err := h.svc.CreateProfile(c.Request().Context(), &p); err != nil {
		return writeServiceError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetProfile(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetOwnedProfile(c.Request().Context(), uid, id)
	if err != nil {
		if errors.Is(err, ErrNotOwner) {
			return echo.NewHTTPError(http.StatusForbidden, "not the profile owner")
		}
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListProfiles(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListProfilesByOwner(c.Request().Context(), uid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Profile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.UpdateProfile(c.Request().Context(), uid, &p); err != nil {
		return writeServiceError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProfile(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteProfile(c.Request().Context(), uid, id); err != nil {
		return writeServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Emergency Contact Handlers --

func (h *Handler) ListContacts(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if _, err := h.svc.GetOwnedProfile(c.Request().Context(), uid, id); err != nil {
		return writeServiceError(err)
	}
	items, err := h.svc.ListContacts(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AddContact(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var ec EmergencyContact
	if err := c.Bind(&ec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ec.ProfileID = id
	if err := h.svc.AddContact(c.Request().Context(), uid, &ec); err != nil {
		return writeServiceError(err)
	}
	return c.JSON(http.StatusCreated, ec)
}

func (h *Handler) UpdateContact(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	cid, err := uuid.Parse(c.Param("contactId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid contact id")
	}
	var ec EmergencyContact
	if err := c.Bind(&ec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ec.ID = cid
	if err := h.svc.UpdateContact(c.Request().Context(), uid, &ec); err != nil {
		return writeServiceError(err)
	}
	return c.JSON(http.StatusOK, ec)
}

func (h *Handler) DeleteContact(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	cid, err := uuid.Parse(c.Param("contactId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid contact id")
	}
	if err := h.svc.DeleteContact(c.Request().Context(), uid, cid); err != nil {
		return writeServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Privacy Handlers --

func (h *Handler) GetPrivacy(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if _, err := h.svc.GetOwnedProfile(c.Request().Context(), uid, id); err != nil {
		return writeServiceError(err)
	}
	ps, err := h.svc.GetPrivacy(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ps)
}

func (h *Handler) UpdatePrivacy(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var ps PrivacySettings
	if err := c.Bind(&ps); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ps.ProfileID = id
	if err := h.svc.UpdatePrivacy(c.Request().Context(), uid, &ps); err != nil {
		return writeServiceError(err)
	}
	return c.JSON(http.StatusOK, ps)
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

func (h *Handler) SetAccessPassword(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req setPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetAccessPassword(c.Request().Context(), uid, id, req.Password); err != nil {
		return writeServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ClearAccessPassword(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.ClearAccessPassword(c.Request().Context(), uid, id); err != nil {
		return writeServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
