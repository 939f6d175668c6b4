package access

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medid/medid/internal/domain/profile"
	"github.com/medid/medid/internal/platform/auth"
)

type Handler struct {
	svc *Service
	// baseURL is the externally reachable server root used to build share
	// URLs for QR rendering.
	baseURL string
}

func NewHandler(svc *Service, baseURL string) *Handler {
	return &Handler{svc: svc, baseURL: baseURL}
}

// RegisterRoutes wires the authenticated access endpoints onto api and the
// anonymous share endpoints onto public.
func (h *Handler) RegisterRoutes(api, public *echo.Group) {
	api.GET("/profiles/:id/view", h.ViewProfile)
	api.POST("/profiles/:id/access/password", h.VerifyPassword)
	api.POST("/profiles/:id/share", h.CreateShare)

	public.GET("/share/:token", h.ViewShared)
	public.POST("/share/:token/password", h.VerifySharedPassword)
	public.GET("/share/:token/qr", h.ShareQR)
}

func viewerFromContext(c echo.Context) Viewer {
	ctx := c.Request().Context()
	v := Viewer{
		Name:                 auth.UserNameFromContext(ctx),
		Roles:                auth.RolesFromContext(ctx),
		ProfessionalVerified: auth.IsProfessionalVerified(ctx),
	}
	if id, err := uuid.Parse(auth.UserIDFromContext(ctx)); err == nil {
		v.ID = id
	}
	return v
}

func metaFromContext(c echo.Context, viaShare bool) RequestMeta {
	return RequestMeta{
		IPAddress:     c.RealIP(),
		UserAgent:     c.Request().UserAgent(),
		ViaShareToken: viaShare,
	}
}

func writeAccessError(err error) error {
	switch {
	case errors.Is(err, ErrDenied):
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	case errors.Is(err, ErrPasswordRequired):
		return echo.NewHTTPError(http.StatusUnauthorized, "access password required")
	case errors.Is(err, ErrInvalidPassword):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid access password")
	case errors.Is(err, ErrNoPasswordSet):
		return echo.NewHTTPError(http.StatusBadRequest, "profile has no access password")
	case errors.Is(err, ErrShareNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "share link not found or expired")
	case errors.Is(err, profile.ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, "not the profile owner")
	default:
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
}

// ViewProfile returns the profile through the access rules for the
// authenticated viewer.
func (h *Handler) ViewProfile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	view, err := h.svc.View(c.Request().Context(), viewerFromContext(c), id, metaFromContext(c, false))
	if err != nil {
		return writeAccessError(err)
	}
	return c.JSON(http.StatusOK, view)
}

type verifyPasswordRequest struct {
	Password string `json:"password"`
}

func (h *Handler) VerifyPassword(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req verifyPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	eval, err := h.svc.VerifyPassword(c.Request().Context(), viewerFromContext(c), id, req.Password, metaFromContext(c, false))
	if err != nil {
		return writeAccessError(err)
	}
	return c.JSON(http.StatusOK, eval)
}

type shareResponse struct {
	Token     string `json:"token"`
	URL       string `json:"url"`
	QRURL     string `json:"qr_url"`
	ExpiresAt string `json:"expires_at"`
}

func (h *Handler) CreateShare(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	link, err := h.svc.CreateShare(c.Request().Context(), viewerFromContext(c), id, metaFromContext(c, false))
	if err != nil {
		return writeAccessError(err)
	}
	return c.JSON(http.StatusCreated, shareResponse{
		Token:     link.Token,
		URL:       h.baseURL + "/share/" + link.Token,
		QRURL:     h.baseURL + "/share/" + link.Token + "/qr",
		ExpiresAt: link.ExpiresAt.Format(time.RFC3339),
	})
}

// ViewShared serves a profile to an anonymous responder holding a share
// token. The owner's access rules still apply.
func (h *Handler) ViewShared(c echo.Context) error {
	link, err := h.svc.ResolveShare(c.Param("token"))
	if err != nil {
		return writeAccessError(err)
	}
	view, err := h.svc.View(c.Request().Context(), Anonymous(), link.ProfileID, metaFromContext(c, true))
	if err != nil {
		return writeAccessError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) VerifySharedPassword(c echo.Context) error {
	link, err := h.svc.ResolveShare(c.Param("token"))
	if err != nil {
		return writeAccessError(err)
	}
	var req verifyPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	eval, err := h.svc.VerifyPassword(c.Request().Context(), Anonymous(), link.ProfileID, req.Password, metaFromContext(c, true))
	if err != nil {
		return writeAccessError(err)
	}
	return c.JSON(http.StatusOK, eval)
}

// ShareQR renders the share URL as a PNG.
func (h *Handler) ShareQR(c echo.Context) error {
	link, err := h.svc.ResolveShare(c.Param("token"))
	if err != nil {
		return writeAccessError(err)
	}
	png, err := EncodeShareQR(h.baseURL + "/share/" + link.Token)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
