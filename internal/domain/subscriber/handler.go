package subscriber

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kplc/bulletin-notify/internal/platform/auth"
	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// Handler exposes the subscriber-facing authentication endpoint. JWT
// verification itself happens upstream in auth.JWTMiddleware; this handler
// only turns a validated bearer subject into a Subscriber row.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/authenticate", h.Authenticate)
}

type authenticateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) Authenticate(c echo.Context) error {
	externalID := auth.SubscriberIDFromContext(c.Request().Context())
	if externalID == "" {
		return apperr.Unauthorized("missing bearer subject", nil)
	}

	var req authenticateRequest
	_ = c.Bind(&req)

	sub, err := h.svc.Authenticate(c.Request().Context(), externalID, req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sub)
}
