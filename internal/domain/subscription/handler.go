package subscription

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kplc/bulletin-notify/internal/platform/auth"
	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// SubscriberResolver turns the JWT bearer subject into the subscriber's
// internal id, without this package importing the subscriber domain
// package directly.
type SubscriberResolver interface {
	ResolveID(ctx context.Context, externalID string) (uuid.UUID, error)
}

type Handler struct {
	svc        *Service
	subscriber SubscriberResolver
}

func NewHandler(svc *Service, subscriber SubscriberResolver) *Handler {
	return &Handler{svc: svc, subscriber: subscriber}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/locations/subscribe", h.Subscribe)
	api.GET("/locations/subscribe/progress/:taskId", h.Progress)
	api.GET("/locations/list/subscribed", h.ListSubscribed)
	api.DELETE("/primary_location/:id", h.Remove)
}

func (h *Handler) subscriberID(c echo.Context) (uuid.UUID, error) {
	externalID := auth.SubscriberIDFromContext(c.Request().Context())
	if externalID == "" {
		return uuid.Nil, apperr.Unauthorized("missing bearer subject", nil)
	}
	return h.subscriber.ResolveID(c.Request().Context(), externalID)
}

type subscribeRequest struct {
	ExternalID string `json:"external_id"`
}

type subscribeResponse struct {
	TaskID string `json:"task_id"`
}

func (h *Handler) Subscribe(c echo.Context) error {
	subscriberID, err := h.subscriberID(c)
	if err != nil {
		return err
	}
	var req subscribeRequest
	_ = c.Bind(&req)

	taskID, err := h.svc.RequestSubscription(c.Request().Context(), subscriberID, req.ExternalID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, subscribeResponse{TaskID: taskID})
}

type progressResponse struct {
	Status string `json:"status"`
}

func (h *Handler) Progress(c echo.Context) error {
	status, err := h.svc.Progress(c.Request().Context(), c.Param("taskId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, progressResponse{Status: status})
}

func (h *Handler) ListSubscribed(c echo.Context) error {
	subscriberID, err := h.subscriberID(c)
	if err != nil {
		return err
	}
	views, err := h.svc.ListBySubscriber(c.Request().Context(), subscriberID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) Remove(c echo.Context) error {
	subscriberID, err := h.subscriberID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid subscription id", err)
	}
	if err := h.svc.Remove(c.Request().Context(), subscriberID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
