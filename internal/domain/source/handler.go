package source

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kplc/bulletin-notify/internal/domain/outage"
	"github.com/kplc/bulletin-notify/internal/platform/bulletin"
	"github.com/kplc/bulletin-notify/internal/platform/pdftext"
	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// BulletinPersister is outage.Service's PersistBulletin method, kept as an
// interface so AdminHandler doesn't force every caller to build a real
// outage.Service in tests.
type BulletinPersister interface {
	PersistBulletin(ctx context.Context, sourceID uuid.UUID, areas []outage.ParsedArea) error
}

// AdminHandler exposes the operator-only source-registry endpoints: adding
// a bulletin URL to the manual backlog, and uploading a bulletin PDF
// directly against an already-registered source, bypassing C2's scrape.
type AdminHandler struct {
	sources *Service
	outages BulletinPersister
}

func NewAdminHandler(sources *Service, outages BulletinPersister) *AdminHandler {
	return &AdminHandler{sources: sources, outages: outages}
}

func (h *AdminHandler) RegisterRoutes(admin *echo.Group) {
	admin.POST("/sources", h.AddManual)
	admin.POST("/sources/:id/bulletins", h.UploadBulletin)
}

type addManualRequest struct {
	URL string `json:"url"`
}

func (h *AdminHandler) AddManual(c echo.Context) error {
	var req addManualRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body", err)
	}
	if err := h.sources.AddManual(c.Request().Context(), req.URL); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

// UploadBulletin runs C1+C3 synchronously over an operator-supplied PDF
// for a source the registry already knows about, for backfilling a
// bulletin the scrape pipeline missed.
func (h *AdminHandler) UploadBulletin(c echo.Context) error {
	sourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid source id", err)
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apperr.Unexpected("read bulletin upload body", err)
	}

	text, err := pdftext.ExtractBytes(body)
	if err != nil {
		return err
	}
	areas, err := bulletin.Parse(text, time.Now())
	if err != nil {
		return err
	}
	if err := h.outages.PersistBulletin(c.Request().Context(), sourceID, areas); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}
