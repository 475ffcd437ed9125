package visualization

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"contract-console/internal/documents"
	"contract-console/internal/shared/server/middleware"
	"contract-console/internal/shared/server/respond"
	"contract-console/internal/shared/telemetry"
)

const fetchErrorMessage = "Failed to fetch document data"

// Fetcher reads the finished backend record of a document.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (documents.Record, error)
}

// Handler serves the visualization view.
type Handler struct {
	Docs     Fetcher
	AppName  string
	Location *time.Location
}

// NewHandler wires the visualization view.
func NewHandler(docs Fetcher, appName string) *Handler {
	return &Handler{Docs: docs, AppName: appName, Location: time.Local}
}

// RegisterRoutes registers visualization routes.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/visualization/:documentId", h.show)
}

// Load fetches a record exactly once and builds its render model.
func (h *Handler) Load(ctx context.Context, documentID string) (Model, error) {
	rec, err := h.Docs.Fetch(ctx, documentID)
	if err != nil {
		return Model{}, err
	}
	if rec.DocumentID == "" {
		rec.DocumentID = documents.ID(documentID)
	}
	return Build(rec, h.Location), nil
}

func (h *Handler) show(c *gin.Context) {
	documentID := strings.TrimSpace(c.Param("documentId"))
	c.Set(middleware.DocumentIDKey, documentID)
	asJSON := c.Query("format") == "json"

	model, err := h.Load(c.Request.Context(), documentID)
	if err != nil {
		status := http.StatusBadGateway
		var se *documents.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			status = http.StatusNotFound
		} else if errors.Is(err, documents.ErrInvalidID) {
			status = http.StatusNotFound
		}
		telemetry.Warn("visualization.fetch.failed", map[string]any{
			"document_id": documentID,
			"err":         err.Error(),
		})
		if asJSON {
			respond.Error(c, status, "fetch_failed", fetchErrorMessage, nil)
			return
		}
		respond.Page(c, status, "fetch_failed", fetchErrorMessage, gin.H{"AppName": h.AppName})
		return
	}

	if asJSON {
		respond.OK(c, model)
		return
	}
	c.HTML(http.StatusOK, "visualization.html", gin.H{
		"AppName": h.AppName,
		"Model":   model,
	})
}
