package uploads

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"contract-console/internal/documents"
	"contract-console/internal/navigation"
	"contract-console/internal/shared/metrics"
	"contract-console/internal/shared/server/middleware"
	"contract-console/internal/shared/server/respond"
)

// Form overhead allowed on top of the file itself.
const multipartSlack = 1 << 20

// Handler serves the upload view.
type Handler struct {
	Svc     *Service
	Nav     *navigation.Codec
	AppName string
}

// NewHandler wires the upload view.
func NewHandler(svc *Service, nav *navigation.Codec, appName string) *Handler {
	return &Handler{Svc: svc, Nav: nav, AppName: appName}
}

// RegisterRoutes registers upload view routes.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/", h.page)
	rg.POST("/upload", h.upload)
}

func (h *Handler) page(c *gin.Context) {
	h.render(c, http.StatusOK, "", "")
}

func (h *Handler) render(c *gin.Context, status int, alert, failure string) {
	c.HTML(status, "upload.html", gin.H{
		"AppName": h.AppName,
		"NotPDF":  h.Svc.Texts.NotPDF(),
		"Alert":   alert,
		"Error":   failure,
	})
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.MaxBytes+multipartSlack)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(c, ErrTooLarge)
			return
		}
		h.reject(c, ErrNoFile)
		return
	}

	total := 0
	for _, files := range form.File {
		total += len(files)
	}
	files := form.File["file"]
	switch {
	case total > 1:
		h.reject(c, ErrMultipleFiles)
		return
	case len(files) == 0:
		h.reject(c, ErrNoFile)
		return
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		h.reject(c, ErrNoFile)
		return
	}
	defer f.Close()

	sel, err := h.Svc.Inspect(fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		h.reject(c, err)
		return
	}

	outcome, err := h.Svc.Submit(c.Request.Context(), sel)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, documents.ErrRejected) {
			status = http.StatusUnprocessableEntity
		}
		if wantsJSON(c) {
			respond.JSON(c, status, outcome)
			return
		}
		h.render(c, status, "", outcome.Error)
		return
	}

	c.Set(middleware.DocumentIDKey, outcome.DocumentID)
	if wantsJSON(c) {
		respond.Created(c, outcome)
		return
	}
	target := "/loading/" + url.PathEscape(outcome.DocumentID)
	state := navigation.State{Filename: outcome.Filename, DocumentID: outcome.DocumentID}
	if err := h.Nav.Redirect(c, target, state); err != nil {
		h.render(c, http.StatusInternalServerError, "", err.Error())
	}
}

// reject answers input-validation failures without calling the backend.
func (h *Handler) reject(c *gin.Context, err error) {
	metrics.IncUploadRejected()
	status, alert := http.StatusBadRequest, h.Svc.Texts.NotPDF()
	switch {
	case errors.Is(err, ErrNotPDF):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, ErrTooLarge):
		status, alert = http.StatusRequestEntityTooLarge, "The selected file is too large"
	case errors.Is(err, ErrMultipleFiles):
		alert = "Please upload a single PDF file"
	}
	if wantsJSON(c) {
		respond.JSON(c, status, Outcome{Success: false, Error: alert})
		return
	}
	h.render(c, status, alert, "")
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}
