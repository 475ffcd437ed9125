package loading

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"contract-console/internal/navigation"
	"contract-console/internal/shared/config"
	"contract-console/internal/shared/server/middleware"
	"contract-console/internal/shared/server/respond"
)

const defaultFilename = "document"

// Handler serves the loading view and its state endpoints.
type Handler struct {
	Sessions     *Registry
	Nav          *navigation.Codec
	Texts        config.Texts
	AppName      string
	PollInterval time.Duration
}

// NewHandler wires a loading handler from configuration.
func NewHandler(cfg config.Config, sessions *Registry, nav *navigation.Codec) *Handler {
	return &Handler{
		Sessions:     sessions,
		Nav:          nav,
		Texts:        cfg.Texts,
		AppName:      cfg.AppName,
		PollInterval: cfg.PollInterval,
	}
}

// RegisterRoutes registers loading view routes.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/loading/:documentId", h.page)
	rg.GET("/loading/:documentId/state", h.state)
	rg.POST("/loading/:documentId/retry", h.retry)
}

// StateResponse is what an open loading page sees on every refresh.
type StateResponse struct {
	ViewID     string `json:"view_id"`
	DocumentID string `json:"document_id"`
	Phase      Phase  `json:"phase"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`
	LastStatus int    `json:"last_status"`
	Navigate   string `json:"navigate,omitempty"`
}

func (h *Handler) response(viewID string, st State) StateResponse {
	out := StateResponse{
		ViewID:     viewID,
		DocumentID: st.DocumentID,
		Phase:      st.Phase,
		Message:    st.Message(h.Texts),
		LastStatus: st.LastStatus,
		Navigate:   st.Target,
	}
	if st.Phase == PhaseStalled || st.Phase == PhaseFailed {
		out.Error = st.Reason
	}
	return out
}

func (h *Handler) page(c *gin.Context) {
	documentID := strings.TrimSpace(c.Param("documentId"))
	c.Set(middleware.DocumentIDKey, documentID)
	if documentID == "" {
		respond.Page(c, http.StatusNotFound, "not_found", "Document not found", gin.H{"AppName": h.AppName})
		return
	}

	s := h.Sessions.Open(documentID)
	c.Set(middleware.ViewIDKey, s.ViewID())
	st := s.Snapshot()

	base := "/loading/" + url.PathEscape(documentID)
	query := "?view=" + url.QueryEscape(s.ViewID())
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "loading.html", gin.H{
		"AppName":        h.AppName,
		"DocumentID":     documentID,
		"ViewID":         s.ViewID(),
		"Filename":       h.Nav.FilenameFor(c, documentID, defaultFilename),
		"Message":        st.Message(h.Texts),
		"Error":          "",
		"StateURL":       base + "/state" + query,
		"RetryURL":       base + "/retry" + query,
		"PollIntervalMs": h.PollInterval.Milliseconds(),
	})
}

func (h *Handler) session(c *gin.Context) (*Session, bool) {
	documentID := strings.TrimSpace(c.Param("documentId"))
	viewID := strings.TrimSpace(c.Query("view"))
	c.Set(middleware.DocumentIDKey, documentID)
	c.Set(middleware.ViewIDKey, viewID)

	s, err := h.Sessions.Get(viewID)
	if err != nil || s.DocumentID() != documentID {
		respond.Error(c, http.StatusNotFound, "view_not_found", ErrSessionNotFound.Error(), nil)
		return nil, false
	}
	return s, true
}

func (h *Handler) state(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	st := s.Snapshot()
	c.Header("Cache-Control", "no-store")
	respond.Fresh(c, h.response(s.ViewID(), st))
	if st.Phase == PhaseComplete {
		h.Sessions.Release(s.ViewID())
	}
}

func (h *Handler) retry(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	st, err := s.Retry(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrSessionClosed) {
			respond.Error(c, http.StatusNotFound, "view_not_found", ErrSessionNotFound.Error(), nil)
			return
		}
		respond.Error(c, http.StatusRequestTimeout, "retry_cancelled", "Retry was cancelled", nil)
		return
	}
	respond.Fresh(c, h.response(s.ViewID(), st))
}
