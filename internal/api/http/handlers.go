package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/interphost/backend/internal/interp"
	"github.com/interphost/backend/internal/logging"
	"github.com/interphost/backend/internal/monitoring"
)

// Handlers contains all HTTP handlers for the host API.
type Handlers struct {
	host    *interp.Host
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandlers creates a new handler set.
func NewHandlers(host *interp.Host, logger *logging.Logger, metrics *monitoring.Metrics) *Handlers {
	return &Handlers{
		host:    host,
		logger:  logger,
		metrics: metrics,
	}
}

// Root handles the basic health check.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "interphost",
		"version": "0.3.0",
	})
}

// Health handles the detailed health check.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"host":   h.host.Stats(),
	})
}

// CreateContext allocates a new execution context.
func (h *Handlers) CreateContext(c *gin.Context) {
	req := struct {
		Isolated *bool `json:"isolated"`
	}{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	isolated := true
	if req.Isolated != nil {
		isolated = *req.Isolated
	}

	id, err := h.host.Create(isolated)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.IncContextsCreated()
	h.metrics.SetContextsLive(h.host.Stats().Live)

	c.JSON(http.StatusCreated, gin.H{
		"context_id": id,
		"isolated":   isolated,
	})
}

// DestroyContext destroys the identified context.
func (h *Handlers) DestroyContext(c *gin.Context) {
	id, ok := h.contextID(c)
	if !ok {
		return
	}

	if err := h.host.Destroy(id); err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.IncContextsDestroyed()
	h.metrics.SetContextsLive(h.host.Stats().Live)

	c.JSON(http.StatusOK, gin.H{
		"destroyed":  true,
		"context_id": id,
	})
}

// ListContexts lists every live context, newest first.
func (h *Handlers) ListContexts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"contexts": h.host.ListAll(),
		"stats":    h.host.Stats(),
	})
}

// CurrentContext reports the active context.
func (h *Handlers) CurrentContext(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"context_id": h.host.GetCurrent()})
}

// MainContext reports the process's first context.
func (h *Handlers) MainContext(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"context_id": h.host.GetMain()})
}

// IsRunning reports whether the identified context has a live call stack.
func (h *Handlers) IsRunning(c *gin.Context) {
	id, ok := h.contextID(c)
	if !ok {
		return
	}

	running, err := h.host.IsRunning(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"context_id": id,
		"running":    running,
	})
}

// RunString executes a script inside the identified context, binding
// shared values into its namespace first.
func (h *Handlers) RunString(c *gin.Context) {
	id, ok := h.contextID(c)
	if !ok {
		return
	}

	req := struct {
		Script string                 `json:"script" binding:"required"`
		Shared map[string]interface{} `json:"shared"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timer := monitoring.NewRunTimer(h.metrics, len(req.Shared))
	err := h.host.RunString(id, req.Script, req.Shared)
	if err != nil {
		timer.Stop("error")
		h.fail(c, err)
		return
	}
	timer.Stop("ok")

	c.JSON(http.StatusOK, gin.H{
		"context_id": id,
		"ok":         true,
	})
}

// contextID parses the :id route parameter.
func (h *Handlers) contextID(c *gin.Context) (interp.ID, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid context id: " + raw})
		return 0, false
	}
	return interp.ID(id), true
}

// fail maps the host failure taxonomy onto HTTP statuses.
func (h *Handlers) fail(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}

	var runFailed *interp.RunFailedError
	if errors.As(err, &runFailed) {
		body["kind"] = runFailed.Kind
		body["message"] = runFailed.Message
	}

	status := statusFor(err)
	h.logger.Debug("request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.Error(err),
	)
	c.JSON(status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, interp.ErrInvalidContext):
		return http.StatusNotFound
	case errors.Is(err, interp.ErrSelfDestruction),
		errors.Is(err, interp.ErrAlreadyRunning),
		errors.Is(err, interp.ErrAmbiguousState):
		return http.StatusConflict
	case errors.Is(err, interp.ErrNotShareable),
		errors.Is(err, interp.ErrInvalidSource):
		return http.StatusBadRequest
	case errors.Is(err, interp.ErrRunFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, interp.ErrConstruction):
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}
