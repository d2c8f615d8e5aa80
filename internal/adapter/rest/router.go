// Package rest exposes the pricing and schedule services to the sales portal over HTTP.
package rest

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simaogato/estateflow-backend/internal/adapter/presenter"
	"github.com/simaogato/estateflow-backend/internal/domain"
	"github.com/simaogato/estateflow-backend/internal/logging"
	"github.com/simaogato/estateflow-backend/internal/metrics"
	"github.com/simaogato/estateflow-backend/internal/usecase/pricing"
	"github.com/simaogato/estateflow-backend/internal/usecase/timeline"
)

// Handler serves the HTTP API
type Handler struct {
	PricingService  *pricing.PricingService
	ScheduleService *timeline.ScheduleService
	APIToken        string
	Logger          logging.Logger
	Metrics         *metrics.Metrics
}

// selectDiscountsRequest is the body of POST /api/properties/:id/discounts
type selectDiscountsRequest struct {
	DiscountIDs []string `json:"discount_ids"`
}

// NewRouter builds the gin engine with every route registered
func NewRouter(h *Handler) *gin.Engine {
	if h.Logger == nil {
		h.Logger = logging.Nop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), logging.LogForGin(h.Logger), h.countRequests)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}

	api := router.Group("/api", h.requireToken)
	api.GET("/discounts", h.listDiscounts)
	api.GET("/properties/:id/price", h.getPriceView)
	api.POST("/properties/:id/discounts", h.selectDiscounts)
	api.GET("/properties/:id/schedule", h.getSchedule)
	api.POST("/properties/:id/schedule/regenerate", h.regenerateSchedule)

	return router
}

func (h *Handler) countRequests(c *gin.Context) {
	c.Next()
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	h.Metrics.Request("http", c.Request.Method+" "+route, fmt.Sprint(c.Writer.Status()))
}

// requireToken checks the static API token sent as "Authorization: Bearer <token>"
func (h *Handler) requireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		abortWithError(c, http.StatusUnauthorized, "missing authorization header")
		return
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.APIToken)) != 1 {
		abortWithError(c, http.StatusUnauthorized, "invalid token")
		return
	}
	c.Next()
}

func (h *Handler) listDiscounts(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	discounts, err := h.PricingService.ListDiscounts(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"discounts": presenter.Discounts(discounts)})
}

func (h *Handler) getPriceView(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	view, err := h.PricingService.GetPriceView(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presenter.PriceView(view))
}

func (h *Handler) selectDiscounts(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var req selectDiscountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	discountIDs := make([]uuid.UUID, 0, len(req.DiscountIDs))
	for _, raw := range req.DiscountIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("invalid discount id %q", raw))
			return
		}
		discountIDs = append(discountIDs, id)
	}

	count, err := h.PricingService.SelectDiscounts(c.Request.Context(), productID, discountIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "selected_count": count})
}

func (h *Handler) getSchedule(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	schedule, err := h.ScheduleService.GetSchedule(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presenter.Schedule(schedule))
}

func (h *Handler) regenerateSchedule(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	schedule, err := h.ScheduleService.Regenerate(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presenter.Schedule(schedule))
}

func productIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("invalid property id %q", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "internal error")
	}
}

func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}
