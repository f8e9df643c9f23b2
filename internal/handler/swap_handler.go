package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/skillswap-api/internal/dto"
	"github.com/noah-isme/skillswap-api/internal/models"
	"github.com/noah-isme/skillswap-api/internal/service"
	appErrors "github.com/noah-isme/skillswap-api/pkg/errors"
	"github.com/noah-isme/skillswap-api/pkg/response"
)

type swapService interface {
	Create(ctx context.Context, req dto.CreateSwapRequest, actorID string) (*dto.SwapResponse, error)
	List(ctx context.Context, filter models.SwapFilter, actorID string) ([]dto.SwapResponse, *models.Pagination, error)
	Get(ctx context.Context, id, actorID string) (*dto.SwapResponse, error)
	Update(ctx context.Context, id, actorID string, req dto.UpdateSwapRequest) (*dto.SwapResponse, error)
	Delete(ctx context.Context, id, actorID string) error
	Accept(ctx context.Context, id, actorID string, req dto.AcceptSwapRequest) (*dto.SwapResponse, error)
	Reject(ctx context.Context, id, actorID string, req dto.ResolveSwapRequest) (*dto.SwapResponse, error)
	Cancel(ctx context.Context, id, actorID string, req dto.ResolveSwapRequest) (*dto.SwapResponse, error)
	Complete(ctx context.Context, id, actorID string) (*dto.SwapResponse, error)
}

// SwapHandler wires HTTP endpoints to the swap lifecycle service.
type SwapHandler struct {
	service swapService
	metrics *service.MetricsService
}

// NewSwapHandler creates a new handler. metrics may be nil.
func NewSwapHandler(svc swapService, metrics *service.MetricsService) *SwapHandler {
	return &SwapHandler{service: svc, metrics: metrics}
}

// Create godoc
// @Summary Create a swap request
// @Description Propose a skill exchange to another member
// @Tags Swaps
// @Accept json
// @Produce json
// @Param payload body dto.CreateSwapRequest true "Swap payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /swaps [post]
func (h *SwapHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid swap payload"))
		return
	}

	res, err := h.service.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.observe(models.SwapStatusPending)
	response.Created(c, res)
}

// List godoc
// @Summary List own swap requests
// @Description List requests the authenticated user participates in
// @Tags Swaps
// @Produce json
// @Param role query string false "sent or received"
// @Param status query string false "Lifecycle status filter"
// @Param learning_mode query string false "online, in_person or both"
// @Param skill query string false "Skill substring match"
// @Param sort_by query string false "Sort column"
// @Param sort_order query string false "asc or desc"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /swaps [get]
func (h *SwapHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, pageSize := pageParams(c)
	filter := models.SwapFilter{
		Role:      c.Query("role"),
		Skill:     c.Query("skill"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      page,
		PageSize:  pageSize,
	}
	if raw := c.Query("status"); raw != "" {
		status := models.SwapStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("learning_mode"); raw != "" {
		mode := models.LearningMode(raw)
		filter.LearningMode = &mode
	}

	swaps, pagination, err := h.service.List(c.Request.Context(), filter, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, swaps, pagination)
}

// Get godoc
// @Summary Fetch a swap request
// @Description Return one request; only its parties may read it
// @Tags Swaps
// @Produce json
// @Param id path string true "Swap request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /swaps/{id} [get]
func (h *SwapHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Update godoc
// @Summary Update swap terms
// @Description Update mutable terms of a non-terminal request
// @Tags Swaps
// @Accept json
// @Produce json
// @Param id path string true "Swap request ID"
// @Param payload body dto.UpdateSwapRequest true "Mutable fields"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /swaps/{id} [put]
func (h *SwapHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	res, err := h.service.Update(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Delete godoc
// @Summary Delete a pending swap request
// @Description Remove a still-pending request; requester only
// @Tags Swaps
// @Produce json
// @Param id path string true "Swap request ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /swaps/{id} [delete]
func (h *SwapHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Accept godoc
// @Summary Accept a swap request
// @Description Recipient accepts a pending request before its deadline
// @Tags Swaps
// @Accept json
// @Produce json
// @Param id path string true "Swap request ID"
// @Param payload body dto.AcceptSwapRequest false "Meeting details"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /swaps/{id}/accept [post]
func (h *SwapHandler) Accept(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.AcceptSwapRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid accept payload"))
			return
		}
	}

	res, err := h.service.Accept(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.observe(models.SwapStatusAccepted)
	response.JSON(c, http.StatusOK, res, nil)
}

// Reject godoc
// @Summary Reject a swap request
// @Description Recipient declines a pending request
// @Tags Swaps
// @Accept json
// @Produce json
// @Param id path string true "Swap request ID"
// @Param payload body dto.ResolveSwapRequest false "Optional reason"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /swaps/{id}/reject [post]
func (h *SwapHandler) Reject(c *gin.Context) {
	h.resolve(c, models.SwapStatusRejected, h.service.Reject)
}

// Cancel godoc
// @Summary Cancel a swap request
// @Description Requester withdraws a pending or accepted request
// @Tags Swaps
// @Accept json
// @Produce json
// @Param id path string true "Swap request ID"
// @Param payload body dto.ResolveSwapRequest false "Optional reason"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /swaps/{id}/cancel [post]
func (h *SwapHandler) Cancel(c *gin.Context) {
	h.resolve(c, models.SwapStatusCancelled, h.service.Cancel)
}

// Complete godoc
// @Summary Complete a swap
// @Description Either party marks an accepted exchange as done
// @Tags Swaps
// @Produce json
// @Param id path string true "Swap request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /swaps/{id}/complete [post]
func (h *SwapHandler) Complete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.service.Complete(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.observe(models.SwapStatusCompleted)
	response.JSON(c, http.StatusOK, res, nil)
}

func (h *SwapHandler) resolve(c *gin.Context, status models.SwapStatus, fn func(ctx context.Context, id, actorID string, req dto.ResolveSwapRequest) (*dto.SwapResponse, error)) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ResolveSwapRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}

	res, err := fn(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.observe(status)
	response.JSON(c, http.StatusOK, res, nil)
}

func (h *SwapHandler) observe(status models.SwapStatus) {
	if h.metrics != nil {
		h.metrics.ObserveSwapTransition(status)
	}
}
