package handler

import (
	"net/http"
	"strconv"
	"time"

	"leasing_portal_backend/internal/notifications/repository"
	"leasing_portal_backend/internal/notifications/service"
	"leasing_portal_backend/internal/tenancy"
	"leasing_portal_backend/platform/httpkit"
	"leasing_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	defaultPageSize = 50
	maxPageSize     = 200
)

// UpdateStatusRequest advances a notification's delivery status.
type UpdateStatusRequest struct {
	Status     string     `json:"status" validate:"required,oneof=pending sent read responded"`
	ReadAt     *time.Time `json:"readAt,omitempty"`
	ResponseAt *time.Time `json:"responseAt,omitempty"`
}

// ListResponse wraps a notification page.
type ListResponse struct {
	Items []repository.LeadNotification `json:"items"`
	Total int                           `json:"total"`
}

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id/status", h.UpdateStatus)
}

// RegisterDashboardRoutes mounts summary endpoints. Kept on a separate
// group so the static path does not collide with /:id.
func (h *Handler) RegisterDashboardRoutes(rg *gin.RouterGroup) {
	rg.GET("/unread-notifications", h.UnreadCount)
}

func (h *Handler) List(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	filter := repository.ListFilter{}
	filter.Limit, filter.Offset = pagination(c)
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	if notificationType := c.Query("type"); notificationType != "" {
		filter.NotificationType = &notificationType
	}

	items, total, err := h.svc.List(c.Request.Context(), tctx, filter)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, ListResponse{Items: items, Total: total})
}

func (h *Handler) GetByID(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	notification, err := h.svc.Get(c.Request.Context(), tctx, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, notification)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	notification, err := h.svc.UpdateStatus(c.Request.Context(), tctx, id, repository.StatusUpdate{
		Status:     req.Status,
		ReadAt:     req.ReadAt,
		ResponseAt: req.ResponseAt,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, notification)
}

func (h *Handler) UnreadCount(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	count, err := h.svc.UnreadCount(c.Request.Context(), tctx)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"unread": count})
}

func callerContext(c *gin.Context) (tenancy.Context, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return tenancy.Context{}, false
	}
	return tenancy.NewIdentity(id.CompanyID(), id.ManagerID(), id.AccessLevel()), true
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
