package handler

import (
	"net/http"
	"strconv"

	"leasing_portal_backend/internal/auth/password"
	"leasing_portal_backend/internal/managers/repository"
	"leasing_portal_backend/internal/managers/service"
	"leasing_portal_backend/internal/managers/transport"
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

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// RegisterAssignmentRoutes mounts the assignment registry endpoints. Kept
// on a separate group so the static paths do not collide with /:id.
func (h *Handler) RegisterAssignmentRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListAssignments)
	rg.POST("", h.Assign)
	rg.DELETE("/:assignmentId", h.EndAssignment)
}

func (h *Handler) Create(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	var req transport.CreateManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	params := repository.CreateManagerParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Role:        req.Role,
		AccessLevel: req.AccessLevel,
	}
	if req.Password != nil {
		hash, err := password.Hash(*req.Password)
		if err != nil {
			httpkit.Error(c, http.StatusInternalServerError, "could not process password", nil)
			return
		}
		params.PasswordHash = &hash
	}

	manager, err := h.svc.CreateManager(c.Request.Context(), tctx, params)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, manager)
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

	manager, err := h.svc.Get(c.Request.Context(), tctx, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, manager)
}

func (h *Handler) List(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	items, total, err := h.svc.List(c.Request.Context(), tctx, limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ManagerListResponse{Items: items, Total: total})
}

func (h *Handler) Update(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	manager, err := h.svc.Update(c.Request.Context(), tctx, id, repository.UpdateManagerParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Role:        req.Role,
		AccessLevel: req.AccessLevel,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, manager)
}

func (h *Handler) Delete(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), tctx, id)) {
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Assign(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	var req transport.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	assignment, err := h.svc.Assign(c.Request.Context(), tctx, req.ToAssignParams())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, assignment)
}

func (h *Handler) EndAssignment(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("assignmentId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	assignment, err := h.svc.EndAssignment(c.Request.Context(), tctx, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, assignment)
}

func (h *Handler) ListAssignments(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	var propertyID *uuid.UUID
	if raw := c.Query("propertyId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		propertyID = &parsed
	}

	items, err := h.svc.ListAssignments(c.Request.Context(), tctx, propertyID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.AssignmentListResponse{Items: items})
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
