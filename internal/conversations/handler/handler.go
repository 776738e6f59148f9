package handler

import (
	"net/http"
	"strconv"

	"leasing_portal_backend/internal/conversations/repository"
	"leasing_portal_backend/internal/conversations/service"
	"leasing_portal_backend/internal/conversations/transport"
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
	rg.POST("", h.Upsert)
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/score", h.RecomputeScore)
	rg.GET("/:id/messages", h.ListMessages)
	rg.POST("/:id/messages", h.AppendMessage)
}

// RegisterMessageRoutes mounts message-addressed endpoints. Kept on a
// separate group so the static path does not collide with /:id.
func (h *Handler) RegisterMessageRoutes(rg *gin.RouterGroup) {
	rg.PATCH("/:messageId", h.AnnotateMessage)
}

// Upsert creates a conversation or applies a partial update to an existing
// one. Status transitions and notification fan-out happen inside the write.
func (h *Handler) Upsert(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	var req transport.UpsertConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	conv, err := h.svc.CreateOrUpdate(c.Request.Context(), tctx, req.ToUpsertFields(), req.ToLeadFields())
	if httpkit.HandleError(c, err) {
		return
	}

	status := http.StatusOK
	if req.ID == nil {
		status = http.StatusCreated
	}
	httpkit.JSON(c, status, conv)
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

	conv, err := h.svc.Get(c.Request.Context(), tctx, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, conv)
}

func (h *Handler) List(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	filter := repository.ListFilter{}
	filter.Limit, filter.Offset = pagination(c)

	if raw := c.Query("chatbotId"); raw != "" {
		chatbotID, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		filter.ChatbotID = &chatbotID
	}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}

	items, total, err := h.svc.List(c.Request.Context(), tctx, filter)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ConversationListResponse{Items: items, Total: total})
}

func (h *Handler) RecomputeScore(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	score, err := h.svc.RecomputeScore(c.Request.Context(), tctx, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ScoreResponse{ConversationID: id, LeadScore: score})
}

func (h *Handler) AppendMessage(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	msg, err := h.svc.AppendMessage(c.Request.Context(), tctx, repository.MessageParams{
		ConversationID: conversationID,
		SenderType:     req.SenderType,
		MessageText:    req.MessageText,
		MessageType:    req.MessageType,
		Metadata:       req.Metadata,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, msg)
}

func (h *Handler) ListMessages(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	limit, offset := pagination(c)
	items, total, err := h.svc.ListMessages(c.Request.Context(), tctx, conversationID, limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.MessageListResponse{Items: items, Total: total})
}

func (h *Handler) AnnotateMessage(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	messageID, err := uuid.Parse(c.Param("messageId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.AnnotateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	err = h.svc.AnnotateMessage(c.Request.Context(), tctx, messageID, req.Metadata)
	if httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

// callerContext resolves the authenticated manager into a tenancy context.
// Aborts with 401 when no identity is present.
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
