package handler

import (
	"net/http"
	"strconv"

	"leasing_portal_backend/internal/portfolio/repository"
	"leasing_portal_backend/internal/portfolio/service"
	"leasing_portal_backend/internal/portfolio/transport"
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

// RegisterCompanyRoutes mounts the company profile endpoints.
func (h *Handler) RegisterCompanyRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.GetCompany)
	rg.PUT("", h.UpdateCompany)
}

// RegisterPropertyRoutes mounts the property tree endpoints.
func (h *Handler) RegisterPropertyRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListProperties)
	rg.POST("", h.CreateProperty)
	rg.GET("/:id", h.GetProperty)
	rg.PUT("/:id", h.UpdateProperty)
	rg.DELETE("/:id", h.DeleteProperty)
	rg.GET("/:id/chatbot", h.GetChatbot)
	rg.POST("/:id/chatbot", h.CreateChatbot)
	rg.GET("/:id/faqs", h.ListFAQs)
	rg.POST("/:id/faqs", h.CreateFAQ)
	rg.GET("/:id/integrations", h.ListIntegrations)
	rg.POST("/:id/integrations", h.CreateIntegration)
}

// RegisterChatbotRoutes mounts chatbot-addressed endpoints.
func (h *Handler) RegisterChatbotRoutes(rg *gin.RouterGroup) {
	rg.PUT("/:chatbotId", h.UpdateChatbot)
}

// RegisterFAQRoutes mounts FAQ-addressed endpoints.
func (h *Handler) RegisterFAQRoutes(rg *gin.RouterGroup) {
	rg.PUT("/:faqId", h.UpdateFAQ)
	rg.DELETE("/:faqId", h.DeleteFAQ)
}

func (h *Handler) GetCompany(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	company, err := h.svc.GetCompany(c.Request.Context(), tctx)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, company)
}

func (h *Handler) UpdateCompany(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	var req transport.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	company, err := h.svc.UpdateCompany(c.Request.Context(), tctx, req.Name, req.LogoURL, req.ContactEmail, req.ContactPhone)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, company)
}

func (h *Handler) CreateProperty(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	var req transport.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	property, chatbot, err := h.svc.CreateProperty(c.Request.Context(), tctx, req.ToCreateParams())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.PropertyResponse{Property: property, Chatbot: chatbot})
}

func (h *Handler) GetProperty(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	property, err := h.svc.GetProperty(c.Request.Context(), tctx, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, property)
}

func (h *Handler) ListProperties(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	items, total, err := h.svc.ListProperties(c.Request.Context(), tctx, limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.PropertyListResponse{Items: items, Total: total})
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	property, err := h.svc.UpdateProperty(c.Request.Context(), tctx, id, req.ToUpdateParams())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, property)
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteProperty(c.Request.Context(), tctx, id)) {
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) GetChatbot(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	chatbot, err := h.svc.GetChatbotByProperty(c.Request.Context(), tctx, propertyID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, chatbot)
}

func (h *Handler) CreateChatbot(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.CreateChatbotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	chatbot, err := h.svc.CreateChatbot(c.Request.Context(), tctx, propertyID, repository.CreateChatbotParams{
		Name:           req.Name,
		AvatarURL:      req.AvatarURL,
		WelcomeMessage: req.WelcomeMessage,
		WidgetSettings: req.WidgetSettings,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, chatbot)
}

func (h *Handler) UpdateChatbot(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("chatbotId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateChatbotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	chatbot, err := h.svc.UpdateChatbot(c.Request.Context(), tctx, id, repository.UpdateChatbotParams{
		Name:           req.Name,
		AvatarURL:      req.AvatarURL,
		IsActive:       req.IsActive,
		WelcomeMessage: req.WelcomeMessage,
		EmbedCode:      req.EmbedCode,
		WidgetSettings: req.WidgetSettings,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, chatbot)
}

func (h *Handler) ListFAQs(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	faqs, err := h.svc.ListFAQs(c.Request.Context(), tctx, propertyID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": faqs})
}

func (h *Handler) CreateFAQ(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	faq, err := h.svc.CreateFAQ(c.Request.Context(), tctx, propertyID, repository.FAQParams{
		Question:   req.Question,
		Answer:     req.Answer,
		Category:   req.Category,
		SourceType: req.SourceType,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, faq)
}

func (h *Handler) UpdateFAQ(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("faqId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	faq, err := h.svc.UpdateFAQ(c.Request.Context(), tctx, id, repository.FAQParams{
		Question:   req.Question,
		Answer:     req.Answer,
		Category:   req.Category,
		SourceType: req.SourceType,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, faq)
}

func (h *Handler) DeleteFAQ(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("faqId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteFAQ(c.Request.Context(), tctx, id)) {
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListIntegrations(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	integrations, err := h.svc.ListIntegrations(c.Request.Context(), tctx, propertyID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": integrations})
}

func (h *Handler) CreateIntegration(c *gin.Context) {
	tctx, ok := callerContext(c)
	if !ok {
		return
	}

	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.CreateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	integration, err := h.svc.CreateIntegration(c.Request.Context(), tctx, repository.IntegrationParams{
		PropertyID:      propertyID,
		ChatbotID:       req.ChatbotID,
		WebsiteURL:      req.WebsiteURL,
		IntegrationType: req.IntegrationType,
		Configuration:   req.Configuration,
		TrackingID:      req.TrackingID,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, integration)
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
