package contact

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"realtysite/internal/pkg/response"
	"realtysite/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.POST("/contact", h.SubmitGeneral)
	v1.POST("/properties/:id/contact", h.SubmitForProperty)
}

// SubmitGeneral handles POST /api/v1/contact
// @Summary Send a message from the contact page
// @Tags Contact
// @Accept json
// @Produce json
// @Param request body Request true "Contact form"
// @Success 201 {object} Receipt
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /contact [post]
func (h *Handler) SubmitGeneral(c *gin.Context) {
	var req Request
	if !bind(c, &req) {
		return
	}
	receipt, err := h.service.SubmitGeneral(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, receipt)
}

// SubmitForProperty handles POST /api/v1/properties/:id/contact
// @Summary Send an enquiry about a property
// @Tags Contact
// @Param id path string true "Property ID"
// @Param request body Request true "Contact form"
// @Success 201 {object} Receipt
// @Failure 404 {object} response.Envelope
// @Router /properties/{id}/contact [post]
func (h *Handler) SubmitForProperty(c *gin.Context) {
	var req Request
	if !bind(c, &req) {
		return
	}
	receipt, err := h.service.SubmitForProperty(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, receipt)
}

func bind(c *gin.Context, req *Request) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "Formato de requisição inválido")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationFailed(c, errs)
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPropertyNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Imóvel não encontrado")
	case errors.Is(err, ErrDeliveryFailed):
		response.Error(c, http.StatusBadGateway, "DELIVERY_FAILED", "Não foi possível enviar sua mensagem. Tente novamente.")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Erro interno")
	}
}
