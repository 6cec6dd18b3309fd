package listing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"realtysite/internal/domain"
	"realtysite/internal/modules/search"
	"realtysite/internal/pkg/response"
	"realtysite/internal/pkg/validator"
)

// FavoriteLookup reports whether the caller bookmarked id. ok is false when
// the request has no session.
type FavoriteLookup func(c *gin.Context, id string) (favorite bool, ok bool)

type Handler struct {
	store          *Store
	stoplist       []string
	favoriteLookup FavoriteLookup
}

func NewHandler(store *Store, stoplist []string, favoriteLookup FavoriteLookup) *Handler {
	if len(stoplist) == 0 {
		stoplist = search.DefaultStoplist
	}
	return &Handler{
		store:          store,
		stoplist:       stoplist,
		favoriteLookup: favoriteLookup,
	}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	properties := v1.Group("/properties")
	{
		properties.GET("", h.List)
		properties.GET("/filters", h.Filters)
		properties.GET("/:id", h.Get)
	}
	v1.GET("/status", h.Status)
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	properties := admin.Group("/properties")
	{
		properties.GET("", h.AdminList)
		properties.POST("", h.Create)
		properties.POST("/refresh", h.Refresh)
		properties.PUT("/:id", h.Update)
		properties.DELETE("/:id", h.Delete)
	}
}

// List handles GET /api/v1/properties.
//
// @Summary  Search the catalog
// @Tags     Properties
// @Param    neighborhood query string false "quick filter, Todos disables it"
// @Param    purpose      query string false "Venda | Aluguel"
// @Param    type         query string false "property type"
// @Param    city         query string false "city substring"
// @Param    query        query string false "free text over title, location and description"
// @Success  200 {object} ListResponse
// @Router   /properties [get]
func (h *Handler) List(c *gin.Context) {
	criteria := search.CriteriaFromValues(c.Request.URL.Query())
	all := h.store.Properties()
	found := search.Filter(all, criteria)

	response.Success(c, http.StatusOK, ListResponse{
		Properties:       found,
		Total:            len(found),
		Filters:          search.QuickFilterOptions(all, h.stoplist),
		ActiveFilter:     criteria.Neighborhood,
		Searching:        criteria.IsSearch(),
		ConnectionStatus: h.store.Status(),
		Loading:          h.store.Loading(),
	})
}

// Filters handles GET /api/v1/properties/filters.
func (h *Handler) Filters(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"filters": search.QuickFilterOptions(h.store.Properties(), h.stoplist),
	})
}

// Get handles GET /api/v1/properties/:id.
//
// @Summary  Property detail with gallery, video embed and JSON-LD
// @Tags     Properties
// @Param    id path string true "property id"
// @Success  200 {object} DetailResponse
// @Failure  404 {object} response.Envelope
// @Router   /properties/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	p, ok := h.store.Get(c.Param("id"))
	if !ok {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Imóvel não encontrado")
		return
	}

	detail := toDetail(p)
	if h.favoriteLookup != nil {
		if fav, ok := h.favoriteLookup(c, p.ID); ok {
			detail.IsFavorite = &fav
		}
	}
	response.Success(c, http.StatusOK, detail)
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(c *gin.Context) {
	status := h.store.CheckConnection(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{"status": status})
}

func (h *Handler) AdminList(c *gin.Context) {
	props := h.store.Properties()
	response.Success(c, http.StatusOK, gin.H{
		"properties":        props,
		"total":             len(props),
		"connection_status": h.store.Status(),
		"loading":           h.store.Loading(),
	})
}

// Create handles POST /api/v1/admin/properties.
//
// @Summary  Create a listing
// @Tags     Admin
// @Security BearerAuth
// @Param    request body PropertyRequest true "listing"
// @Success  201 {object} domain.Property
// @Failure  400 {object} response.Envelope
// @Failure  502 {object} response.Envelope "remote write failed"
// @Router   /admin/properties [post]
func (h *Handler) Create(c *gin.Context) {
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Formato de requisição inválido")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationFailed(c, errs)
		return
	}

	id := req.ID
	if id == "" {
		id = domain.NewPropertyID()
	}
	draft := req.toDraft(id)
	if err := h.store.Create(c.Request.Context(), draft); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, draft)
}

// Update handles PUT /api/v1/admin/properties/:id.
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Get(id); !ok {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Imóvel não encontrado")
		return
	}

	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Formato de requisição inválido")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationFailed(c, errs)
		return
	}

	p := req.toDraft(id)
	if err := h.store.Update(c.Request.Context(), p); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// Delete handles DELETE /api/v1/admin/properties/:id.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// Refresh handles POST /api/v1/admin/properties/refresh.
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.store.Refresh(c.Request.Context()); err != nil {
		response.ErrorWithDetails(c, http.StatusBadGateway, "REMOTE_READ_FAILED", "Erro ao carregar imóveis",
			gin.H{"cached": len(h.store.Properties())})
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"total":             len(h.store.Properties()),
		"connection_status": h.store.Status(),
	})
}

func writeError(c *gin.Context, err error) {
	var opErr *OpError
	switch {
	case errors.As(err, &opErr):
		response.Error(c, http.StatusBadGateway, "REMOTE_WRITE_FAILED", opErr.Message)
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Erro interno")
	}
}
