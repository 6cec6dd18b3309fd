package favorite

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"realtysite/internal/modules/listing"
	"realtysite/internal/pkg/response"
)

// ContextKey is where the session middleware puts the caller's *Store.
const ContextKey = "favorites"

func FromContext(c *gin.Context) (*Store, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Store)
	return s, ok && s != nil
}

// Lookup answers listing.FavoriteLookup from the request's store.
func Lookup(c *gin.Context, id string) (bool, bool) {
	s, ok := FromContext(c)
	if !ok || s.session.User() == nil {
		return false, false
	}
	return s.IsFavorite(id), true
}

type Handler struct {
	listings *listing.Store
}

func NewHandler(listings *listing.Store) *Handler {
	return &Handler{listings: listings}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	favorites := rg.Group("/favorites")
	{
		favorites.GET("", h.GetFavorites)
		favorites.POST("/:propertyId", h.AddFavorite)
		favorites.DELETE("/:propertyId", h.RemoveFavorite)
		favorites.GET("/:propertyId/check", h.CheckFavorite)
	}
}

// GetFavorites returns the caller's saved properties, oldest first.
//
// @Summary  List favorites
// @Tags     Favorite
// @Security BearerAuth
// @Success  200 {object} ListResponse
// @Failure  401 {object} response.Envelope
// @Router   /favorites [get]
func (h *Handler) GetFavorites(c *gin.Context) {
	s, ok := FromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", LoginRequiredMessage)
		return
	}
	items := s.List()
	response.Success(c, http.StatusOK, ListResponse{Favorites: items, Total: len(items), Loading: s.Loading()})
}

// AddFavorite saves a property for the caller.
//
// @Summary  Add a favorite
// @Tags     Favorite
// @Security BearerAuth
// @Param    propertyId path string true "property id"
// @Success  201 {object} CheckResponse
// @Failure  401 {object} response.Envelope
// @Failure  404 {object} response.Envelope
// @Failure  502 {object} response.Envelope "insert failed, change rolled back"
// @Router   /favorites/{propertyId} [post]
func (h *Handler) AddFavorite(c *gin.Context) {
	s, ok := FromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", LoginRequiredMessage)
		return
	}

	id := c.Param("propertyId")
	p, found := h.listings.Get(id)
	if !found {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Imóvel não encontrado")
		return
	}

	if err := s.Add(c.Request.Context(), p); err != nil {
		writeError(c, err, "Erro ao salvar favorito")
		return
	}
	response.Success(c, http.StatusCreated, CheckResponse{PropertyID: id, IsFavorite: true})
}

// RemoveFavorite handles DELETE /api/v1/favorites/:propertyId.
func (h *Handler) RemoveFavorite(c *gin.Context) {
	s, ok := FromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", LoginRequiredMessage)
		return
	}

	id := c.Param("propertyId")
	if err := s.Remove(c.Request.Context(), id); err != nil {
		writeError(c, err, "Erro ao remover favorito")
		return
	}
	response.Success(c, http.StatusOK, CheckResponse{PropertyID: id, IsFavorite: false})
}

// CheckFavorite handles GET /api/v1/favorites/:propertyId/check.
func (h *Handler) CheckFavorite(c *gin.Context) {
	s, ok := FromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", LoginRequiredMessage)
		return
	}
	id := c.Param("propertyId")
	response.Success(c, http.StatusOK, CheckResponse{PropertyID: id, IsFavorite: s.IsFavorite(id)})
}

func writeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", LoginRequiredMessage)
	case errors.Is(err, ErrWriteFailed):
		response.Error(c, http.StatusBadGateway, "REMOTE_WRITE_FAILED", message)
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Erro interno")
	}
}
