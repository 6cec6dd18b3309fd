package favorite

import "realtysite/internal/domain"

type ListResponse struct {
	Favorites []domain.Property `json:"favorites"`
	Total     int               `json:"total"`
	Loading   bool              `json:"loading"`
}

type CheckResponse struct {
	PropertyID string `json:"property_id"`
	IsFavorite bool   `json:"is_favorite"`
}
