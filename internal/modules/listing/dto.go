package listing

import (
	"realtysite/internal/domain"
	"realtysite/internal/pkg/textlist"
)

// PropertyRequest is the admin form. Lists may be sent as arrays or as the
// comma separated text typed into the form.
type PropertyRequest struct {
	ID           string   `json:"id" validate:"omitempty,max=64"`
	Title        string   `json:"title" validate:"required,max=200"`
	Location     string   `json:"location" validate:"required,max=200"`
	Price        string   `json:"price" validate:"required,max=64"`
	ImageURL     string   `json:"image_url" validate:"required,url"`
	Images       []string `json:"images" validate:"omitempty,dive,url"`
	ImagesText   string   `json:"images_text"`
	Beds         string   `json:"beds" validate:"required,max=32"`
	Parking      string   `json:"parking" validate:"required,max=32"`
	Area         string   `json:"area" validate:"required,max=32"`
	Tag          string   `json:"tag" validate:"omitempty,oneof=NOVO PREMIUM EXCLUSIVO OPORTUNIDADE"`
	Description  string   `json:"description" validate:"required"`
	Features     []string `json:"features"`
	FeaturesText string   `json:"features_text"`
	Purpose      string   `json:"purpose" validate:"omitempty,oneof=Venda Aluguel"`
	Type         string   `json:"type" validate:"omitempty,oneof=Casa Apartamento Cobertura Mansão Loft Lote/Terreno Comercial"`
	City         string   `json:"city" validate:"required,max=120"`
	VideoURL     string   `json:"video_url" validate:"omitempty,url"`
}

func (r PropertyRequest) toDraft(id string) domain.Property {
	images := r.Images
	if len(images) == 0 && r.ImagesText != "" {
		images = textlist.Split(r.ImagesText)
	}
	features := r.Features
	if len(features) == 0 && r.FeaturesText != "" {
		features = textlist.Split(r.FeaturesText)
	}
	return domain.NormalizeDraft(domain.Property{
		ID:          id,
		Title:       r.Title,
		Location:    r.Location,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Images:      images,
		Beds:        r.Beds,
		Parking:     r.Parking,
		Area:        r.Area,
		Tag:         domain.Tag(r.Tag),
		Description: r.Description,
		Features:    features,
		Purpose:     domain.Purpose(r.Purpose),
		Type:        domain.PropertyType(r.Type),
		City:        r.City,
		VideoURL:    r.VideoURL,
	})
}

type ListResponse struct {
	Properties       []domain.Property `json:"properties"`
	Total            int               `json:"total"`
	Filters          []string          `json:"filters"`
	ActiveFilter     string            `json:"active_filter"`
	Searching        bool              `json:"searching"`
	ConnectionStatus ConnectionStatus  `json:"connection_status"`
	Loading          bool              `json:"loading"`
}

type DetailResponse struct {
	Property      domain.Property `json:"property"`
	Gallery       []string        `json:"gallery"`
	DisplayImages []string        `json:"display_images"`
	VideoEmbedURL string          `json:"video_embed_url,omitempty"`
	JSONLD        map[string]any  `json:"json_ld"`
	IsFavorite    *bool           `json:"is_favorite,omitempty"`
}

func toDetail(p domain.Property) DetailResponse {
	return DetailResponse{
		Property:      p,
		Gallery:       p.Gallery(),
		DisplayImages: p.DisplayImages(),
		VideoEmbedURL: p.VideoEmbedURL(),
		JSONLD:        p.JSONLD(),
	}
}
