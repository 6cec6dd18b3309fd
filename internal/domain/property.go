package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type Tag string

const (
	TagNovo         Tag = "NOVO"
	TagPremium      Tag = "PREMIUM"
	TagExclusivo    Tag = "EXCLUSIVO"
	TagOportunidade Tag = "OPORTUNIDADE"
)

var ValidTags = []Tag{TagNovo, TagPremium, TagExclusivo, TagOportunidade}

func (t Tag) IsValid() bool {
	for _, v := range ValidTags {
		if t == v {
			return true
		}
	}
	return false
}

type Purpose string

const (
	PurposeVenda   Purpose = "Venda"
	PurposeAluguel Purpose = "Aluguel"
)

var ValidPurposes = []Purpose{PurposeVenda, PurposeAluguel}

func (p Purpose) IsValid() bool {
	for _, v := range ValidPurposes {
		if p == v {
			return true
		}
	}
	return false
}

type PropertyType string

const (
	TypeCasa        PropertyType = "Casa"
	TypeApartamento PropertyType = "Apartamento"
	TypeCobertura   PropertyType = "Cobertura"
	TypeMansao      PropertyType = "Mansão"
	TypeLoft        PropertyType = "Loft"
	TypeLote        PropertyType = "Lote/Terreno"
	TypeComercial   PropertyType = "Comercial"
)

var ValidPropertyTypes = []PropertyType{
	TypeCasa, TypeApartamento, TypeCobertura, TypeMansao, TypeLoft, TypeLote, TypeComercial,
}

func (t PropertyType) IsValid() bool {
	for _, v := range ValidPropertyTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Defaults applied when a row or a draft leaves a field empty.
const (
	DefaultTag     = TagNovo
	DefaultPurpose = PurposeVenda
	DefaultType    = TypeCasa
	DefaultCity    = "Brasília"
)

// MaxDisplayImages caps the gallery rendered on the detail page.
const MaxDisplayImages = 8

// Property is a listing. ID is immutable once created; every other field is
// editable from the admin area.
type Property struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Location    string       `json:"location"`
	Price       string       `json:"price"`
	ImageURL    string       `json:"image_url"`
	Images      []string     `json:"images"`
	Beds        string       `json:"beds"`
	Parking     string       `json:"parking"`
	Area        string       `json:"area"`
	Tag         Tag          `json:"tag"`
	Description string       `json:"description"`
	Features    []string     `json:"features"`
	Purpose     Purpose      `json:"purpose"`
	Type        PropertyType `json:"type"`
	City        string       `json:"city"`
	VideoURL    string       `json:"video_url,omitempty"`
}

// NewPropertyID returns a random identifier for a listing about to be inserted.
func NewPropertyID() string {
	return uuid.NewString()
}

// Gallery returns the listing images, falling back to the cover image alone
// (even when it is empty).
func (p Property) Gallery() []string {
	if len(p.Images) > 0 {
		return append([]string(nil), p.Images...)
	}
	return []string{p.ImageURL}
}

// DisplayImages is the gallery capped at MaxDisplayImages.
func (p Property) DisplayImages() []string {
	g := p.Gallery()
	if len(g) > MaxDisplayImages {
		g = g[:MaxDisplayImages]
	}
	return g
}

var youtubeID = regexp.MustCompile(`(?i)(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)

// VideoEmbedURL converts the stored video link into an embeddable player URL.
// Links that cannot be embedded yield "".
func (p Property) VideoEmbedURL() string {
	if p.VideoURL == "" {
		return ""
	}
	if m := youtubeID.FindStringSubmatch(p.VideoURL); len(m) == 2 {
		return "https://www.youtube-nocookie.com/embed/" + m[1] + "?rel=0"
	}
	if strings.Contains(p.VideoURL, "embed") {
		return p.VideoURL
	}
	return ""
}

var nonDigits = regexp.MustCompile(`[^\d]`)

// JSONLD describes the listing as a schema.org RealEstateListing.
func (p Property) JSONLD() map[string]any {
	return map[string]any{
		"@context":    "https://schema.org/",
		"@type":       "RealEstateListing",
		"name":        p.Title,
		"description": p.Description,
		"image":       p.ImageURL,
		"address": map[string]any{
			"@type":           "PostalAddress",
			"addressLocality": p.City,
			"addressRegion":   "DF",
			"addressCountry":  "BR",
		},
		"offers": map[string]any{
			"@type":         "Offer",
			"price":         nonDigits.ReplaceAllString(p.Price, ""),
			"priceCurrency": "BRL",
		},
	}
}

// NormalizeDraft trims every field of an admin submission, drops empty list
// entries, fills enum defaults and applies the gallery fallback.
func NormalizeDraft(p Property) Property {
	out := Property{
		ID:          strings.TrimSpace(p.ID),
		Title:       strings.TrimSpace(p.Title),
		Location:    strings.TrimSpace(p.Location),
		Price:       strings.TrimSpace(p.Price),
		ImageURL:    strings.TrimSpace(p.ImageURL),
		Beds:        strings.TrimSpace(p.Beds),
		Parking:     strings.TrimSpace(p.Parking),
		Area:        strings.TrimSpace(p.Area),
		Tag:         Tag(strings.TrimSpace(string(p.Tag))),
		Description: strings.TrimSpace(p.Description),
		Features:    compact(p.Features),
		Images:      compact(p.Images),
		Purpose:     Purpose(strings.TrimSpace(string(p.Purpose))),
		Type:        PropertyType(strings.TrimSpace(string(p.Type))),
		City:        strings.TrimSpace(p.City),
		VideoURL:    strings.TrimSpace(p.VideoURL),
	}
	if out.Tag == "" {
		out.Tag = DefaultTag
	}
	if out.Purpose == "" {
		out.Purpose = DefaultPurpose
	}
	if out.Type == "" {
		out.Type = DefaultType
	}
	if out.City == "" {
		out.City = DefaultCity
	}
	if len(out.Images) == 0 && out.ImageURL != "" {
		out.Images = []string{out.ImageURL}
	}
	return out
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
