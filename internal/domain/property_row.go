package domain

import (
	"errors"
	"fmt"
	"strconv"

	"realtysite/internal/remote"
)

var ErrInvalidRow = errors.New("invalid property row")

// Property columns as stored by the data service.
const (
	ColID          = "id"
	ColTitle       = "title"
	ColLocation    = "location"
	ColPrice       = "price"
	ColImageURL    = "image_url"
	ColImages      = "images"
	ColBeds        = "beds"
	ColParking     = "parking"
	ColArea        = "area"
	ColTag         = "tag"
	ColDescription = "description"
	ColFeatures    = "features"
	ColPurpose     = "purpose"
	ColType        = "type"
	ColCity        = "city"
	ColVideoURL    = "video_url"
	ColCreatedAt   = "created_at"
)

// PropertyFromRow maps a row of the properties table. Every optional field gets
// a default; a row without a string id, or with a field of an unexpected JSON
// type, is rejected.
func PropertyFromRow(row remote.Row) (Property, error) {
	id, err := rowString(row, ColID)
	if err != nil {
		return Property{}, err
	}
	if id == "" {
		return Property{}, fmt.Errorf("%w: missing id", ErrInvalidRow)
	}

	p := Property{ID: id}
	strs := []struct {
		col string
		dst *string
	}{
		{ColTitle, &p.Title},
		{ColLocation, &p.Location},
		{ColPrice, &p.Price},
		{ColImageURL, &p.ImageURL},
		{ColBeds, &p.Beds},
		{ColParking, &p.Parking},
		{ColArea, &p.Area},
		{ColDescription, &p.Description},
		{ColCity, &p.City},
		{ColVideoURL, &p.VideoURL},
	}
	for _, f := range strs {
		if *f.dst, err = rowString(row, f.col); err != nil {
			return Property{}, err
		}
	}

	var tag, purpose, typ string
	if tag, err = rowString(row, ColTag); err != nil {
		return Property{}, err
	}
	if purpose, err = rowString(row, ColPurpose); err != nil {
		return Property{}, err
	}
	if typ, err = rowString(row, ColType); err != nil {
		return Property{}, err
	}
	p.Tag, p.Purpose, p.Type = Tag(tag), Purpose(purpose), PropertyType(typ)

	if p.Images, err = rowStrings(row, ColImages); err != nil {
		return Property{}, err
	}
	if p.Features, err = rowStrings(row, ColFeatures); err != nil {
		return Property{}, err
	}

	if p.Tag == "" {
		p.Tag = DefaultTag
	}
	if p.Purpose == "" {
		p.Purpose = DefaultPurpose
	}
	if p.Type == "" {
		p.Type = DefaultType
	}
	if p.City == "" {
		p.City = DefaultCity
	}
	return p, nil
}

// ToRow is the insert/update payload. The id column is included so that the
// identifier generated before insertion is the one stored.
func (p Property) ToRow() remote.Row {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return remote.Row{
		ColID:          p.ID,
		ColTitle:       p.Title,
		ColLocation:    p.Location,
		ColPrice:       p.Price,
		ColImageURL:    p.ImageURL,
		ColImages:      images,
		ColBeds:        p.Beds,
		ColParking:     p.Parking,
		ColArea:        p.Area,
		ColTag:         string(p.Tag),
		ColDescription: p.Description,
		ColFeatures:    features,
		ColPurpose:     string(p.Purpose),
		ColType:        string(p.Type),
		ColCity:        p.City,
		ColVideoURL:    p.VideoURL,
	}
}

func rowString(row remote.Row, col string) (string, error) {
	switch v := row[col].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("%w: column %s has type %T", ErrInvalidRow, col, v)
	}
}

func rowStrings(row remote.Row, col string) ([]string, error) {
	switch v := row[col].(type) {
	case nil:
		return []string{}, nil
	case []string:
		return append([]string{}, v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] has type %T", ErrInvalidRow, col, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: column %s has type %T", ErrInvalidRow, col, v)
	}
}
