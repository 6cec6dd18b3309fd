package domain

import "realtysite/internal/remote"

// ContactMessage is an inbound lead. It is written once and never read back.
type ContactMessage struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Message    string `json:"message"`
	Source     string `json:"source"`
	PropertyID string `json:"property_id,omitempty"`
}

func (m ContactMessage) ToRow() remote.Row {
	row := remote.Row{
		"name":    m.Name,
		"phone":   m.Phone,
		"email":   m.Email,
		"message": m.Message,
		"source":  m.Source,
	}
	if m.PropertyID != "" {
		row["property_id"] = m.PropertyID
	}
	return row
}
