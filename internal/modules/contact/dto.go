package contact

import (
	"strings"

	"realtysite/internal/domain"
)

// Request is the contact form as posted by the site.
type Request struct {
	Name    string `json:"nome" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"telefone" validate:"max=40"`
	Message string `json:"mensagem" validate:"required,max=4000"`
}

func (r *Request) message(source, propertyID string) domain.ContactMessage {
	return domain.ContactMessage{
		Name:       strings.TrimSpace(r.Name),
		Phone:      strings.TrimSpace(r.Phone),
		Email:      strings.TrimSpace(r.Email),
		Message:    strings.TrimSpace(r.Message),
		Source:     source,
		PropertyID: propertyID,
	}
}

// Receipt reports which channels accepted the lead.
type Receipt struct {
	Stored   bool `json:"stored"`
	Notified bool `json:"notified"`
}
