package live

import "realtysite/internal/modules/listing"

const (
	EventCatalogUpdated   = "catalog_updated"
	EventConnectionStatus = "connection_status"
	EventPong             = "pong"
)

// Event is pushed to every connected browser.
type Event struct {
	Type   string                   `json:"type"`
	Kind   listing.ChangeKind       `json:"kind,omitempty"`
	ID     string                   `json:"id,omitempty"`
	Count  int                      `json:"count"`
	Status listing.ConnectionStatus `json:"status,omitempty"`
}

func eventFromChange(c listing.Change) Event {
	if c.Kind == listing.ChangeStatus {
		return Event{Type: EventConnectionStatus, Count: c.Count, Status: c.Status}
	}
	return Event{Type: EventCatalogUpdated, Kind: c.Kind, ID: c.ID, Count: c.Count, Status: c.Status}
}

// clientMessage is what browsers may send; only pings are understood.
type clientMessage struct {
	Type string `json:"type"`
}
