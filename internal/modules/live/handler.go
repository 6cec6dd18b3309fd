package live

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"github.com/gorilla/websocket"

	"realtysite/internal/modules/listing"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type Handler struct {
	hub      *Hub
	listings *listing.Store
	upgrader websocket.Upgrader
}

// NewHandler accepts any origin when allowedOrigins is empty or contains "*".
func NewHandler(hub *Hub, listings *listing.Store, allowedOrigins []string) *Handler {
	anyOrigin := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")
	return &Handler{
		hub:      hub,
		listings: listings,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return anyOrigin || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.GET("/live", h.Serve)
}

// Serve handles GET /api/v1/live
//
// The first event describes the current catalog; later ones follow every
// change of the listing store.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		glog.Warningf("live: websocket upgrade failed: %v", err)
		return
	}

	cl := h.hub.register()
	glog.V(1).Infof("live: client connected total=%d", h.hub.Count())

	cl.offer(Event{
		Type:   EventCatalogUpdated,
		Kind:   listing.ChangeRefreshed,
		Count:  len(h.listings.Properties()),
		Status: h.listings.Status(),
	})

	go h.writeLoop(conn, cl)
	h.readLoop(conn, cl)
}

func (h *Handler) readLoop(conn *websocket.Conn, cl *client) {
	defer func() {
		h.hub.unregister(cl)
		_ = conn.Close()
		glog.V(1).Infof("live: client disconnected total=%d", h.hub.Count())
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				glog.Warningf("live: read error: %v", err)
			}
			return
		}
		var msg clientMessage
		if json.Unmarshal(raw, &msg) == nil && msg.Type == "ping" {
			cl.offer(Event{Type: EventPong})
		}
	}
}

// writeLoop owns all writes to conn.
func (h *Handler) writeLoop(conn *websocket.Conn, cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case ev, ok := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
