// Package server assembles the HTTP API from the stores and handlers.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"

	"realtysite/internal/config"
	"realtysite/internal/middleware"
	"realtysite/internal/modules/contact"
	"realtysite/internal/modules/favorite"
	"realtysite/internal/modules/listing"
	"realtysite/internal/modules/live"
	"realtysite/internal/modules/session"
	"realtysite/internal/pkg/pubsub"
	"realtysite/internal/pkg/response"
	"realtysite/internal/remote"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Engine     *gin.Engine
	Listings   *listing.Store
	Workspaces *session.Workspaces
	Hub        *live.Hub

	client remote.Client
	bus    *pubsub.Bus
	stop   []func()
}

// New wires every module on top of client. bus may be a disabled bus.
func New(cfg *config.Config, client remote.Client, bus *pubsub.Bus) *Server {
	s := &Server{
		Listings:   listing.NewStore(client),
		Workspaces: session.NewWorkspaces(client, cfg.SessionIdleTTL),
		Hub:        live.NewHub(),
		client:     client,
		bus:        bus,
	}
	s.Hub.Watch(s.Listings)
	s.stop = append(s.stop, s.publishChanges())

	var notifier contact.Notifier
	if cfg.LeadRelayURL != "" {
		notifier = contact.NewRelayNotifier(cfg.LeadRelayURL, cfg.LeadRelayTimeout)
	}

	listingHandler := listing.NewHandler(s.Listings, cfg.QuickFilterStoplist, favorite.Lookup)
	favoriteHandler := favorite.NewHandler(s.Listings)
	sessionHandler := session.NewHandler(s.Workspaces)
	contactHandler := contact.NewHandler(contact.NewService(client, s.Listings, notifier))
	liveHandler := live.NewHandler(s.Hub, s.Listings, cfg.CORSAllowedOrigins)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.SessionLoader(s.Workspaces))
	{
		listingHandler.RegisterPublicRoutes(v1)
		sessionHandler.RegisterRoutes(v1)
		contactHandler.RegisterRoutes(v1)
		liveHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.RequireSession())
		favoriteHandler.RegisterRoutes(protected)

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAdmin(cfg.AdminEmails))
		listingHandler.RegisterAdminRoutes(admin)
	}

	s.Engine = r
	return s
}

// Start loads the catalog and runs the background loops until ctx is done.
// A failed first load leaves the catalog empty and offline.
func (s *Server) Start(ctx context.Context) {
	s.Workspaces.Start(ctx)
	if err := s.Listings.Refresh(ctx); err != nil {
		glog.Warningf("initial catalog load failed: %v", err)
	}
	go s.followReplicas(ctx)
}

func (s *Server) Close() {
	for _, fn := range s.stop {
		fn()
	}
	s.Hub.Close()
	s.Workspaces.Close()
}

func (s *Server) health(c *gin.Context) {
	if p, ok := s.client.(pinger); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			response.Error(c, http.StatusServiceUnavailable, "UNHEALTHY", err.Error())
			return
		}
	}
	response.Success(c, http.StatusOK, gin.H{
		"status":            "ok",
		"connection_status": s.Listings.Status(),
		"sessions":          s.Workspaces.Len(),
		"live_clients":      s.Hub.Count(),
	})
}
