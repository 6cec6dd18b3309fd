package server

import (
	"context"

	"github.com/golang/glog"

	"realtysite/internal/modules/listing"
	"realtysite/internal/pkg/pubsub"
)

// publishChanges announces local catalog writes to the other replicas.
// Refreshes are not announced, so a replica reacting to a message stays quiet.
func (s *Server) publishChanges() func() {
	return s.Listings.Subscribe(func(ctx context.Context, c listing.Change) {
		switch c.Kind {
		case listing.ChangeCreated, listing.ChangeUpdated, listing.ChangeDeleted:
		default:
			return
		}
		if err := s.bus.Publish(context.WithoutCancel(ctx), string(c.Kind), c.ID); err != nil {
			glog.Warningf("catalog publish failed kind=%s id=%s: %v", c.Kind, c.ID, err)
		}
	})
}

// followReplicas refreshes the catalog whenever another replica wrote to it.
func (s *Server) followReplicas(ctx context.Context) {
	err := s.bus.Run(ctx, func(ctx context.Context, msg pubsub.Message) {
		glog.V(1).Infof("catalog changed on replica %s kind=%s id=%s", msg.Origin, msg.Kind, msg.ID)
		if err := s.Listings.Refresh(ctx); err != nil {
			glog.Warningf("catalog refresh after %s failed: %v", msg.Kind, err)
		}
	})
	if err != nil {
		glog.Errorf("catalog subscription stopped: %v", err)
	}
}
