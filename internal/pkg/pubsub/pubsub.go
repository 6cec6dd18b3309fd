// Package pubsub fans catalog invalidations out to the other replicas over
// Redis. Without a Redis client every operation is a no-op.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "realtysite:catalog"

// Message tells other replicas that the catalog changed.
type Message struct {
	Origin string `json:"origin"`
	Kind   string `json:"kind"`
	ID     string `json:"id,omitempty"`
}

type Bus struct {
	rdb     *redis.Client
	channel string
	origin  string
}

// New returns a bus publishing on channel. rdb may be nil.
func New(rdb *redis.Client, channel string) *Bus {
	return &Bus{
		rdb:     rdb,
		channel: channel,
		origin:  ulid.Make().String(),
	}
}

// Connect builds a Redis client for addr and checks it answers. An empty addr
// yields a nil client.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	glog.Infof("pubsub: connected to redis at %s", addr)
	return rdb, nil
}

func (b *Bus) Enabled() bool {
	return b.rdb != nil
}

// Origin identifies this replica in published messages.
func (b *Bus) Origin() string {
	return b.origin
}

func (b *Bus) Publish(ctx context.Context, kind, id string) error {
	if b.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(Message{Origin: b.origin, Kind: kind, ID: id})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, payload).Err()
}

// Run delivers messages from other replicas to fn until ctx is done.
func (b *Bus) Run(ctx context.Context, fn func(context.Context, Message)) error {
	if b.rdb == nil {
		<-ctx.Done()
		return nil
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			if msg, ok := b.decode(m.Payload); ok {
				fn(ctx, msg)
			}
		}
	}
}

// decode drops malformed payloads and this replica's own messages.
func (b *Bus) decode(payload string) (Message, bool) {
	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		glog.Warningf("pubsub: bad payload on %s: %v", b.channel, err)
		return Message{}, false
	}
	if msg.Origin == b.origin {
		return Message{}, false
	}
	return msg, true
}

func (b *Bus) Close() error {
	if b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
