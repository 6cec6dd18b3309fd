package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledBusIsNoop(t *testing.T) {
	b := New(nil, DefaultChannel)
	assert.False(t, b.Enabled())
	assert.NoError(t, b.Publish(context.Background(), "created", "1"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, b.Run(ctx, func(context.Context, Message) { t.Fatal("unexpected message") }))
	assert.NoError(t, b.Close())
}

func TestConnectWithoutAddress(t *testing.T) {
	rdb, err := Connect(context.Background(), "", "")
	require.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestDecodeSkipsOwnMessages(t *testing.T) {
	a := New(nil, DefaultChannel)
	b := New(nil, DefaultChannel)
	require.NotEqual(t, a.Origin(), b.Origin())

	own := `{"origin":"` + a.Origin() + `","kind":"deleted","id":"2"}`
	_, ok := a.decode(own)
	assert.False(t, ok)

	msg, ok := b.decode(own)
	require.True(t, ok)
	assert.Equal(t, Message{Origin: a.Origin(), Kind: "deleted", ID: "2"}, msg)

	_, ok = b.decode("not json")
	assert.False(t, ok)
}
