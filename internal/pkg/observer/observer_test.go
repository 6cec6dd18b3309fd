package observer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifyInSubscriptionOrder(t *testing.T) {
	var l List[int]
	var got []string
	l.Add(func(_ context.Context, v int) { got = append(got, "a") })
	removeB := l.Add(func(_ context.Context, v int) { got = append(got, "b") })
	l.Add(func(_ context.Context, v int) { got = append(got, "c") })

	l.Notify(context.Background(), 1)
	assert.Equal(t, []string{"a", "b", "c"}, got)

	removeB()
	removeB()
	assert.Equal(t, 2, l.Len())

	got = nil
	l.Notify(context.Background(), 2)
	assert.Equal(t, []string{"a", "c"}, got)
}

func TestObserverMayUnsubscribeDuringNotify(t *testing.T) {
	var l List[string]
	calls := 0
	var remove func()
	remove = l.Add(func(context.Context, string) {
		calls++
		remove()
	})

	l.Notify(context.Background(), "x")
	l.Notify(context.Background(), "y")
	assert.Equal(t, 1, calls)
	assert.Zero(t, l.Len())
}
