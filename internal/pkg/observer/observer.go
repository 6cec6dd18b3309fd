// Package observer is the subscription list shared by the stores.
package observer

import (
	"context"
	"sort"
	"sync"
)

type Func[T any] func(ctx context.Context, v T)

// List holds observers in subscription order. Notify calls them outside the
// list lock, so an observer may subscribe or unsubscribe while being notified.
type List[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]Func[T]
}

func (l *List[T]) Add(fn Func[T]) (remove func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]Func[T])
	}
	id := l.next
	l.next++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.fns, id)
		})
	}
}

func (l *List[T]) Notify(ctx context.Context, v T) {
	l.mu.Lock()
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Func[T], 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(ctx, v)
	}
}

func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}
