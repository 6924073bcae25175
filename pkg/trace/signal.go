package trace

// Subscription is a registered handler. Close releases it; closing twice is a no-op.
type Subscription interface {
	Close()
}

// signal dispatches values synchronously to its handlers in registration order.
type signal[T any] struct {
	handlers []*handler[T]
}

type handler[T any] struct {
	fn     func(T)
	parent *signal[T]
}

func (h *handler[T]) Close() {
	if h.parent == nil {
		return
	}
	h.parent.remove(h)
	h.parent = nil
}

func (s *signal[T]) subscribe(fn func(T)) Subscription {
	h := &handler[T]{fn: fn, parent: s}
	s.handlers = append(s.handlers, h)
	return h
}

func (s *signal[T]) remove(h *handler[T]) {
	kept := s.handlers[:0:0]
	for _, other := range s.handlers {
		if other != h {
			kept = append(kept, other)
		}
	}
	s.handlers = kept
}

func (s *signal[T]) emit(v T) {
	// Handlers may close their own subscription while being called.
	for _, h := range append([]*handler[T](nil), s.handlers...) {
		if h.parent != nil {
			h.fn(v)
		}
	}
}

// subscriptions closes a group of subscriptions together.
type subscriptions []Subscription

func (s *subscriptions) add(sub Subscription) {
	*s = append(*s, sub)
}

func (s *subscriptions) Close() {
	for _, sub := range *s {
		sub.Close()
	}
	*s = nil
}
