package ecs

// Signal is a synchronous multicast notification. Listeners run in registration order.
type Signal[T any] struct {
	listeners []signalListener[T]
	nextID    int
}

type signalListener[T any] struct {
	id int
	fn func(T)
}

// Add registers a listener and returns a function that removes it.
func (s *Signal[T]) Add(fn func(T)) (remove func()) {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, signalListener[T]{id: id, fn: fn})
	return func() {
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Dispatch calls every listener registered at the time of the call.
func (s *Signal[T]) Dispatch(v T) {
	listeners := s.listeners
	for _, l := range listeners {
		l.fn(v)
	}
}

// Len returns the number of registered listeners.
func (s *Signal[T]) Len() int {
	return len(s.listeners)
}
