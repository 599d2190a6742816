package engine

// ListenerID identifies a registered listener so it can be removed later.
type ListenerID uint64

// Event is a multi-cast notification without arguments.
type Event struct {
	EventWithArg[struct{}]
}

// AddListener registers callback and returns its ID; nil callbacks are ignored.
func (e *Event) AddListener(callback func()) ListenerID {
	if callback == nil {
		return 0
	}
	return e.EventWithArg.AddListener(func(struct{}) { callback() })
}

// Invoke calls all listeners in registration order.
func (e *Event) Invoke() {
	e.EventWithArg.Invoke(struct{}{})
}

type listener[T any] struct {
	id ListenerID
	fn func(T)
}

// EventWithArg is a multi-cast event carrying one argument.
type EventWithArg[T any] struct {
	listeners []listener[T]
	next      ListenerID
}

func (e *EventWithArg[T]) AddListener(callback func(T)) ListenerID {
	if callback == nil {
		return 0
	}
	e.next++
	e.listeners = append(e.listeners, listener[T]{id: e.next, fn: callback})
	return e.next
}

// RemoveListener unregisters the listener with the given ID. Unknown IDs are ignored.
func (e *EventWithArg[T]) RemoveListener(id ListenerID) {
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
			return
		}
	}
}

func (e *EventWithArg[T]) RemoveAllListeners() {
	e.listeners = nil
}

// Invoke calls the listeners registered at the time of the call. Listeners may
// add or remove listeners while running.
func (e *EventWithArg[T]) Invoke(arg T) {
	ls := append([]listener[T](nil), e.listeners...)
	for _, l := range ls {
		l.fn(arg)
	}
}

func (e *EventWithArg[T]) ListenerCount() int {
	return len(e.listeners)
}
