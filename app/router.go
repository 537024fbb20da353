package app

import "pianoscape/hal"

// Handler reacts to one key event.
type Handler func(hal.KeyEvent)

// Router fans key events out to every registered handler, in registration
// order.
type Router struct {
	handlers []Handler
}

func (r *Router) Handle(h Handler) {
	if h != nil {
		r.handlers = append(r.handlers, h)
	}
}

func (r *Router) Dispatch(ev hal.KeyEvent) {
	for _, h := range r.handlers {
		h(ev)
	}
}
