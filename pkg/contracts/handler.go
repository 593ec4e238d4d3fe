package contracts

import "github.com/julienschmidt/httprouter"

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// HandlerFunc adapts a plain route-registering function to Handler.
type HandlerFunc func(*httprouter.Router)

func (f HandlerFunc) RegisterRoutes(router *httprouter.Router) {
	f(router)
}

// Handlers registers each member in order; nil members are skipped.
type Handlers []Handler

func (hs Handlers) RegisterRoutes(router *httprouter.Router) {
	for _, h := range hs {
		if h != nil {
			h.RegisterRoutes(router)
		}
	}
}
