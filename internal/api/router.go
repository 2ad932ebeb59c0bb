// Package api composes the HTTP surface of the scheduling service.
package api

import (
	"github.com/julienschmidt/httprouter"

	"staffbook/pkg/contracts"
)

// Router registers every domain handler on one httprouter tree.
type Router struct {
	handlers []contracts.Handler
}

func NewRouter(handlers ...contracts.Handler) *Router {
	return &Router{handlers: handlers}
}

func (r *Router) RegisterRoutes(router *httprouter.Router) {
	for _, h := range r.handlers {
		h.RegisterRoutes(router)
	}
}
