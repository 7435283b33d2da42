// Package middleware decorates a ports.HistoryStore with behaviour applied on the way
// in and out: payload encryption at rest and payload field omission.
package middleware

import "github.com/aretw0/gss/pkg/ports"

// Middleware allows wrapping a HistoryStore to add behavior.
type Middleware func(ports.HistoryStore) ports.HistoryStore

// Chain applies mws so that the first one is the outermost.
func Chain(store ports.HistoryStore, mws ...Middleware) ports.HistoryStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
