// Package middleware wraps blob stores with cross-cutting behavior.
//
// Middleware composes below the content-addressed layer, so transforms must
// be invertible: whatever Put stores, Get must return in the original form,
// or the verifying store above will reject the payload as corrupted.
package middleware

import "github.com/aretw0/sluice/pkg/ports"

// Middleware allows wrapping a BlobStore to add behavior.
type Middleware func(ports.BlobStore) ports.BlobStore

// Wrap applies middlewares to a store, first one outermost.
func Wrap(store ports.BlobStore, mws ...Middleware) ports.BlobStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
