package middleware

import "github.com/aretw0/aastree/pkg/ports"

// Middleware allows wrapping a PackageStore to add behavior.
type Middleware func(ports.PackageStore) ports.PackageStore

// Chain applies middlewares so that the first one is the outermost.
func Chain(store ports.PackageStore, mws ...Middleware) ports.PackageStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
