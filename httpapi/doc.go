// Package httpapi exposes the authentication flows over HTTP as gin handlers.
//
// Mount the router on any route group:
//
//	r := httpapi.New(svc, s, httpapi.WithLogger(log))
//	r.Register(engine.Group("/auth"))
//
// Both Service and AsyncService.Blocking satisfy Authenticator.
package httpapi
