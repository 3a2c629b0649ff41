// Package authn implements the authentication flows: register, authenticate,
// refresh and identify-current, plus superuser bootstrap and logout.
//
// Every decision (does this identity collide, are these credentials good, may
// this principal act) is a pure function in decide.go. Service and
// AsyncService only sequence repository calls around those functions, so the
// blocking and suspending variants cannot drift apart.
//
//	svc, err := authn.New(s, repo)
//	pair, err := svc.Authenticate(ctx, "alice", "pw")
//
// The async variant returns futures:
//
//	asvc, err := authn.NewAsync(s, user.Suspend(repo))
//	pair, err := asvc.Authenticate(ctx, "alice", "pw").Await(ctx)
package authn
