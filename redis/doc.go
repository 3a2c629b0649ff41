// Package redis provides the Redis client component used by the optional
// refresh-token denylist.
//
// It wraps go-redis with authkit logging, configuration conventions and the
// component lifecycle (Start/Stop/Health).
//
//	comp := redis.NewComponent(redis.Config{Enabled: true, Addr: "localhost:6379"}, log)
//	if err := comp.Start(ctx); err != nil { ... }
//	deny := revocation.NewRedis(comp.Client())
package redis
