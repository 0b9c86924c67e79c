// Package redis connects to Redis with go-redis and exposes a readiness probe.
//
// Redis is optional for the billing service: it backs notification dedup when
// REDIS_URL is set.
//
//	if cfg.Enabled() {
//		client, err := redis.Connect(ctx, cfg)
//		if err != nil {
//			return err
//		}
//		defer client.Close()
//	}
package redis
