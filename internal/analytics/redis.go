// Package analytics keeps hourly event counters in Redis: job outcomes
// by name and status, schema drift by database. The counters back trend
// views; nothing in the core reads them.
package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/schemadoc/schemadoc/internal/domain"
)

// retention is the TTL applied to every counter bucket. Buckets are
// hourly, so this keeps roughly 720 keys per (source, status) pair.
const retention = 30 * 24 * time.Hour

type RedisSink struct {
	client *redis.Client
}

func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client}
}

// Record counts one dispatched event in its hourly bucket. Failures are
// logged and swallowed; recording is best-effort and must never reach
// the loop that raised the event.
func (s *RedisSink) Record(ctx context.Context, event domain.Event) {
	key := buildKey(event.Source, event.Status, event.Timestamp)

	pipe := s.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, retention)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("analytics: record %s: %v", key, err)
	}
}

func buildKey(source, status string, t time.Time) string {
	return fmt.Sprintf("schemadoc:events:%s:%s:%s", source, status, hourBucket(t))
}

func hourBucket(t time.Time) string {
	return t.UTC().Format("2006010215")
}
