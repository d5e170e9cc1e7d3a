package metadata

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/deptree/pkg/errors"
)

// DefaultRedisPrefix namespaces the per-node hashes.
const DefaultRedisPrefix = "deptree:meta:"

// hashClient is the part of redis.Cmdable the lookup needs.
type hashClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
}

// redisRecord is the flat hash layout of one entry.
type redisRecord struct {
	Size     int64  `redis:"size"`
	License  string `redis:"license"`
	Critical int    `redis:"vuln_critical"`
	High     int    `redis:"vuln_high"`
	Moderate int    `redis:"vuln_moderate"`
	Low      int    `redis:"vuln_low"`
}

// RedisLookup reads details from Redis hashes named prefix+id.
type RedisLookup struct {
	client hashClient
	prefix string
}

// NewRedisLookup wraps a go-redis client. An empty prefix uses DefaultRedisPrefix.
func NewRedisLookup(client redis.Cmdable, prefix string) *RedisLookup {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisLookup{client: client, prefix: prefix}
}

// DialRedis parses a redis:// URL and returns a lookup with its own client.
// The caller closes the client through the returned function.
func DialRedis(url, prefix string) (*RedisLookup, func() error, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "redis url")
	}
	client := redis.NewClient(opts)
	return NewRedisLookup(client, prefix), client.Close, nil
}

// Get implements Lookup. A missing hash is reported as ok=false.
func (r *RedisLookup) Get(ctx context.Context, id string) (Details, bool, error) {
	cmd := r.client.HGetAll(ctx, r.prefix+id)
	fields, err := cmd.Result()
	if err != nil {
		return Details{}, false, errors.Wrap(errors.ErrCodeNetwork, err, "redis get %s", id)
	}
	if len(fields) == 0 {
		return Details{}, false, nil
	}

	var rec redisRecord
	if err := cmd.Scan(&rec); err != nil {
		return Details{}, false, errors.Wrap(errors.ErrCodeInvalidFormat, err, "redis decode %s", id)
	}
	return Details{
		Size:    rec.Size,
		License: rec.License,
		Vulnerabilities: Vulns{
			Critical: rec.Critical,
			High:     rec.High,
			Moderate: rec.Moderate,
			Low:      rec.Low,
		},
	}, true, nil
}

// Put implements Writer.
func (r *RedisLookup) Put(ctx context.Context, id string, d Details) error {
	err := r.client.HSet(ctx, r.prefix+id, map[string]any{
		"size":          d.Size,
		"license":       d.License,
		"vuln_critical": d.Vulnerabilities.Critical,
		"vuln_high":     d.Vulnerabilities.High,
		"vuln_moderate": d.Vulnerabilities.Moderate,
		"vuln_low":      d.Vulnerabilities.Low,
	}).Err()
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "redis put %s", id)
	}
	return nil
}

var (
	_ Lookup = (*RedisLookup)(nil)
	_ Writer = (*RedisLookup)(nil)
)
